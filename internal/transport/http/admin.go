package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/freshlane/trade-api/internal/app"
	"github.com/freshlane/trade-api/internal/domain"
)

// AdminZoneService is the minimal interface needed for zone endpoints.
type AdminZoneService interface {
	CreateZone(ctx context.Context, in app.CreateZoneInput) (domain.Zone, error)
	ListZones(ctx context.Context) ([]domain.Zone, error)
}

// AdminBayService is the minimal interface needed for bay endpoints.
type AdminBayService interface {
	CreateBay(ctx context.Context, in app.CreateBayInput) (domain.Bay, error)
	UpdateBayStatus(ctx context.Context, bayID string, status domain.BayStatus) (domain.Bay, error)
	ListBays(ctx context.Context, zoneID string) ([]domain.Bay, error)
}

// AdminSlotService is the minimal interface needed for time slot endpoints.
type AdminSlotService interface {
	CreateTimeSlot(ctx context.Context, in app.CreateTimeSlotInput) (domain.TimeSlot, error)
	ListTimeSlots(ctx context.Context) ([]domain.TimeSlot, error)
}

// HandleAdminZones returns an HTTP handler for admin zone creation/listing.
func HandleAdminZones(svc AdminZoneService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			zones, err := svc.ListZones(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				return
			}
			resp := make([]zoneResponse, 0, len(zones))
			for _, zone := range zones {
				resp = append(resp, newZoneResponse(zone))
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
		case http.MethodPost:
			var req createZoneRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			zone, err := svc.CreateZone(r.Context(), app.CreateZoneInput{
				Name:          req.Name,
				TotalBays:     req.TotalBays,
				TruckBays:     req.TruckBays,
				VanBays:       req.VanBays,
				CarBays:       req.CarBays,
				Forklift:      req.Forklift,
				Covered:       req.Covered,
				PriorityOrder: req.PriorityOrder,
				Hours:         req.Hours,
			})
			if err != nil {
				writeDomainError(w, err)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(newZoneResponse(zone))
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// HandleAdminBays returns an HTTP handler for /admin/zones/{id}/bays.
func HandleAdminBays(svc AdminBayService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		zoneID, ok := parseAdminZoneBaysPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch r.Method {
		case http.MethodGet:
			bays, err := svc.ListBays(r.Context(), zoneID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			resp := make([]bayResponse, 0, len(bays))
			for _, bay := range bays {
				resp = append(resp, newBayResponse(bay))
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
		case http.MethodPost:
			var req createBayRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			in := app.CreateBayInput{
				ZoneID:  zoneID,
				Number:  req.Number,
				Type:    domain.VehicleType(req.Type),
				Premium: req.Premium,
			}
			var err error
			if in.LengthM, err = parseAmount(req.LengthM, "length_m"); err != nil {
				writeError(w, http.StatusBadRequest, codeValidation, err.Error())
				return
			}
			if in.WidthM, err = parseAmount(req.WidthM, "width_m"); err != nil {
				writeError(w, http.StatusBadRequest, codeValidation, err.Error())
				return
			}
			if in.PremiumRate, err = parseAmount(req.PremiumRate, "premium_rate"); err != nil {
				writeError(w, http.StatusBadRequest, codeValidation, err.Error())
				return
			}

			bay, err := svc.CreateBay(r.Context(), in)
			if err != nil {
				writeDomainError(w, err)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(newBayResponse(bay))
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// HandleAdminBayStatus returns an HTTP handler for
// POST /admin/bays/{id}/status. Taking a bay out of service here stops
// the allocator from handing it out while existing bookings stand.
func HandleAdminBayStatus(svc AdminBayService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		bayID, ok := parseAdminBayStatusPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		var req updateBayStatusRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		bay, err := svc.UpdateBayStatus(r.Context(), bayID, domain.BayStatus(req.Status))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(newBayResponse(bay))
	}
}

// HandleAdminTimeSlots returns an HTTP handler for /admin/timeslots.
func HandleAdminTimeSlots(svc AdminSlotService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			slots, err := svc.ListTimeSlots(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				return
			}
			resp := make([]timeSlotResponse, 0, len(slots))
			for _, slot := range slots {
				resp = append(resp, newTimeSlotResponse(slot))
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
		case http.MethodPost:
			var req createTimeSlotRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			in := app.CreateTimeSlotInput{
				StartTime:           req.StartTime,
				EndTime:             req.EndTime,
				SlotType:            domain.SlotType(req.SlotType),
				MaxBookings:         req.MaxBookings,
				BufferMinutes:       req.BufferMinutes,
				AdvanceBookingHours: req.AdvanceBookingHours,
				MaxAdvanceDays:      req.MaxAdvanceDays,
				CancellationHours:   req.CancellationHours,
				RequiresApproval:    req.RequiresApproval,
			}
			var err error
			if in.PriceMultiplier, err = parseAmount(req.PriceMultiplier, "price_multiplier"); err != nil {
				writeError(w, http.StatusBadRequest, codeValidation, err.Error())
				return
			}

			slot, err := svc.CreateTimeSlot(r.Context(), in)
			if err != nil {
				writeDomainError(w, err)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(newTimeSlotResponse(slot))
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

func parseAdminBayStatusPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 4 {
		return "", false
	}
	if parts[0] != "admin" || parts[1] != "bays" || parts[3] != "status" {
		return "", false
	}
	if parts[2] == "" {
		return "", false
	}
	return parts[2], true
}

func parseAdminZoneBaysPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 4 {
		return "", false
	}
	if parts[0] != "admin" || parts[1] != "zones" || parts[3] != "bays" {
		return "", false
	}
	if parts[2] == "" {
		return "", false
	}
	return parts[2], true
}

type createZoneRequest struct {
	Name          string                `json:"name"`
	TotalBays     int                   `json:"total_bays"`
	TruckBays     int                   `json:"truck_bays"`
	VanBays       int                   `json:"van_bays"`
	CarBays       int                   `json:"car_bays"`
	Forklift      bool                  `json:"forklift"`
	Covered       bool                  `json:"covered"`
	PriorityOrder int                   `json:"priority_order"`
	Hours         domain.OperatingHours `json:"operating_hours"`
}

type zoneResponse struct {
	ID            string                `json:"id"`
	Name          string                `json:"name"`
	TotalBays     int                   `json:"total_bays"`
	TruckBays     int                   `json:"truck_bays"`
	VanBays       int                   `json:"van_bays"`
	CarBays       int                   `json:"car_bays"`
	Forklift      bool                  `json:"forklift"`
	Covered       bool                  `json:"covered"`
	PriorityOrder int                   `json:"priority_order"`
	Hours         domain.OperatingHours `json:"operating_hours"`
	CreatedAt     time.Time             `json:"created_at"`
}

func newZoneResponse(z domain.Zone) zoneResponse {
	return zoneResponse{
		ID:            z.ID,
		Name:          z.Name,
		TotalBays:     z.TotalBays,
		TruckBays:     z.TruckBays,
		VanBays:       z.VanBays,
		CarBays:       z.CarBays,
		Forklift:      z.Forklift,
		Covered:       z.Covered,
		PriorityOrder: z.PriorityOrder,
		Hours:         z.Hours,
		CreatedAt:     z.CreatedAt,
	}
}

type updateBayStatusRequest struct {
	Status string `json:"status"`
}

type createBayRequest struct {
	Number      int    `json:"bay_number"`
	Type        string `json:"bay_type"`
	LengthM     string `json:"length_m"`
	WidthM      string `json:"width_m"`
	Premium     bool   `json:"premium"`
	PremiumRate string `json:"premium_rate,omitempty"`
}

type bayResponse struct {
	ID          string    `json:"id"`
	ZoneID      string    `json:"zone_id"`
	Number      int       `json:"bay_number"`
	Type        string    `json:"bay_type"`
	LengthM     string    `json:"length_m"`
	WidthM      string    `json:"width_m"`
	Status      string    `json:"status"`
	Premium     bool      `json:"premium"`
	PremiumRate string    `json:"premium_rate"`
	CreatedAt   time.Time `json:"created_at"`
}

func newBayResponse(b domain.Bay) bayResponse {
	return bayResponse{
		ID:          b.ID,
		ZoneID:      b.ZoneID,
		Number:      b.Number,
		Type:        string(b.Type),
		LengthM:     b.LengthM.StringFixed(2),
		WidthM:      b.WidthM.StringFixed(2),
		Status:      string(b.Status),
		Premium:     b.Premium,
		PremiumRate: b.PremiumRate.StringFixed(2),
		CreatedAt:   b.CreatedAt,
	}
}

type createTimeSlotRequest struct {
	StartTime           string `json:"start_time"`
	EndTime             string `json:"end_time"`
	SlotType            string `json:"slot_type"`
	MaxBookings         int    `json:"max_bookings"`
	PriceMultiplier     string `json:"price_multiplier"`
	BufferMinutes       int    `json:"buffer_minutes"`
	AdvanceBookingHours int    `json:"advance_booking_hours"`
	MaxAdvanceDays      int    `json:"max_advance_days"`
	CancellationHours   int    `json:"cancellation_hours"`
	RequiresApproval    bool   `json:"requires_approval"`
}

type timeSlotResponse struct {
	ID                  string    `json:"id"`
	StartTime           string    `json:"start_time"`
	EndTime             string    `json:"end_time"`
	SlotType            string    `json:"slot_type"`
	MaxBookings         int       `json:"max_bookings"`
	PriceMultiplier     string    `json:"price_multiplier"`
	BufferMinutes       int       `json:"buffer_minutes"`
	AdvanceBookingHours int       `json:"advance_booking_hours"`
	MaxAdvanceDays      int       `json:"max_advance_days"`
	CancellationHours   int       `json:"cancellation_hours"`
	RequiresApproval    bool      `json:"requires_approval"`
	CreatedAt           time.Time `json:"created_at"`
}

func newTimeSlotResponse(s domain.TimeSlot) timeSlotResponse {
	return timeSlotResponse{
		ID:                  s.ID,
		StartTime:           s.StartTime,
		EndTime:             s.EndTime,
		SlotType:            string(s.SlotType),
		MaxBookings:         s.MaxBookings,
		PriceMultiplier:     s.PriceMultiplier.StringFixed(2),
		BufferMinutes:       s.BufferMinutes,
		AdvanceBookingHours: s.AdvanceBookingHours,
		MaxAdvanceDays:      s.MaxAdvanceDays,
		CancellationHours:   s.CancellationHours,
		RequiresApproval:    s.RequiresApproval,
		CreatedAt:           s.CreatedAt,
	}
}
