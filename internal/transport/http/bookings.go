package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/freshlane/trade-api/internal/app"
	"github.com/freshlane/trade-api/internal/domain"
	"github.com/freshlane/trade-api/internal/notify"
)

// BookingReserver is the minimal interface needed to reserve a bay.
type BookingReserver interface {
	Reserve(ctx context.Context, in app.ReserveInput) (domain.Booking, error)
}

// BookingCanceller is the minimal interface needed to cancel a booking.
type BookingCanceller interface {
	Cancel(ctx context.Context, bookingID string) (domain.Booking, error)
}

// HandleReserveBooking returns an HTTP handler for POST /bookings.
func HandleReserveBooking(svc BookingReserver, events *notify.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req reserveBookingRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidation, "invalid date, expected YYYY-MM-DD")
			return
		}

		booking, err := svc.Reserve(r.Context(), app.ReserveInput{
			BuyerID:        req.BuyerID,
			VehicleType:    domain.VehicleType(req.VehicleType),
			ZonePreference: req.ZonePreference,
			SlotID:         req.SlotID,
			Date:           date,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		if booking.Status == domain.BookingStatusConfirmed {
			go events.BookingConfirmed(notify.BookingConfirmedEvent{
				BookingID:   booking.ID,
				BuyerID:     booking.BuyerID,
				ZoneID:      booking.ZoneID,
				BayID:       booking.BayID,
				SlotID:      booking.SlotID,
				VehicleType: string(booking.VehicleType),
				Date:        booking.Date.Format("2006-01-02"),
				Status:      string(booking.Status),
				CreatedAt:   booking.CreatedAt.Format(time.RFC3339),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(newBookingResponse(booking))
	}
}

// HandleCancelBooking returns an HTTP handler for POST /bookings/{id}/cancel.
func HandleCancelBooking(svc BookingCanceller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		bookingID, ok := parseCancelBookingPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		booking, err := svc.Cancel(r.Context(), bookingID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(newBookingResponse(booking))
	}
}

func parseCancelBookingPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return "", false
	}
	if parts[0] != "bookings" || parts[2] != "cancel" {
		return "", false
	}
	if parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

type reserveBookingRequest struct {
	BuyerID        string `json:"buyer_id"`
	VehicleType    string `json:"vehicle_type"`
	ZonePreference string `json:"zone_preference,omitempty"`
	SlotID         string `json:"slot_id"`
	Date           string `json:"date"`
}

type bookingResponse struct {
	ID          string    `json:"id"`
	BayID       string    `json:"bay_id"`
	ZoneID      string    `json:"zone_id"`
	SlotID      string    `json:"slot_id"`
	Date        string    `json:"date"`
	BuyerID     string    `json:"buyer_id"`
	VehicleType string    `json:"vehicle_type"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func newBookingResponse(b domain.Booking) bookingResponse {
	return bookingResponse{
		ID:          b.ID,
		BayID:       b.BayID,
		ZoneID:      b.ZoneID,
		SlotID:      b.SlotID,
		Date:        b.Date.Format("2006-01-02"),
		BuyerID:     b.BuyerID,
		VehicleType: string(b.VehicleType),
		Status:      string(b.Status),
		CreatedAt:   b.CreatedAt,
	}
}
