package app

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/freshlane/trade-api/internal/clock"
	"github.com/freshlane/trade-api/internal/domain"
)

type RegistryRepository interface {
	CreateZone(ctx context.Context, zone domain.Zone) error
	ListZones(ctx context.Context) ([]domain.Zone, error)
	GetZone(ctx context.Context, zoneID string) (domain.Zone, error)
	CreateBay(ctx context.Context, bay domain.Bay) error
	UpdateBayStatus(ctx context.Context, bayID string, status domain.BayStatus) (domain.Bay, error)
	ListBaysByZone(ctx context.Context, zoneID string) ([]domain.Bay, error)
	CreateTimeSlot(ctx context.Context, slot domain.TimeSlot) error
	ListTimeSlots(ctx context.Context) ([]domain.TimeSlot, error)
}

// RegistryService maintains the static pickup inventory: zones, their
// bays, and the bookable time slot catalog.
type RegistryService struct {
	repo  RegistryRepository
	clock clock.Clock
}

func NewRegistryService(repo RegistryRepository, clk clock.Clock) *RegistryService {
	return &RegistryService{
		repo:  repo,
		clock: clk,
	}
}

type CreateZoneInput struct {
	Name          string
	TotalBays     int
	TruckBays     int
	VanBays       int
	CarBays       int
	Forklift      bool
	Covered       bool
	PriorityOrder int
	Hours         domain.OperatingHours
}

func (s *RegistryService) CreateZone(ctx context.Context, in CreateZoneInput) (domain.Zone, error) {
	if in.Name == "" {
		return domain.Zone{}, fmt.Errorf("zone name required: %w", domain.ErrValidation)
	}
	if in.TotalBays <= 0 {
		return domain.Zone{}, fmt.Errorf("total_bays must be positive: %w", domain.ErrValidation)
	}
	if in.TruckBays < 0 || in.VanBays < 0 || in.CarBays < 0 {
		return domain.Zone{}, fmt.Errorf("typed bay counts must not be negative: %w", domain.ErrValidation)
	}

	zone := domain.Zone{
		ID:            newUUID(),
		Name:          in.Name,
		TotalBays:     in.TotalBays,
		TruckBays:     in.TruckBays,
		VanBays:       in.VanBays,
		CarBays:       in.CarBays,
		Forklift:      in.Forklift,
		Covered:       in.Covered,
		PriorityOrder: in.PriorityOrder,
		Hours:         in.Hours,
		CreatedAt:     s.clock.Now(),
	}
	if zone.TypedBayCount() > zone.TotalBays {
		return domain.Zone{}, fmt.Errorf(
			"typed bay counts %d exceed total_bays %d: %w",
			zone.TypedBayCount(), zone.TotalBays, domain.ErrValidation,
		)
	}

	if err := s.repo.CreateZone(ctx, zone); err != nil {
		return domain.Zone{}, err
	}
	return zone, nil
}

func (s *RegistryService) ListZones(ctx context.Context) ([]domain.Zone, error) {
	return s.repo.ListZones(ctx)
}

type CreateBayInput struct {
	ZoneID      string
	Number      int
	Type        domain.VehicleType
	LengthM     decimal.Decimal
	WidthM      decimal.Decimal
	Premium     bool
	PremiumRate decimal.Decimal
}

func (s *RegistryService) CreateBay(ctx context.Context, in CreateBayInput) (domain.Bay, error) {
	if in.ZoneID == "" {
		return domain.Bay{}, domain.ErrInvalidID
	}
	if !domain.ValidVehicleType(in.Type) {
		return domain.Bay{}, fmt.Errorf("unknown vehicle type %q: %w", in.Type, domain.ErrValidation)
	}
	if in.Number <= 0 {
		return domain.Bay{}, fmt.Errorf("bay number must be positive: %w", domain.ErrValidation)
	}
	if in.LengthM.Sign() <= 0 || in.WidthM.Sign() <= 0 {
		return domain.Bay{}, fmt.Errorf("bay dimensions must be positive: %w", domain.ErrValidation)
	}
	if in.Premium && in.PremiumRate.Sign() < 0 {
		return domain.Bay{}, fmt.Errorf("premium rate must not be negative: %w", domain.ErrValidation)
	}

	if _, err := s.repo.GetZone(ctx, in.ZoneID); err != nil {
		return domain.Bay{}, err
	}

	bay := domain.Bay{
		ID:          newUUID(),
		ZoneID:      in.ZoneID,
		Number:      in.Number,
		Type:        in.Type,
		LengthM:     in.LengthM,
		WidthM:      in.WidthM,
		Status:      domain.BayStatusAvailable,
		Premium:     in.Premium,
		PremiumRate: in.PremiumRate,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.CreateBay(ctx, bay); err != nil {
		return domain.Bay{}, err
	}
	return bay, nil
}

// UpdateBayStatus moves a bay between available, occupied and
// maintenance. Bays not available are skipped by the allocator.
func (s *RegistryService) UpdateBayStatus(ctx context.Context, bayID string, status domain.BayStatus) (domain.Bay, error) {
	if bayID == "" {
		return domain.Bay{}, domain.ErrInvalidID
	}
	if !domain.ValidBayStatus(status) {
		return domain.Bay{}, fmt.Errorf("unknown bay status %q: %w", status, domain.ErrValidation)
	}
	return s.repo.UpdateBayStatus(ctx, bayID, status)
}

func (s *RegistryService) ListBays(ctx context.Context, zoneID string) ([]domain.Bay, error) {
	if zoneID == "" {
		return nil, domain.ErrInvalidID
	}
	return s.repo.ListBaysByZone(ctx, zoneID)
}

type CreateTimeSlotInput struct {
	StartTime           string
	EndTime             string
	SlotType            domain.SlotType
	MaxBookings         int
	PriceMultiplier     decimal.Decimal
	BufferMinutes       int
	AdvanceBookingHours int
	MaxAdvanceDays      int
	CancellationHours   int
	RequiresApproval    bool
}

func (s *RegistryService) CreateTimeSlot(ctx context.Context, in CreateTimeSlotInput) (domain.TimeSlot, error) {
	if !domain.ValidSlotWindow(in.StartTime, in.EndTime) {
		return domain.TimeSlot{}, fmt.Errorf(
			"slot window %s-%s invalid, start must precede end: %w",
			in.StartTime, in.EndTime, domain.ErrValidation,
		)
	}
	if in.MaxBookings <= 0 {
		return domain.TimeSlot{}, fmt.Errorf("max_bookings must be positive: %w", domain.ErrValidation)
	}
	if in.PriceMultiplier.Sign() <= 0 {
		return domain.TimeSlot{}, fmt.Errorf("price_multiplier must be positive: %w", domain.ErrValidation)
	}
	if in.AdvanceBookingHours < 0 || in.MaxAdvanceDays <= 0 || in.CancellationHours < 0 || in.BufferMinutes < 0 {
		return domain.TimeSlot{}, fmt.Errorf("negative booking window settings: %w", domain.ErrValidation)
	}
	switch in.SlotType {
	case domain.SlotTypePremium, domain.SlotTypeStandard, domain.SlotTypeOffPeak:
	default:
		return domain.TimeSlot{}, fmt.Errorf("unknown slot type %q: %w", in.SlotType, domain.ErrValidation)
	}

	slot := domain.TimeSlot{
		ID:                  newUUID(),
		StartTime:           in.StartTime,
		EndTime:             in.EndTime,
		SlotType:            in.SlotType,
		MaxBookings:         in.MaxBookings,
		PriceMultiplier:     in.PriceMultiplier,
		BufferMinutes:       in.BufferMinutes,
		AdvanceBookingHours: in.AdvanceBookingHours,
		MaxAdvanceDays:      in.MaxAdvanceDays,
		CancellationHours:   in.CancellationHours,
		RequiresApproval:    in.RequiresApproval,
		CreatedAt:           s.clock.Now(),
	}
	if err := s.repo.CreateTimeSlot(ctx, slot); err != nil {
		return domain.TimeSlot{}, err
	}
	return slot, nil
}

func (s *RegistryService) ListTimeSlots(ctx context.Context) ([]domain.TimeSlot, error) {
	return s.repo.ListTimeSlots(ctx)
}
