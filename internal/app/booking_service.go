package app

import (
	"context"
	"fmt"
	"time"

	"github.com/freshlane/trade-api/internal/clock"
	"github.com/freshlane/trade-api/internal/domain"
)

type BookingRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetTimeSlotForUpdate(ctx context.Context, slotID string) (domain.TimeSlot, error)
	GetTimeSlot(ctx context.Context, slotID string) (domain.TimeSlot, error)
	CountActiveBookings(ctx context.Context, slotID string, date time.Time) (int, error)
	// ListEligibleBays returns non-maintenance bays of the given type in
	// zones open on the weekday, ordered by zone preference first, then
	// zone priority_order ascending, then bay number ascending.
	ListEligibleBays(ctx context.Context, vehicleType domain.VehicleType, weekday time.Weekday, zonePreference string) ([]domain.Bay, error)
	ListBookedBayIDs(ctx context.Context, slotID string, date time.Time) (map[string]struct{}, error)
	CreateBooking(ctx context.Context, booking domain.Booking) error
	GetBookingForUpdate(ctx context.Context, bookingID string) (domain.Booking, error)
	UpdateBookingStatus(ctx context.Context, bookingID string, status domain.BookingStatus) error
}

// BookingService allocates bays to vehicles for slot/date combinations,
// enforcing lead-time windows and capacity.
type BookingService struct {
	repo  BookingRepository
	clock clock.Clock
}

func NewBookingService(repo BookingRepository, clk clock.Clock) *BookingService {
	return &BookingService{
		repo:  repo,
		clock: clk,
	}
}

type ReserveInput struct {
	BuyerID        string
	VehicleType    domain.VehicleType
	ZonePreference string
	SlotID         string
	Date           time.Time
}

func (s *BookingService) Reserve(ctx context.Context, in ReserveInput) (domain.Booking, error) {
	if in.BuyerID == "" || in.SlotID == "" {
		return domain.Booking{}, domain.ErrInvalidID
	}
	if !domain.ValidVehicleType(in.VehicleType) {
		return domain.Booking{}, fmt.Errorf("unknown vehicle type %q: %w", in.VehicleType, domain.ErrValidation)
	}
	if in.Date.IsZero() {
		return domain.Booking{}, fmt.Errorf("booking date required: %w", domain.ErrValidation)
	}

	date := in.Date.UTC().Truncate(24 * time.Hour)
	now := s.clock.Now()
	var result domain.Booking

	err := withConflictRetry(ctx, func(ctx context.Context) error {
		return s.repo.WithTx(ctx, func(txCtx context.Context) error {
			// The slot row lock serializes all reservations for this slot,
			// so the capacity check-and-insert below is atomic.
			slot, err := s.repo.GetTimeSlotForUpdate(txCtx, in.SlotID)
			if err != nil {
				return err
			}

			slotStart, err := slot.StartOn(date)
			if err != nil {
				return err
			}
			if err := checkLeadTime(slot, slotStart, now); err != nil {
				return err
			}

			active, err := s.repo.CountActiveBookings(txCtx, slot.ID, date)
			if err != nil {
				return err
			}
			if active >= slot.MaxBookings {
				return fmt.Errorf(
					"slot %s on %s is fully booked (%d of %d): %w",
					slot.Window(), date.Format("2006-01-02"), active, slot.MaxBookings, domain.ErrCapacityExceeded,
				)
			}

			bay, err := s.pickBay(txCtx, in, slot, date)
			if err != nil {
				return err
			}

			status := domain.BookingStatusConfirmed
			if slot.RequiresApproval {
				status = domain.BookingStatusPending
			}

			booking := domain.Booking{
				ID:          newUUID(),
				BayID:       bay.ID,
				ZoneID:      bay.ZoneID,
				SlotID:      slot.ID,
				Date:        date,
				BuyerID:     in.BuyerID,
				VehicleType: in.VehicleType,
				Status:      status,
				CreatedAt:   now,
			}
			if err := s.repo.CreateBooking(txCtx, booking); err != nil {
				return err
			}

			result = booking
			return nil
		})
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return result, nil
}

// pickBay chooses the first free eligible bay. Eligibility and ordering
// come from the repository; the booked set filters bays already taken
// for this slot/date.
func (s *BookingService) pickBay(ctx context.Context, in ReserveInput, slot domain.TimeSlot, date time.Time) (domain.Bay, error) {
	bays, err := s.repo.ListEligibleBays(ctx, in.VehicleType, date.Weekday(), in.ZonePreference)
	if err != nil {
		return domain.Bay{}, err
	}

	booked, err := s.repo.ListBookedBayIDs(ctx, slot.ID, date)
	if err != nil {
		return domain.Bay{}, err
	}

	for _, bay := range bays {
		if _, taken := booked[bay.ID]; taken {
			continue
		}
		return bay, nil
	}

	return domain.Bay{}, fmt.Errorf(
		"no %s bay available for %s on %s: %w",
		in.VehicleType, slot.Window(), date.Format("2006-01-02"), domain.ErrCapacityExceeded,
	)
}

func checkLeadTime(slot domain.TimeSlot, slotStart, now time.Time) error {
	earliest := now.Add(time.Duration(slot.AdvanceBookingHours) * time.Hour)
	if slotStart.Before(earliest) {
		return fmt.Errorf(
			"slot %s starts %s, bookings need %dh notice: %w",
			slot.Window(), slotStart.Format(time.RFC3339), slot.AdvanceBookingHours, domain.ErrLeadTimeViolation,
		)
	}
	latest := now.Add(time.Duration(slot.MaxAdvanceDays) * 24 * time.Hour)
	if slotStart.After(latest) {
		return fmt.Errorf(
			"slot %s starts %s, more than %d days ahead: %w",
			slot.Window(), slotStart.Format(time.RFC3339), slot.MaxAdvanceDays, domain.ErrLeadTimeViolation,
		)
	}
	return nil
}

func (s *BookingService) Cancel(ctx context.Context, bookingID string) (domain.Booking, error) {
	if bookingID == "" {
		return domain.Booking{}, domain.ErrInvalidID
	}

	now := s.clock.Now()
	var result domain.Booking

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		booking, err := s.repo.GetBookingForUpdate(txCtx, bookingID)
		if err != nil {
			return err
		}

		switch booking.Status {
		case domain.BookingStatusCancelled:
			// Cancelling twice is a no-op.
			result = booking
			return nil
		case domain.BookingStatusCompleted:
			return fmt.Errorf("booking already completed: %w", domain.ErrBookingNotCancellable)
		}

		slot, err := s.repo.GetTimeSlot(txCtx, booking.SlotID)
		if err != nil {
			return err
		}
		slotStart, err := slot.StartOn(booking.Date)
		if err != nil {
			return err
		}

		cutoff := slotStart.Add(-time.Duration(slot.CancellationHours) * time.Hour)
		if !now.Before(cutoff) {
			return fmt.Errorf(
				"cancellations for slot %s on %s close %dh before start: %w",
				slot.Window(), booking.Date.Format("2006-01-02"), slot.CancellationHours, domain.ErrCancellationWindowExpired,
			)
		}

		if err := s.repo.UpdateBookingStatus(txCtx, booking.ID, domain.BookingStatusCancelled); err != nil {
			return err
		}
		booking.Status = domain.BookingStatusCancelled
		result = booking
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return result, nil
}
