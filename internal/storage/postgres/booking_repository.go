package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freshlane/trade-api/internal/domain"
)

type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

func (r *BookingRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

const timeSlotColumns = `id, start_time, end_time, slot_type, max_bookings, price_multiplier, buffer_minutes, advance_booking_hours, max_advance_days, cancellation_hours, requires_approval, created_at`

func (r *BookingRepository) GetTimeSlotForUpdate(ctx context.Context, slotID string) (domain.TimeSlot, error) {
	query := `SELECT ` + timeSlotColumns + ` FROM time_slots WHERE id = $1 FOR UPDATE`
	return r.getTimeSlot(ctx, query, slotID)
}

func (r *BookingRepository) GetTimeSlot(ctx context.Context, slotID string) (domain.TimeSlot, error) {
	query := `SELECT ` + timeSlotColumns + ` FROM time_slots WHERE id = $1`
	return r.getTimeSlot(ctx, query, slotID)
}

func (r *BookingRepository) getTimeSlot(ctx context.Context, query, slotID string) (domain.TimeSlot, error) {
	slot, err := scanTimeSlot(r.queryRow(ctx, query, slotID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.TimeSlot{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.TimeSlot{}, domain.ErrTimeSlotNotFound
		}
		return domain.TimeSlot{}, fmt.Errorf("get time slot: %w", err)
	}
	return slot, nil
}

func (r *BookingRepository) CountActiveBookings(ctx context.Context, slotID string, date time.Time) (int, error) {
	const query = `
SELECT COUNT(*)
FROM bookings
WHERE slot_id = $1 AND booking_date = $2 AND status IN ('pending', 'confirmed')`

	var total int
	if err := r.queryRow(ctx, query, slotID, date).Scan(&total); err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("count active bookings: %w", err)
	}
	return total, nil
}

func (r *BookingRepository) ListEligibleBays(ctx context.Context, vehicleType domain.VehicleType, weekday time.Weekday, zonePreference string) ([]domain.Bay, error) {
	// operating_hours is a JSON array of 7 day entries indexed by weekday
	// (Sunday = 0); a day with "closed": true takes the zone out of play.
	const query = `
SELECT b.id, b.zone_id, b.bay_number, b.bay_type, b.length_m, b.width_m, b.status, b.premium, b.premium_rate, b.created_at
FROM bays b
JOIN zones z ON z.id = b.zone_id
WHERE b.bay_type = $1
  AND b.status = 'available'
  AND COALESCE((z.operating_hours->$2->>'closed')::boolean, true) = false
ORDER BY
  CASE WHEN $3 <> '' AND z.id::text = $3 THEN 0 ELSE 1 END,
  z.priority_order,
  b.bay_number`

	rows, err := r.query(ctx, query, string(vehicleType), int(weekday), zonePreference)
	if err != nil {
		return nil, fmt.Errorf("list eligible bays: %w", err)
	}
	defer rows.Close()

	var bays []domain.Bay
	for rows.Next() {
		bay, err := scanBay(rows)
		if err != nil {
			return nil, err
		}
		bays = append(bays, bay)
	}
	return bays, rows.Err()
}

func (r *BookingRepository) ListBookedBayIDs(ctx context.Context, slotID string, date time.Time) (map[string]struct{}, error) {
	const query = `
SELECT bay_id
FROM bookings
WHERE slot_id = $1 AND booking_date = $2 AND status IN ('pending', 'confirmed')`

	rows, err := r.query(ctx, query, slotID, date)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list booked bays: %w", err)
	}
	defer rows.Close()

	booked := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		booked[id] = struct{}{}
	}
	return booked, rows.Err()
}

func (r *BookingRepository) CreateBooking(ctx context.Context, booking domain.Booking) error {
	const stmt = `
INSERT INTO bookings (id, bay_id, zone_id, slot_id, booking_date, buyer_id, vehicle_type, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.exec(ctx, stmt,
		booking.ID,
		booking.BayID,
		booking.ZoneID,
		booking.SlotID,
		booking.Date,
		booking.BuyerID,
		string(booking.VehicleType),
		string(booking.Status),
		booking.CreatedAt,
	)
	if err != nil {
		// The partial unique index on (bay_id, slot_id, booking_date) fires
		// when a concurrent reservation won the same bay; retryable.
		if isUniqueViolation(err) {
			return domain.ErrConcurrencyConflict
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

func (r *BookingRepository) GetBookingForUpdate(ctx context.Context, bookingID string) (domain.Booking, error) {
	const query = `
SELECT id, bay_id, zone_id, slot_id, booking_date, buyer_id, vehicle_type, status, created_at
FROM bookings
WHERE id = $1
FOR UPDATE`

	var b domain.Booking
	var vehicleType, status string
	err := r.queryRow(ctx, query, bookingID).Scan(
		&b.ID, &b.BayID, &b.ZoneID, &b.SlotID, &b.Date, &b.BuyerID, &vehicleType, &status, &b.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Booking{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Booking{}, domain.ErrBookingNotFound
		}
		return domain.Booking{}, fmt.Errorf("get booking: %w", err)
	}
	b.VehicleType = domain.VehicleType(vehicleType)
	b.Status = domain.BookingStatus(status)
	return b, nil
}

func (r *BookingRepository) UpdateBookingStatus(ctx context.Context, bookingID string, status domain.BookingStatus) error {
	const stmt = `UPDATE bookings SET status = $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, bookingID, string(status))
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *BookingRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *BookingRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
