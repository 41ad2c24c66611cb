package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freshlane/trade-api/internal/domain"
)

type RegistryRepository struct {
	pool *pgxpool.Pool
}

func NewRegistryRepository(pool *pgxpool.Pool) *RegistryRepository {
	return &RegistryRepository{pool: pool}
}

func (r *RegistryRepository) CreateZone(ctx context.Context, zone domain.Zone) error {
	hours, err := json.Marshal(zone.Hours)
	if err != nil {
		return fmt.Errorf("marshal operating hours: %w", err)
	}

	const stmt = `
INSERT INTO zones (id, name, total_bays, truck_bays, van_bays, car_bays, forklift, covered, priority_order, operating_hours, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = r.exec(ctx, stmt,
		zone.ID,
		zone.Name,
		zone.TotalBays,
		zone.TruckBays,
		zone.VanBays,
		zone.CarBays,
		zone.Forklift,
		zone.Covered,
		zone.PriorityOrder,
		hours,
		zone.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create zone: %w", err)
	}
	return nil
}

func (r *RegistryRepository) ListZones(ctx context.Context) ([]domain.Zone, error) {
	const query = `
SELECT id, name, total_bays, truck_bays, van_bays, car_bays, forklift, covered, priority_order, operating_hours, created_at
FROM zones
ORDER BY priority_order, name`

	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}
	defer rows.Close()

	var zones []domain.Zone
	for rows.Next() {
		zone, err := scanZone(rows)
		if err != nil {
			return nil, err
		}
		zones = append(zones, zone)
	}
	return zones, rows.Err()
}

func (r *RegistryRepository) GetZone(ctx context.Context, zoneID string) (domain.Zone, error) {
	const query = `
SELECT id, name, total_bays, truck_bays, van_bays, car_bays, forklift, covered, priority_order, operating_hours, created_at
FROM zones
WHERE id = $1`

	zone, err := scanZone(r.queryRow(ctx, query, zoneID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Zone{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Zone{}, domain.ErrZoneNotFound
		}
		return domain.Zone{}, fmt.Errorf("get zone: %w", err)
	}
	return zone, nil
}

func scanZone(row pgx.Row) (domain.Zone, error) {
	var z domain.Zone
	var hours []byte
	err := row.Scan(
		&z.ID, &z.Name, &z.TotalBays, &z.TruckBays, &z.VanBays, &z.CarBays,
		&z.Forklift, &z.Covered, &z.PriorityOrder, &hours, &z.CreatedAt,
	)
	if err != nil {
		return domain.Zone{}, err
	}
	if err := json.Unmarshal(hours, &z.Hours); err != nil {
		return domain.Zone{}, fmt.Errorf("unmarshal operating hours: %w", err)
	}
	return z, nil
}

func (r *RegistryRepository) CreateBay(ctx context.Context, bay domain.Bay) error {
	const stmt = `
INSERT INTO bays (id, zone_id, bay_number, bay_type, length_m, width_m, status, premium, premium_rate, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.exec(ctx, stmt,
		bay.ID,
		bay.ZoneID,
		bay.Number,
		string(bay.Type),
		bay.LengthM,
		bay.WidthM,
		string(bay.Status),
		bay.Premium,
		bay.PremiumRate,
		bay.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("bay %d already exists in zone: %w", bay.Number, domain.ErrValidation)
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create bay: %w", err)
	}
	return nil
}

func (r *RegistryRepository) UpdateBayStatus(ctx context.Context, bayID string, status domain.BayStatus) (domain.Bay, error) {
	const stmt = `
UPDATE bays SET status = $2
WHERE id = $1
RETURNING id, zone_id, bay_number, bay_type, length_m, width_m, status, premium, premium_rate, created_at`

	bay, err := scanBay(r.queryRow(ctx, stmt, bayID, string(status)))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Bay{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Bay{}, domain.ErrBayNotFound
		}
		return domain.Bay{}, fmt.Errorf("update bay status: %w", err)
	}
	return bay, nil
}

func (r *RegistryRepository) ListBaysByZone(ctx context.Context, zoneID string) ([]domain.Bay, error) {
	const query = `
SELECT id, zone_id, bay_number, bay_type, length_m, width_m, status, premium, premium_rate, created_at
FROM bays
WHERE zone_id = $1
ORDER BY bay_number`

	rows, err := r.query(ctx, query, zoneID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list bays: %w", err)
	}
	defer rows.Close()

	var bays []domain.Bay
	for rows.Next() {
		bay, err := scanBay(rows)
		if err != nil {
			if isInvalidUUID(err) {
				return nil, domain.ErrInvalidID
			}
			return nil, err
		}
		bays = append(bays, bay)
	}
	return bays, rows.Err()
}

func scanBay(row pgx.Row) (domain.Bay, error) {
	var b domain.Bay
	var bayType, status string
	err := row.Scan(
		&b.ID, &b.ZoneID, &b.Number, &bayType, &b.LengthM, &b.WidthM,
		&status, &b.Premium, &b.PremiumRate, &b.CreatedAt,
	)
	if err != nil {
		return domain.Bay{}, err
	}
	b.Type = domain.VehicleType(bayType)
	b.Status = domain.BayStatus(status)
	return b, nil
}

func (r *RegistryRepository) CreateTimeSlot(ctx context.Context, slot domain.TimeSlot) error {
	const stmt = `
INSERT INTO time_slots (id, start_time, end_time, slot_type, max_bookings, price_multiplier, buffer_minutes, advance_booking_hours, max_advance_days, cancellation_hours, requires_approval, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.exec(ctx, stmt,
		slot.ID,
		slot.StartTime,
		slot.EndTime,
		string(slot.SlotType),
		slot.MaxBookings,
		slot.PriceMultiplier,
		slot.BufferMinutes,
		slot.AdvanceBookingHours,
		slot.MaxAdvanceDays,
		slot.CancellationHours,
		slot.RequiresApproval,
		slot.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create time slot: %w", err)
	}
	return nil
}

func (r *RegistryRepository) ListTimeSlots(ctx context.Context) ([]domain.TimeSlot, error) {
	const query = `
SELECT id, start_time, end_time, slot_type, max_bookings, price_multiplier, buffer_minutes, advance_booking_hours, max_advance_days, cancellation_hours, requires_approval, created_at
FROM time_slots
ORDER BY start_time`

	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	defer rows.Close()

	var slots []domain.TimeSlot
	for rows.Next() {
		slot, err := scanTimeSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

func scanTimeSlot(row pgx.Row) (domain.TimeSlot, error) {
	var s domain.TimeSlot
	var slotType string
	err := row.Scan(
		&s.ID, &s.StartTime, &s.EndTime, &slotType, &s.MaxBookings, &s.PriceMultiplier,
		&s.BufferMinutes, &s.AdvanceBookingHours, &s.MaxAdvanceDays, &s.CancellationHours,
		&s.RequiresApproval, &s.CreatedAt,
	)
	if err != nil {
		return domain.TimeSlot{}, err
	}
	s.SlotType = domain.SlotType(slotType)
	return s, nil
}

func (r *RegistryRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *RegistryRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *RegistryRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
