// Package seed builds deterministic demo data for local development.
// The same seed value always produces the same records, so demo
// environments and bug reports line up. Nothing here runs in the
// serving path.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/freshlane/trade-api/internal/domain"
)

// Builder accumulates records before applying them in one transaction.
type Builder struct {
	rng    *rand.Rand
	now    time.Time
	zones  []domain.Zone
	bays   []domain.Bay
	slots  []domain.TimeSlot
	rfqs   []domain.RFQ
	quotes []domain.Quote
}

func NewBuilder(seedValue int64, now time.Time) *Builder {
	return &Builder{
		rng: rand.New(rand.NewSource(seedValue)),
		now: now.UTC(),
	}
}

var produceCategories = []string{"leafy greens", "stone fruit", "citrus", "root vegetables", "herbs"}

var produceLines = []struct {
	name string
	unit string
}{
	{"iceberg lettuce", "box"},
	{"roma tomatoes", "crate"},
	{"valencia oranges", "carton"},
	{"dutch carrots", "bunch"},
	{"continental cucumbers", "box"},
	{"royal gala apples", "tray"},
	{"brown onions", "bag"},
}

// Build assembles the standard demo fixture: three zones (zone A with
// eight truck bays), a slot catalog, and a handful of open RFQs with
// competing vendor quotes.
func (b *Builder) Build() *Builder {
	allOpen := func() domain.OperatingHours {
		var hours domain.OperatingHours
		for i := range hours {
			hours[i] = domain.DayHours{Open: "04:00", Close: "14:00"}
		}
		hours[time.Sunday] = domain.DayHours{Closed: true}
		return hours
	}

	zoneSpecs := []struct {
		name                  string
		truck, van, car       int
		forklift, covered     bool
		priority              int
	}{
		{"Zone A", 8, 0, 0, true, true, 1},
		{"Zone B", 0, 6, 4, false, true, 2},
		{"Zone C", 0, 4, 8, false, false, 3},
	}
	for _, spec := range zoneSpecs {
		zone := domain.Zone{
			ID:            b.uuid(),
			Name:          spec.name,
			TotalBays:     spec.truck + spec.van + spec.car,
			TruckBays:     spec.truck,
			VanBays:       spec.van,
			CarBays:       spec.car,
			Forklift:      spec.forklift,
			Covered:       spec.covered,
			PriorityOrder: spec.priority,
			Hours:         allOpen(),
			CreatedAt:     b.now,
		}
		b.zones = append(b.zones, zone)
		b.addBays(zone, domain.VehicleTruck, spec.truck)
		b.addBays(zone, domain.VehicleVan, spec.van)
		b.addBays(zone, domain.VehicleCar, spec.car)
	}

	slotSpecs := []struct {
		start, end string
		slotType   domain.SlotType
		max        int
		multiplier string
	}{
		{"04:00", "05:00", domain.SlotTypeOffPeak, 20, "0.80"},
		{"05:00", "06:00", domain.SlotTypeStandard, 30, "1.00"},
		{"06:00", "07:00", domain.SlotTypePremium, 30, "1.50"},
		{"07:00", "08:00", domain.SlotTypeStandard, 30, "1.00"},
	}
	for _, spec := range slotSpecs {
		multiplier, _ := decimal.NewFromString(spec.multiplier)
		b.slots = append(b.slots, domain.TimeSlot{
			ID:                  b.uuid(),
			StartTime:           spec.start,
			EndTime:             spec.end,
			SlotType:            spec.slotType,
			MaxBookings:         spec.max,
			PriceMultiplier:     multiplier,
			BufferMinutes:       15,
			AdvanceBookingHours: 2,
			MaxAdvanceDays:      30,
			CancellationHours:   1,
			RequiresApproval:    spec.slotType == domain.SlotTypePremium,
			CreatedAt:           b.now,
		})
	}

	for i := 0; i < 5; i++ {
		b.addRFQ(i)
	}
	return b
}

func (b *Builder) addBays(zone domain.Zone, bayType domain.VehicleType, count int) {
	length := decimal.NewFromInt(6)
	if bayType == domain.VehicleTruck {
		length = decimal.NewFromInt(15)
	}
	for i := 0; i < count; i++ {
		b.bays = append(b.bays, domain.Bay{
			ID:        b.uuid(),
			ZoneID:    zone.ID,
			Number:    len(b.baysInZone(zone.ID)) + 1,
			Type:      bayType,
			LengthM:   length,
			WidthM:    decimal.NewFromFloat(3.5),
			Status:    domain.BayStatusAvailable,
			CreatedAt: b.now,
		})
	}
}

func (b *Builder) baysInZone(zoneID string) []domain.Bay {
	var out []domain.Bay
	for _, bay := range b.bays {
		if bay.ZoneID == zoneID {
			out = append(out, bay)
		}
	}
	return out
}

func (b *Builder) addRFQ(index int) {
	buyerID := fmt.Sprintf("buyer-%03d", index+1)
	itemCount := 1 + b.rng.Intn(3)
	items := make([]domain.RFQItem, 0, itemCount)
	for i := 0; i < itemCount; i++ {
		line := produceLines[b.rng.Intn(len(produceLines))]
		items = append(items, domain.RFQItem{
			ProductName: line.name,
			Quantity:    decimal.NewFromInt(int64(5 + b.rng.Intn(45))),
			Unit:        line.unit,
		})
	}

	rfq := domain.RFQ{
		ID:           b.uuid(),
		BuyerID:      buyerID,
		Category:     produceCategories[b.rng.Intn(len(produceCategories))],
		Items:        items,
		BudgetMin:    decimal.NewFromInt(int64(200 + b.rng.Intn(300))),
		BudgetMax:    decimal.NewFromInt(int64(800 + b.rng.Intn(1200))),
		Urgency:      []string{"standard", "urgent"}[b.rng.Intn(2)],
		DeliveryDate: b.now.AddDate(0, 0, 2+b.rng.Intn(5)),
		Status:       domain.RFQStatusOpen,
		MaxQuotes:    5,
		ClosesAt:     b.now.AddDate(0, 0, 1+b.rng.Intn(3)),
		CreatedAt:    b.now,
	}
	b.rfqs = append(b.rfqs, rfq)

	quoteCount := 1 + b.rng.Intn(3)
	for i := 0; i < quoteCount; i++ {
		quoteItems := make([]domain.QuoteItem, 0, len(items))
		for _, item := range items {
			quoteItems = append(quoteItems, domain.QuoteItem{
				ProductName: item.ProductName,
				Quantity:    item.Quantity,
				UnitPrice:   decimal.NewFromFloat(float64(2+b.rng.Intn(18)) + 0.5),
			})
		}
		totals := domain.ComputeQuoteTotals(quoteItems, decimal.NewFromInt(25), decimal.Zero)
		b.quotes = append(b.quotes, domain.Quote{
			ID:             b.uuid(),
			RFQID:          rfq.ID,
			VendorID:       fmt.Sprintf("vendor-%03d", 1+b.rng.Intn(20)),
			Items:          totals.Items,
			Subtotal:       totals.Subtotal,
			DeliveryCharge: decimal.NewFromInt(25),
			DiscountAmount: decimal.Zero,
			TaxAmount:      totals.TaxAmount,
			FinalAmount:    totals.FinalAmount,
			Status:         domain.QuoteStatusSubmitted,
			CreatedAt:      b.now,
		})
	}
}

// uuid derives IDs from the seeded rng so runs are reproducible.
func (b *Builder) uuid() string {
	buf := make([]byte, 16)
	b.rng.Read(buf)
	buf[6] = (buf[6] & 0x0f) | 0x40
	buf[8] = (buf[8] & 0x3f) | 0x80
	return fmt.Sprintf("%x-%x-%x-%x-%x", buf[0:4], buf[4:6], buf[6:8], buf[8:10], buf[10:16])
}

// Counts reports how many records Build produced, for logging.
func (b *Builder) Counts() (zones, bays, slots, rfqs, quotes int) {
	return len(b.zones), len(b.bays), len(b.slots), len(b.rfqs), len(b.quotes)
}

// Apply writes the built records in one transaction. A database that
// already has zones is left untouched, so running seed twice is safe.
// The bool reports whether anything was written.
func (b *Builder) Apply(ctx context.Context, pool *pgxpool.Pool) (bool, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var existing int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM zones`).Scan(&existing); err != nil {
		return false, fmt.Errorf("check existing zones: %w", err)
	}
	if existing > 0 {
		return false, nil
	}

	for _, zone := range b.zones {
		hours, err := marshalHours(zone.Hours)
		if err != nil {
			return false, err
		}
		if _, err := tx.Exec(ctx, `
INSERT INTO zones (id, name, total_bays, truck_bays, van_bays, car_bays, forklift, covered, priority_order, operating_hours, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			zone.ID, zone.Name, zone.TotalBays, zone.TruckBays, zone.VanBays, zone.CarBays,
			zone.Forklift, zone.Covered, zone.PriorityOrder, hours, zone.CreatedAt,
		); err != nil {
			return false, fmt.Errorf("seed zone %s: %w", zone.Name, err)
		}
	}

	for _, bay := range b.bays {
		if _, err := tx.Exec(ctx, `
INSERT INTO bays (id, zone_id, bay_number, bay_type, length_m, width_m, status, premium, premium_rate, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			bay.ID, bay.ZoneID, bay.Number, string(bay.Type), bay.LengthM, bay.WidthM,
			string(bay.Status), bay.Premium, bay.PremiumRate, bay.CreatedAt,
		); err != nil {
			return false, fmt.Errorf("seed bay: %w", err)
		}
	}

	for _, slot := range b.slots {
		if _, err := tx.Exec(ctx, `
INSERT INTO time_slots (id, start_time, end_time, slot_type, max_bookings, price_multiplier, buffer_minutes, advance_booking_hours, max_advance_days, cancellation_hours, requires_approval, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			slot.ID, slot.StartTime, slot.EndTime, string(slot.SlotType), slot.MaxBookings,
			slot.PriceMultiplier, slot.BufferMinutes, slot.AdvanceBookingHours,
			slot.MaxAdvanceDays, slot.CancellationHours, slot.RequiresApproval, slot.CreatedAt,
		); err != nil {
			return false, fmt.Errorf("seed time slot: %w", err)
		}
	}

	for _, rfq := range b.rfqs {
		if _, err := tx.Exec(ctx, `
INSERT INTO rfqs (id, buyer_id, category, budget_min, budget_max, urgency, delivery_date, status, max_quotes, closes_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			rfq.ID, rfq.BuyerID, rfq.Category, rfq.BudgetMin, rfq.BudgetMax, rfq.Urgency,
			rfq.DeliveryDate, string(rfq.Status), rfq.MaxQuotes, rfq.ClosesAt, rfq.CreatedAt,
		); err != nil {
			return false, fmt.Errorf("seed rfq: %w", err)
		}
		for i, item := range rfq.Items {
			if _, err := tx.Exec(ctx, `
INSERT INTO rfq_items (rfq_id, position, product_name, quantity, unit, specification)
VALUES ($1, $2, $3, $4, $5, $6)`,
				rfq.ID, i, item.ProductName, item.Quantity, item.Unit, item.Specification,
			); err != nil {
				return false, fmt.Errorf("seed rfq item: %w", err)
			}
		}
	}

	for _, quote := range b.quotes {
		if _, err := tx.Exec(ctx, `
INSERT INTO quotes (id, rfq_id, vendor_id, subtotal, delivery_charge, discount_amount, tax_amount, final_amount, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			quote.ID, quote.RFQID, quote.VendorID, quote.Subtotal, quote.DeliveryCharge,
			quote.DiscountAmount, quote.TaxAmount, quote.FinalAmount, string(quote.Status), quote.CreatedAt,
		); err != nil {
			return false, fmt.Errorf("seed quote: %w", err)
		}
		for i, item := range quote.Items {
			if _, err := tx.Exec(ctx, `
INSERT INTO quote_items (quote_id, position, product_name, quantity, unit_price, line_total)
VALUES ($1, $2, $3, $4, $5, $6)`,
				quote.ID, i, item.ProductName, item.Quantity, item.UnitPrice, item.LineTotal,
			); err != nil {
				return false, fmt.Errorf("seed quote item: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func marshalHours(hours domain.OperatingHours) ([]byte, error) {
	out, err := json.Marshal(hours)
	if err != nil {
		return nil, fmt.Errorf("marshal operating hours: %w", err)
	}
	return out, nil
}
