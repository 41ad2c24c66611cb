package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking reserves one bay for one time slot on one calendar date.
// Pending and confirmed bookings count against capacity.
type Booking struct {
	ID          string
	BayID       string
	ZoneID      string
	SlotID      string
	Date        time.Time
	BuyerID     string
	VehicleType VehicleType
	Status      BookingStatus
	CreatedAt   time.Time
}

// Active reports whether the booking still occupies its bay.
func (b Booking) Active() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}
