package domain

import "time"

// DayHours describes a zone's opening window for a single weekday.
// Times are "HH:MM" in the market's local day; Closed overrides both.
type DayHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed"`
}

// OperatingHours is indexed by time.Weekday (Sunday = 0).
type OperatingHours [7]DayHours

// OpenOn reports whether the zone accepts pickups on the given weekday.
func (h OperatingHours) OpenOn(day time.Weekday) bool {
	return !h[day].Closed
}

// Zone aggregates pickup bays that share operating hours and equipment.
type Zone struct {
	ID            string
	Name          string
	TotalBays     int
	TruckBays     int
	VanBays       int
	CarBays       int
	Forklift      bool
	Covered       bool
	PriorityOrder int
	Hours         OperatingHours
	CreatedAt     time.Time
}

// TypedBayCount returns the sum of per-vehicle-class bay counts,
// which must not exceed TotalBays.
func (z Zone) TypedBayCount() int {
	return z.TruckBays + z.VanBays + z.CarBays
}
