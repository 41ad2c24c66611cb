package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type SlotType string

const (
	SlotTypePremium  SlotType = "premium"
	SlotTypeStandard SlotType = "standard"
	SlotTypeOffPeak  SlotType = "off_peak"
)

// TimeSlot is a recurring bookable interval. StartTime/EndTime are
// "HH:MM" times of day; MaxBookings caps concurrent bookings across all
// bays for one calendar date.
type TimeSlot struct {
	ID                  string
	StartTime           string
	EndTime             string
	SlotType            SlotType
	MaxBookings         int
	PriceMultiplier     decimal.Decimal
	BufferMinutes       int
	AdvanceBookingHours int
	MaxAdvanceDays      int
	CancellationHours   int
	RequiresApproval    bool
	CreatedAt           time.Time
}

// StartOn anchors the slot's start time of day to a calendar date in UTC.
func (s TimeSlot) StartOn(date time.Time) (time.Time, error) {
	hhmm, err := parseTimeOfDay(s.StartTime)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := date.UTC().Date()
	return time.Date(y, m, d, hhmm.hour, hhmm.minute, 0, 0, time.UTC), nil
}

// Window returns "HH:MM-HH:MM" for error messages and events.
func (s TimeSlot) Window() string {
	return s.StartTime + "-" + s.EndTime
}

type timeOfDay struct {
	hour   int
	minute int
}

func parseTimeOfDay(value string) (timeOfDay, error) {
	var t timeOfDay
	if _, err := fmt.Sscanf(value, "%02d:%02d", &t.hour, &t.minute); err != nil {
		return timeOfDay{}, fmt.Errorf("parse time of day %q: %w", value, ErrValidation)
	}
	if t.hour < 0 || t.hour > 23 || t.minute < 0 || t.minute > 59 {
		return timeOfDay{}, fmt.Errorf("time of day %q out of range: %w", value, ErrValidation)
	}
	return t, nil
}

// ValidSlotWindow reports whether start and end parse and start < end.
func ValidSlotWindow(start, end string) bool {
	s, err := parseTimeOfDay(start)
	if err != nil {
		return false
	}
	e, err := parseTimeOfDay(end)
	if err != nil {
		return false
	}
	return s.hour*60+s.minute < e.hour*60+e.minute
}
