package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type VehicleType string

const (
	VehicleTruck VehicleType = "truck"
	VehicleVan   VehicleType = "van"
	VehicleCar   VehicleType = "car"
)

// ValidVehicleType reports whether t is one of the known vehicle classes.
func ValidVehicleType(t VehicleType) bool {
	switch t {
	case VehicleTruck, VehicleVan, VehicleCar:
		return true
	}
	return false
}

type BayStatus string

const (
	BayStatusAvailable   BayStatus = "available"
	BayStatusOccupied    BayStatus = "occupied"
	BayStatusMaintenance BayStatus = "maintenance"
)

// ValidBayStatus reports whether s is one of the known bay states.
func ValidBayStatus(s BayStatus) bool {
	switch s {
	case BayStatusAvailable, BayStatusOccupied, BayStatusMaintenance:
		return true
	}
	return false
}

// Bay is a physical pickup location within a zone. A bay serves one
// vehicle per slot per date.
type Bay struct {
	ID          string
	ZoneID      string
	Number      int
	Type        VehicleType
	LengthM     decimal.Decimal
	WidthM      decimal.Decimal
	Status      BayStatus
	Premium     bool
	PremiumRate decimal.Decimal
	CreatedAt   time.Time
}
