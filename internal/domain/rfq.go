package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RFQStatus string

const (
	RFQStatusDraft   RFQStatus = "draft"
	RFQStatusOpen    RFQStatus = "open"
	RFQStatusClosed  RFQStatus = "closed"
	RFQStatusAwarded RFQStatus = "awarded"
	RFQStatusExpired RFQStatus = "expired"
)

// RFQItem is one requested product line on an RFQ.
type RFQItem struct {
	ProductName   string
	Quantity      decimal.Decimal
	Unit          string
	Specification string
}

// RFQ is a buyer's request for vendor pricing. Status moves one way:
// draft -> open -> closed|expired -> awarded.
type RFQ struct {
	ID           string
	BuyerID      string
	Category     string
	Items        []RFQItem
	BudgetMin    decimal.Decimal
	BudgetMax    decimal.Decimal
	Urgency      string
	DeliveryDate time.Time
	Status       RFQStatus
	MaxQuotes    int
	ClosesAt     time.Time
	CreatedAt    time.Time
}

// AcceptsQuotes reports whether vendors may still submit against the RFQ.
func (r RFQ) AcceptsQuotes(now time.Time) bool {
	return r.Status == RFQStatusOpen && now.Before(r.ClosesAt)
}
