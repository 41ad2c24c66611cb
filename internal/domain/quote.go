package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type QuoteStatus string

const (
	QuoteStatusSubmitted   QuoteStatus = "submitted"
	QuoteStatusUnderReview QuoteStatus = "under_review"
	QuoteStatusAccepted    QuoteStatus = "accepted"
	QuoteStatusRejected    QuoteStatus = "rejected"
)

// Terminal reports whether the status can no longer change.
func (s QuoteStatus) Terminal() bool {
	return s == QuoteStatusAccepted || s == QuoteStatusRejected
}

// QuoteItem is one priced line. LineTotal is always UnitPrice * Quantity
// rounded to cents; it is stored for audit but recomputed on every write.
type QuoteItem struct {
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// Quote is a vendor's priced response to an RFQ. At most one quote per
// RFQ ever reaches accepted.
type Quote struct {
	ID             string
	RFQID          string
	VendorID       string
	Items          []QuoteItem
	Subtotal       decimal.Decimal
	DeliveryCharge decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	FinalAmount    decimal.Decimal
	Status         QuoteStatus
	CreatedAt      time.Time
}
