package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusIssued        InvoiceStatus = "issued"
	InvoiceStatusPartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceStatusPaid          InvoiceStatus = "paid"
)

// Invoice is derived from an accepted quote or a direct order. The
// total decomposition is stored redundantly for audit; BalanceDue is
// TotalAmount - PaidAmount and never goes negative. Version guards
// concurrent payment application.
type Invoice struct {
	ID          string
	Number      string
	QuoteID     string
	BuyerID     string
	Subtotal    decimal.Decimal
	TaxAmount   decimal.Decimal
	Discount    decimal.Decimal
	Shipping    decimal.Decimal
	TotalAmount decimal.Decimal
	PaidAmount  decimal.Decimal
	BalanceDue  decimal.Decimal
	Status      InvoiceStatus
	Version     int64
	CreatedAt   time.Time
}

// Payment records one applied payment against an invoice.
type Payment struct {
	ID        string
	InvoiceID string
	Amount    decimal.Decimal
	Reference string
	CreatedAt time.Time
}
