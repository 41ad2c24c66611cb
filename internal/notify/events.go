// Package notify publishes domain events to the message broker for
// downstream consumers (notifications, analytics). Publishing is
// fire-and-forget: failures are logged and never fail the request.
package notify

// BookingConfirmedEvent is published when a bay reservation succeeds.
type BookingConfirmedEvent struct {
	BookingID   string `json:"booking_id"`
	BuyerID     string `json:"buyer_id"`
	ZoneID      string `json:"zone_id"`
	BayID       string `json:"bay_id"`
	SlotID      string `json:"slot_id"`
	VehicleType string `json:"vehicle_type"`
	Date        string `json:"date"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

// QuoteSubmittedEvent is published when a vendor quote lands on an RFQ.
type QuoteSubmittedEvent struct {
	QuoteID     string `json:"quote_id"`
	RFQID       string `json:"rfq_id"`
	VendorID    string `json:"vendor_id"`
	FinalAmount string `json:"final_amount"`
	SubmittedAt string `json:"submitted_at"`
}

// InvoicePaidEvent is published when a payment settles an invoice.
type InvoicePaidEvent struct {
	InvoiceID     string `json:"invoice_id"`
	InvoiceNumber string `json:"invoice_number"`
	BuyerID       string `json:"buyer_id"`
	TotalAmount   string `json:"total_amount"`
	PaidAt        string `json:"paid_at"`
}
