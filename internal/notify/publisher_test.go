package notify

import "testing"

func TestNewPublisherWithoutURL(t *testing.T) {
	t.Parallel()

	if p := NewPublisher("", nil); p != nil {
		t.Fatal("expected nil publisher when no broker url is configured")
	}
}

func TestNilPublisherDropsEvents(t *testing.T) {
	t.Parallel()

	var p *Publisher
	p.BookingConfirmed(BookingConfirmedEvent{BookingID: "booking-1"})
	p.QuoteSubmitted(QuoteSubmittedEvent{QuoteID: "quote-1"})
	p.InvoicePaid(InvoicePaidEvent{InvoiceID: "invoice-1"})
}
