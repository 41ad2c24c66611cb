package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 3 * time.Second

const (
	QueueBookingConfirmed = "booking.confirmed"
	QueueQuoteSubmitted   = "quote.submitted"
	QueueInvoicePaid      = "invoice.paid"
)

// Publisher sends persistent JSON messages to named queues. A nil
// Publisher is valid and drops every event, so callers never need to
// branch on whether a broker is configured.
type Publisher struct {
	url    string
	logger *log.Logger
}

func NewPublisher(url string, logger *log.Logger) *Publisher {
	if url == "" {
		return nil
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Publisher{url: url, logger: logger}
}

func (p *Publisher) BookingConfirmed(event BookingConfirmedEvent) {
	p.publish(QueueBookingConfirmed, event)
}

func (p *Publisher) QuoteSubmitted(event QuoteSubmittedEvent) {
	p.publish(QueueQuoteSubmitted, event)
}

func (p *Publisher) InvoicePaid(event InvoicePaidEvent) {
	p.publish(QueueInvoicePaid, event)
}

// publish dials per message; the broker is a best-effort collaborator
// and a dropped event must never stall or fail the caller.
func (p *Publisher) publish(queue string, event any) {
	if p == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.logger.Printf("WARN: notify dial failed queue=%s: %v", queue, err)
		return
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.logger.Printf("WARN: notify channel failed queue=%s: %v", queue, err)
		return
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		p.logger.Printf("WARN: notify queue declare failed queue=%s: %v", queue, err)
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Printf("WARN: notify marshal failed queue=%s: %v", queue, err)
		return
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		p.logger.Printf("WARN: notify publish failed queue=%s: %v", queue, err)
	}
}
