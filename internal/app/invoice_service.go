package app

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/freshlane/trade-api/internal/clock"
	"github.com/freshlane/trade-api/internal/domain"
)

type InvoiceRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetQuote(ctx context.Context, quoteID string) (domain.Quote, error)
	GetRFQBuyerID(ctx context.Context, rfqID string) (string, error)
	CreateInvoice(ctx context.Context, invoice domain.Invoice) error
	GetInvoice(ctx context.Context, invoiceID string) (domain.Invoice, error)
	// UpdateInvoicePayment applies the new paid/balance/status only when
	// the stored version still matches expectedVersion; otherwise it
	// returns ErrConcurrencyConflict.
	UpdateInvoicePayment(ctx context.Context, invoice domain.Invoice, expectedVersion int64) error
	CreatePayment(ctx context.Context, payment domain.Payment) error
}

// InvoiceService derives invoices from accepted quotes or direct orders
// and applies payments without ever letting the balance go negative.
type InvoiceService struct {
	repo  InvoiceRepository
	clock clock.Clock
}

func NewInvoiceService(repo InvoiceRepository, clk clock.Clock) *InvoiceService {
	return &InvoiceService{
		repo:  repo,
		clock: clk,
	}
}

// CreateInvoiceFromQuote issues an invoice for an accepted quote. The
// quote's totals become the invoice's audit decomposition.
func (s *InvoiceService) CreateInvoiceFromQuote(ctx context.Context, quoteID string) (domain.Invoice, error) {
	if quoteID == "" {
		return domain.Invoice{}, domain.ErrInvalidID
	}

	now := s.clock.Now()
	var result domain.Invoice

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		quote, err := s.repo.GetQuote(txCtx, quoteID)
		if err != nil {
			return err
		}
		if quote.Status != domain.QuoteStatusAccepted {
			return fmt.Errorf("quote %s is %s: %w", quote.ID, quote.Status, domain.ErrQuoteNotAccepted)
		}

		buyerID, err := s.repo.GetRFQBuyerID(txCtx, quote.RFQID)
		if err != nil {
			return err
		}

		invoice := buildInvoice(directInvoiceInput{
			QuoteID:  quote.ID,
			BuyerID:  buyerID,
			Subtotal: quote.Subtotal,
			Tax:      quote.TaxAmount,
			Discount: quote.DiscountAmount,
			Shipping: quote.DeliveryCharge,
		}, now)
		if err := s.repo.CreateInvoice(txCtx, invoice); err != nil {
			return err
		}
		result = invoice
		return nil
	})
	if err != nil {
		return domain.Invoice{}, err
	}
	return result, nil
}

type CreateInvoiceInput struct {
	BuyerID  string
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Discount decimal.Decimal
	Shipping decimal.Decimal
}

// CreateInvoice issues an invoice for a direct order. The total is
// always recomputed from the parts, never trusted from the caller.
func (s *InvoiceService) CreateInvoice(ctx context.Context, in CreateInvoiceInput) (domain.Invoice, error) {
	if in.BuyerID == "" {
		return domain.Invoice{}, domain.ErrInvalidID
	}
	if in.Subtotal.Sign() < 0 || in.Tax.Sign() < 0 || in.Discount.Sign() < 0 || in.Shipping.Sign() < 0 {
		return domain.Invoice{}, fmt.Errorf("invoice amounts must not be negative: %w", domain.ErrValidation)
	}

	invoice := buildInvoice(directInvoiceInput{
		BuyerID:  in.BuyerID,
		Subtotal: in.Subtotal,
		Tax:      in.Tax,
		Discount: in.Discount,
		Shipping: in.Shipping,
	}, s.clock.Now())
	if invoice.TotalAmount.Sign() < 0 {
		return domain.Invoice{}, fmt.Errorf("discount exceeds invoice value: %w", domain.ErrValidation)
	}

	if err := s.repo.CreateInvoice(ctx, invoice); err != nil {
		return domain.Invoice{}, err
	}
	return invoice, nil
}

type directInvoiceInput struct {
	QuoteID  string
	BuyerID  string
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Discount decimal.Decimal
	Shipping decimal.Decimal
}

func buildInvoice(in directInvoiceInput, now time.Time) domain.Invoice {
	total := domain.InvoiceTotal(in.Subtotal, in.Tax, in.Discount, in.Shipping)
	return domain.Invoice{
		ID:          newUUID(),
		Number:      newInvoiceNumber(now),
		QuoteID:     in.QuoteID,
		BuyerID:     in.BuyerID,
		Subtotal:    in.Subtotal,
		TaxAmount:   in.Tax,
		Discount:    in.Discount,
		Shipping:    in.Shipping,
		TotalAmount: total,
		PaidAmount:  decimal.Zero,
		BalanceDue:  total,
		Status:      domain.InvoiceStatusIssued,
		Version:     1,
		CreatedAt:   now,
	}
}

type ApplyPaymentInput struct {
	InvoiceID string
	Amount    decimal.Decimal
	Reference string
}

// ApplyPayment credits an invoice. The version check serializes
// concurrent webhook deliveries; conflicts retry up to three times.
func (s *InvoiceService) ApplyPayment(ctx context.Context, in ApplyPaymentInput) (domain.Invoice, error) {
	if in.InvoiceID == "" {
		return domain.Invoice{}, domain.ErrInvalidID
	}
	if in.Amount.Sign() <= 0 {
		return domain.Invoice{}, fmt.Errorf("payment amount must be positive: %w", domain.ErrValidation)
	}

	now := s.clock.Now()
	var result domain.Invoice

	err := withConflictRetry(ctx, func(ctx context.Context) error {
		return s.repo.WithTx(ctx, func(txCtx context.Context) error {
			invoice, err := s.repo.GetInvoice(txCtx, in.InvoiceID)
			if err != nil {
				return err
			}
			if in.Amount.Cmp(invoice.BalanceDue) > 0 {
				return fmt.Errorf(
					"payment %s exceeds balance due %s on invoice %s: %w",
					in.Amount, invoice.BalanceDue, invoice.Number, domain.ErrOverpayment,
				)
			}

			expectedVersion := invoice.Version
			invoice.PaidAmount = domain.RoundMoney(invoice.PaidAmount.Add(in.Amount))
			invoice.BalanceDue = domain.RoundMoney(invoice.TotalAmount.Sub(invoice.PaidAmount))
			if invoice.BalanceDue.IsZero() {
				invoice.Status = domain.InvoiceStatusPaid
			} else {
				invoice.Status = domain.InvoiceStatusPartiallyPaid
			}
			invoice.Version = expectedVersion + 1

			if err := s.repo.UpdateInvoicePayment(txCtx, invoice, expectedVersion); err != nil {
				return err
			}
			payment := domain.Payment{
				ID:        newUUID(),
				InvoiceID: invoice.ID,
				Amount:    in.Amount,
				Reference: in.Reference,
				CreatedAt: now,
			}
			if err := s.repo.CreatePayment(txCtx, payment); err != nil {
				return err
			}
			result = invoice
			return nil
		})
	})
	if err != nil {
		return domain.Invoice{}, err
	}
	return result, nil
}
