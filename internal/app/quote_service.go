package app

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/freshlane/trade-api/internal/clock"
	"github.com/freshlane/trade-api/internal/domain"
)

type QuoteRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateRFQ(ctx context.Context, rfq domain.RFQ) error
	GetRFQ(ctx context.Context, rfqID string) (domain.RFQ, error)
	GetRFQForUpdate(ctx context.Context, rfqID string) (domain.RFQ, error)
	UpdateRFQStatus(ctx context.Context, rfqID string, status domain.RFQStatus) error
	CountQuotes(ctx context.Context, rfqID string) (int, error)
	CreateQuote(ctx context.Context, quote domain.Quote) error
	GetQuote(ctx context.Context, quoteID string) (domain.Quote, error)
	ListQuotesByRFQ(ctx context.Context, rfqID string) ([]domain.Quote, error)
	UpdateQuoteStatus(ctx context.Context, quoteID string, status domain.QuoteStatus) error
	ExpireOpenBefore(ctx context.Context, now time.Time) (int, error)
}

// QuoteService manages the RFQ lifecycle and vendor quote collection.
type QuoteService struct {
	repo  QuoteRepository
	clock clock.Clock
}

func NewQuoteService(repo QuoteRepository, clk clock.Clock) *QuoteService {
	return &QuoteService{
		repo:  repo,
		clock: clk,
	}
}

type CreateRFQInput struct {
	BuyerID      string
	Category     string
	Items        []domain.RFQItem
	BudgetMin    decimal.Decimal
	BudgetMax    decimal.Decimal
	Urgency      string
	DeliveryDate time.Time
	MaxQuotes    int
	ClosesAt     time.Time
}

func (s *QuoteService) CreateRFQ(ctx context.Context, in CreateRFQInput) (domain.RFQ, error) {
	if in.BuyerID == "" {
		return domain.RFQ{}, domain.ErrInvalidID
	}
	if len(in.Items) == 0 {
		return domain.RFQ{}, fmt.Errorf("rfq needs at least one item: %w", domain.ErrValidation)
	}
	for _, item := range in.Items {
		if item.ProductName == "" {
			return domain.RFQ{}, fmt.Errorf("rfq item product name required: %w", domain.ErrValidation)
		}
		if item.Quantity.Sign() <= 0 {
			return domain.RFQ{}, fmt.Errorf("rfq item %q quantity must be positive: %w", item.ProductName, domain.ErrValidation)
		}
	}
	if in.BudgetMin.Sign() < 0 || in.BudgetMax.Cmp(in.BudgetMin) < 0 {
		return domain.RFQ{}, fmt.Errorf("budget range %s-%s invalid: %w", in.BudgetMin, in.BudgetMax, domain.ErrValidation)
	}
	if in.MaxQuotes <= 0 {
		return domain.RFQ{}, fmt.Errorf("max_quotes must be positive: %w", domain.ErrValidation)
	}
	now := s.clock.Now()
	if !in.ClosesAt.After(now) {
		return domain.RFQ{}, fmt.Errorf("closes_at must be in the future: %w", domain.ErrValidation)
	}

	rfq := domain.RFQ{
		ID:           newUUID(),
		BuyerID:      in.BuyerID,
		Category:     in.Category,
		Items:        in.Items,
		BudgetMin:    in.BudgetMin,
		BudgetMax:    in.BudgetMax,
		Urgency:      in.Urgency,
		DeliveryDate: in.DeliveryDate,
		Status:       domain.RFQStatusDraft,
		MaxQuotes:    in.MaxQuotes,
		ClosesAt:     in.ClosesAt.UTC(),
		CreatedAt:    now,
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context) error {
		return s.repo.CreateRFQ(ctx, rfq)
	})
	if err != nil {
		return domain.RFQ{}, err
	}
	return rfq, nil
}

// OpenRFQ publishes a draft RFQ to vendors. Only draft RFQs can open;
// every later status is one-way.
func (s *QuoteService) OpenRFQ(ctx context.Context, rfqID string) (domain.RFQ, error) {
	if rfqID == "" {
		return domain.RFQ{}, domain.ErrInvalidID
	}

	var result domain.RFQ
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		rfq, err := s.repo.GetRFQForUpdate(txCtx, rfqID)
		if err != nil {
			return err
		}
		if rfq.Status != domain.RFQStatusDraft {
			return fmt.Errorf("rfq is %s, only drafts can open: %w", rfq.Status, domain.ErrValidation)
		}
		if err := s.repo.UpdateRFQStatus(txCtx, rfq.ID, domain.RFQStatusOpen); err != nil {
			return err
		}
		rfq.Status = domain.RFQStatusOpen
		result = rfq
		return nil
	})
	if err != nil {
		return domain.RFQ{}, err
	}
	return result, nil
}

type SubmitQuoteInput struct {
	RFQID          string
	VendorID       string
	Items          []domain.QuoteItem
	DeliveryCharge decimal.Decimal
	DiscountAmount decimal.Decimal
}

func (s *QuoteService) SubmitQuote(ctx context.Context, in SubmitQuoteInput) (domain.Quote, error) {
	if in.RFQID == "" || in.VendorID == "" {
		return domain.Quote{}, domain.ErrInvalidID
	}
	if len(in.Items) == 0 {
		return domain.Quote{}, fmt.Errorf("quote needs at least one line item: %w", domain.ErrValidation)
	}
	for _, item := range in.Items {
		if item.ProductName == "" {
			return domain.Quote{}, fmt.Errorf("quote item product name required: %w", domain.ErrValidation)
		}
		if item.Quantity.Sign() <= 0 {
			return domain.Quote{}, fmt.Errorf("quote item %q quantity must be positive: %w", item.ProductName, domain.ErrValidation)
		}
		if item.UnitPrice.Sign() < 0 {
			return domain.Quote{}, fmt.Errorf("quote item %q unit price must not be negative: %w", item.ProductName, domain.ErrValidation)
		}
	}
	if in.DeliveryCharge.Sign() < 0 || in.DiscountAmount.Sign() < 0 {
		return domain.Quote{}, fmt.Errorf("delivery charge and discount must not be negative: %w", domain.ErrValidation)
	}

	now := s.clock.Now()
	var result domain.Quote

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		rfq, err := s.repo.GetRFQForUpdate(txCtx, in.RFQID)
		if err != nil {
			return err
		}
		if !rfq.AcceptsQuotes(now) {
			return fmt.Errorf("rfq %s is %s: %w", rfq.ID, rfq.Status, domain.ErrRFQClosed)
		}

		// quote_count is derived inside the transaction, never stored.
		count, err := s.repo.CountQuotes(txCtx, in.RFQID)
		if err != nil {
			return err
		}
		if count >= rfq.MaxQuotes {
			return fmt.Errorf("rfq %s already has %d quotes: %w", rfq.ID, count, domain.ErrQuoteLimitReached)
		}

		totals := domain.ComputeQuoteTotals(in.Items, in.DeliveryCharge, in.DiscountAmount)
		quote := domain.Quote{
			ID:             newUUID(),
			RFQID:          in.RFQID,
			VendorID:       in.VendorID,
			Items:          totals.Items,
			Subtotal:       totals.Subtotal,
			DeliveryCharge: in.DeliveryCharge,
			DiscountAmount: in.DiscountAmount,
			TaxAmount:      totals.TaxAmount,
			FinalAmount:    totals.FinalAmount,
			Status:         domain.QuoteStatusSubmitted,
			CreatedAt:      now,
		}
		if err := s.repo.CreateQuote(txCtx, quote); err != nil {
			return err
		}
		result = quote
		return nil
	})
	if err != nil {
		return domain.Quote{}, err
	}
	return result, nil
}

// AwardQuote accepts one quote and rejects every non-terminal sibling.
// The RFQ row lock makes the transition exclusive under concurrency.
func (s *QuoteService) AwardQuote(ctx context.Context, rfqID, quoteID string) (domain.Quote, error) {
	if rfqID == "" || quoteID == "" {
		return domain.Quote{}, domain.ErrInvalidID
	}

	var result domain.Quote
	err := withConflictRetry(ctx, func(ctx context.Context) error {
		return s.repo.WithTx(ctx, func(txCtx context.Context) error {
			rfq, err := s.repo.GetRFQForUpdate(txCtx, rfqID)
			if err != nil {
				return err
			}
			switch rfq.Status {
			case domain.RFQStatusAwarded:
				return fmt.Errorf("rfq %s: %w", rfq.ID, domain.ErrAlreadyAwarded)
			case domain.RFQStatusOpen, domain.RFQStatusClosed:
			default:
				return fmt.Errorf("rfq %s is %s: %w", rfq.ID, rfq.Status, domain.ErrRFQClosed)
			}

			quote, err := s.repo.GetQuote(txCtx, quoteID)
			if err != nil {
				return err
			}
			if quote.RFQID != rfqID {
				return fmt.Errorf("quote %s does not belong to rfq %s: %w", quoteID, rfqID, domain.ErrQuoteNotFound)
			}

			siblings, err := s.repo.ListQuotesByRFQ(txCtx, rfqID)
			if err != nil {
				return err
			}
			for _, sibling := range siblings {
				if sibling.Status == domain.QuoteStatusAccepted {
					return fmt.Errorf("quote %s already accepted: %w", sibling.ID, domain.ErrAlreadyAwarded)
				}
			}

			if err := s.repo.UpdateQuoteStatus(txCtx, quote.ID, domain.QuoteStatusAccepted); err != nil {
				return err
			}
			for _, sibling := range siblings {
				if sibling.ID == quote.ID || sibling.Status.Terminal() {
					continue
				}
				if err := s.repo.UpdateQuoteStatus(txCtx, sibling.ID, domain.QuoteStatusRejected); err != nil {
					return err
				}
			}
			if err := s.repo.UpdateRFQStatus(txCtx, rfq.ID, domain.RFQStatusAwarded); err != nil {
				return err
			}

			quote.Status = domain.QuoteStatusAccepted
			result = quote
			return nil
		})
	})
	if err != nil {
		return domain.Quote{}, err
	}
	return result, nil
}

// CloseExpired transitions open RFQs past their closes_at to expired.
// Safe to run from a timer; a second pass finds nothing to change.
func (s *QuoteService) CloseExpired(ctx context.Context) (int, error) {
	return s.repo.ExpireOpenBefore(ctx, s.clock.Now())
}
