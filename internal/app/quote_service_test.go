package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/freshlane/trade-api/internal/clock"
	"github.com/freshlane/trade-api/internal/domain"
)

func TestQuoteService_CreateRFQ(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	validInput := func() CreateRFQInput {
		return CreateRFQInput{
			BuyerID:  "buyer-1",
			Category: "leafy greens",
			Items: []domain.RFQItem{
				{ProductName: "iceberg lettuce", Quantity: decimal.NewFromInt(20), Unit: "box"},
			},
			BudgetMin:    decimal.NewFromInt(100),
			BudgetMax:    decimal.NewFromInt(500),
			Urgency:      "standard",
			DeliveryDate: now.AddDate(0, 0, 3),
			MaxQuotes:    5,
			ClosesAt:     now.AddDate(0, 0, 1),
		}
	}

	t.Run("creates draft rfq", func(t *testing.T) {
		repo := newFakeQuoteRepo(nil, nil)
		svc := NewQuoteService(repo, clock.NewFixed(now))

		rfq, err := svc.CreateRFQ(context.Background(), validInput())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if rfq.Status != domain.RFQStatusDraft {
			t.Fatalf("expected draft, got %s", rfq.Status)
		}
		if rfq.ID == "" {
			t.Fatalf("expected rfq ID to be set")
		}
		if len(repo.rfqs) != 1 {
			t.Fatalf("expected 1 rfq in repo, got %d", len(repo.rfqs))
		}
	})

	t.Run("writes rfq and items in one transaction", func(t *testing.T) {
		repo := newFakeQuoteRepo(nil, nil)
		svc := NewQuoteService(repo, clock.NewFixed(now))

		if _, err := svc.CreateRFQ(context.Background(), validInput()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !repo.createdInTx {
			t.Fatal("expected CreateRFQ to run inside a repository transaction")
		}
	})

	t.Run("rejects empty items", func(t *testing.T) {
		svc := NewQuoteService(newFakeQuoteRepo(nil, nil), clock.NewFixed(now))

		in := validInput()
		in.Items = nil
		if _, err := svc.CreateRFQ(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("rejects inverted budget range", func(t *testing.T) {
		svc := NewQuoteService(newFakeQuoteRepo(nil, nil), clock.NewFixed(now))

		in := validInput()
		in.BudgetMin = decimal.NewFromInt(500)
		in.BudgetMax = decimal.NewFromInt(100)
		if _, err := svc.CreateRFQ(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("rejects closes_at in the past", func(t *testing.T) {
		svc := NewQuoteService(newFakeQuoteRepo(nil, nil), clock.NewFixed(now))

		in := validInput()
		in.ClosesAt = now.Add(-time.Hour)
		if _, err := svc.CreateRFQ(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})
}

func TestQuoteService_OpenRFQ(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("opens a draft", func(t *testing.T) {
		repo := newFakeQuoteRepo([]domain.RFQ{{ID: "rfq-1", Status: domain.RFQStatusDraft}}, nil)
		svc := NewQuoteService(repo, clock.NewFixed(now))

		rfq, err := svc.OpenRFQ(context.Background(), "rfq-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if rfq.Status != domain.RFQStatusOpen {
			t.Fatalf("expected open, got %s", rfq.Status)
		}
	})

	t.Run("rejects non-draft", func(t *testing.T) {
		repo := newFakeQuoteRepo([]domain.RFQ{{ID: "rfq-1", Status: domain.RFQStatusAwarded}}, nil)
		svc := NewQuoteService(repo, clock.NewFixed(now))

		if _, err := svc.OpenRFQ(context.Background(), "rfq-1"); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})
}

func TestQuoteService_SubmitQuote(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	openRFQ := domain.RFQ{
		ID:        "rfq-1",
		BuyerID:   "buyer-1",
		Status:    domain.RFQStatusOpen,
		MaxQuotes: 2,
		ClosesAt:  now.Add(24 * time.Hour),
	}

	items := []domain.QuoteItem{
		{ProductName: "iceberg lettuce", Quantity: decimal.NewFromInt(20), UnitPrice: decimal.RequireFromString("2.50")},
		{ProductName: "roma tomatoes", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.RequireFromString("4.35")},
	}

	submit := func(svc *QuoteService, vendorID string) (domain.Quote, error) {
		return svc.SubmitQuote(context.Background(), SubmitQuoteInput{
			RFQID:          "rfq-1",
			VendorID:       vendorID,
			Items:          items,
			DeliveryCharge: decimal.NewFromInt(25),
			DiscountAmount: decimal.NewFromInt(5),
		})
	}

	t.Run("computes totals on submission", func(t *testing.T) {
		repo := newFakeQuoteRepo([]domain.RFQ{openRFQ}, nil)
		svc := NewQuoteService(repo, clock.NewFixed(now))

		quote, err := submit(svc, "vendor-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		// 20*2.50 + 10*4.35 = 93.50; GST 10% of (93.50+25) = 11.85
		if got := quote.Subtotal.StringFixed(2); got != "93.50" {
			t.Fatalf("subtotal = %s, want 93.50", got)
		}
		if got := quote.TaxAmount.StringFixed(2); got != "11.85" {
			t.Fatalf("tax = %s, want 11.85", got)
		}
		if got := quote.FinalAmount.StringFixed(2); got != "125.35" {
			t.Fatalf("final = %s, want 125.35", got)
		}
		if quote.Status != domain.QuoteStatusSubmitted {
			t.Fatalf("expected submitted, got %s", quote.Status)
		}
	})

	t.Run("identical input yields identical totals", func(t *testing.T) {
		repo := newFakeQuoteRepo([]domain.RFQ{openRFQ}, nil)
		svc := NewQuoteService(repo, clock.NewFixed(now))

		first, err := submit(svc, "vendor-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		second, err := submit(svc, "vendor-2")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !first.FinalAmount.Equal(second.FinalAmount) || !first.TaxAmount.Equal(second.TaxAmount) {
			t.Fatalf("totals differ: %s/%s vs %s/%s",
				first.FinalAmount, first.TaxAmount, second.FinalAmount, second.TaxAmount)
		}
	})

	t.Run("rejects quote after closes_at", func(t *testing.T) {
		repo := newFakeQuoteRepo([]domain.RFQ{openRFQ}, nil)
		svc := NewQuoteService(repo, clock.NewFixed(openRFQ.ClosesAt.Add(time.Minute)))

		if _, err := submit(svc, "vendor-1"); !errors.Is(err, domain.ErrRFQClosed) {
			t.Fatalf("expected ErrRFQClosed, got %v", err)
		}
	})

	t.Run("rejects quote on draft rfq", func(t *testing.T) {
		draft := openRFQ
		draft.Status = domain.RFQStatusDraft
		repo := newFakeQuoteRepo([]domain.RFQ{draft}, nil)
		svc := NewQuoteService(repo, clock.NewFixed(now))

		if _, err := submit(svc, "vendor-1"); !errors.Is(err, domain.ErrRFQClosed) {
			t.Fatalf("expected ErrRFQClosed, got %v", err)
		}
	})

	t.Run("enforces max quotes", func(t *testing.T) {
		repo := newFakeQuoteRepo([]domain.RFQ{openRFQ}, nil)
		svc := NewQuoteService(repo, clock.NewFixed(now))

		for i, vendor := range []string{"vendor-1", "vendor-2"} {
			if _, err := submit(svc, vendor); err != nil {
				t.Fatalf("quote %d: expected no error, got %v", i+1, err)
			}
		}
		if _, err := submit(svc, "vendor-3"); !errors.Is(err, domain.ErrQuoteLimitReached) {
			t.Fatalf("expected ErrQuoteLimitReached, got %v", err)
		}
		if len(repo.quotes) != 2 {
			t.Fatalf("expected 2 quotes, got %d", len(repo.quotes))
		}
	})

	t.Run("rejects negative unit price", func(t *testing.T) {
		repo := newFakeQuoteRepo([]domain.RFQ{openRFQ}, nil)
		svc := NewQuoteService(repo, clock.NewFixed(now))

		_, err := svc.SubmitQuote(context.Background(), SubmitQuoteInput{
			RFQID:    "rfq-1",
			VendorID: "vendor-1",
			Items: []domain.QuoteItem{
				{ProductName: "iceberg lettuce", Quantity: decimal.NewFromInt(5), UnitPrice: decimal.NewFromInt(-1)},
			},
		})
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})
}

func TestQuoteService_AwardQuote(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	openRFQ := domain.RFQ{
		ID:        "rfq-1",
		BuyerID:   "buyer-1",
		Status:    domain.RFQStatusOpen,
		MaxQuotes: 5,
		ClosesAt:  now.Add(24 * time.Hour),
	}
	quotes := []domain.Quote{
		{ID: "quote-1", RFQID: "rfq-1", VendorID: "vendor-1", Status: domain.QuoteStatusSubmitted},
		{ID: "quote-2", RFQID: "rfq-1", VendorID: "vendor-2", Status: domain.QuoteStatusUnderReview},
		{ID: "quote-3", RFQID: "rfq-1", VendorID: "vendor-3", Status: domain.QuoteStatusRejected},
	}

	t.Run("accepts one and rejects open siblings", func(t *testing.T) {
		repo := newFakeQuoteRepo([]domain.RFQ{openRFQ}, quotes)
		svc := NewQuoteService(repo, clock.NewFixed(now))

		quote, err := svc.AwardQuote(context.Background(), "rfq-1", "quote-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if quote.Status != domain.QuoteStatusAccepted {
			t.Fatalf("expected accepted, got %s", quote.Status)
		}
		if got := repo.quoteStatus("quote-2"); got != domain.QuoteStatusRejected {
			t.Fatalf("sibling quote-2 = %s, want rejected", got)
		}
		if got := repo.quoteStatus("quote-3"); got != domain.QuoteStatusRejected {
			t.Fatalf("sibling quote-3 = %s, want rejected", got)
		}
		if got := repo.rfqStatus("rfq-1"); got != domain.RFQStatusAwarded {
			t.Fatalf("rfq = %s, want awarded", got)
		}
	})

	t.Run("awarding twice fails", func(t *testing.T) {
		repo := newFakeQuoteRepo([]domain.RFQ{openRFQ}, quotes)
		svc := NewQuoteService(repo, clock.NewFixed(now))

		if _, err := svc.AwardQuote(context.Background(), "rfq-1", "quote-1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := svc.AwardQuote(context.Background(), "rfq-1", "quote-2"); !errors.Is(err, domain.ErrAlreadyAwarded) {
			t.Fatalf("expected ErrAlreadyAwarded, got %v", err)
		}
		if got := repo.quoteStatus("quote-2"); got != domain.QuoteStatusRejected {
			t.Fatalf("quote-2 = %s, want rejected unchanged", got)
		}
	})

	t.Run("awards from a closed rfq", func(t *testing.T) {
		closed := openRFQ
		closed.Status = domain.RFQStatusClosed
		repo := newFakeQuoteRepo([]domain.RFQ{closed}, quotes)
		svc := NewQuoteService(repo, clock.NewFixed(now))

		if _, err := svc.AwardQuote(context.Background(), "rfq-1", "quote-1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("rejects award on expired rfq", func(t *testing.T) {
		expired := openRFQ
		expired.Status = domain.RFQStatusExpired
		repo := newFakeQuoteRepo([]domain.RFQ{expired}, quotes)
		svc := NewQuoteService(repo, clock.NewFixed(now))

		if _, err := svc.AwardQuote(context.Background(), "rfq-1", "quote-1"); !errors.Is(err, domain.ErrRFQClosed) {
			t.Fatalf("expected ErrRFQClosed, got %v", err)
		}
	})

	t.Run("quote must belong to the rfq", func(t *testing.T) {
		other := domain.Quote{ID: "quote-x", RFQID: "rfq-2", VendorID: "vendor-9", Status: domain.QuoteStatusSubmitted}
		repo := newFakeQuoteRepo([]domain.RFQ{openRFQ}, append(quotes, other))
		svc := NewQuoteService(repo, clock.NewFixed(now))

		if _, err := svc.AwardQuote(context.Background(), "rfq-1", "quote-x"); !errors.Is(err, domain.ErrQuoteNotFound) {
			t.Fatalf("expected ErrQuoteNotFound, got %v", err)
		}
	})
}

func TestQuoteService_CloseExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	repo := newFakeQuoteRepo([]domain.RFQ{
		{ID: "rfq-1", Status: domain.RFQStatusOpen, ClosesAt: now.Add(-time.Hour)},
		{ID: "rfq-2", Status: domain.RFQStatusOpen, ClosesAt: now.Add(time.Hour)},
		{ID: "rfq-3", Status: domain.RFQStatusAwarded, ClosesAt: now.Add(-time.Hour)},
	}, nil)
	svc := NewQuoteService(repo, clock.NewFixed(now))

	n, err := svc.CloseExpired(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 expired, got %d", n)
	}
	if got := repo.rfqStatus("rfq-1"); got != domain.RFQStatusExpired {
		t.Fatalf("rfq-1 = %s, want expired", got)
	}
	if got := repo.rfqStatus("rfq-2"); got != domain.RFQStatusOpen {
		t.Fatalf("rfq-2 = %s, want open", got)
	}

	// Second pass finds nothing.
	n, err = svc.CloseExpired(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 expired on second pass, got %d", n)
	}
}

type fakeQuoteRepo struct {
	rfqs   []domain.RFQ
	quotes []domain.Quote

	txDepth     int
	createdInTx bool
}

func newFakeQuoteRepo(rfqs []domain.RFQ, quotes []domain.Quote) *fakeQuoteRepo {
	return &fakeQuoteRepo{
		rfqs:   append([]domain.RFQ{}, rfqs...),
		quotes: append([]domain.Quote{}, quotes...),
	}
}

func (f *fakeQuoteRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.txDepth++
	defer func() { f.txDepth-- }()
	return fn(ctx)
}

func (f *fakeQuoteRepo) CreateRFQ(_ context.Context, rfq domain.RFQ) error {
	f.createdInTx = f.txDepth > 0
	f.rfqs = append(f.rfqs, rfq)
	return nil
}

func (f *fakeQuoteRepo) GetRFQ(_ context.Context, rfqID string) (domain.RFQ, error) {
	for _, rfq := range f.rfqs {
		if rfq.ID == rfqID {
			return rfq, nil
		}
	}
	return domain.RFQ{}, domain.ErrRFQNotFound
}

func (f *fakeQuoteRepo) GetRFQForUpdate(ctx context.Context, rfqID string) (domain.RFQ, error) {
	return f.GetRFQ(ctx, rfqID)
}

func (f *fakeQuoteRepo) UpdateRFQStatus(_ context.Context, rfqID string, status domain.RFQStatus) error {
	for i := range f.rfqs {
		if f.rfqs[i].ID == rfqID {
			f.rfqs[i].Status = status
			return nil
		}
	}
	return domain.ErrRFQNotFound
}

func (f *fakeQuoteRepo) CountQuotes(_ context.Context, rfqID string) (int, error) {
	count := 0
	for _, q := range f.quotes {
		if q.RFQID == rfqID {
			count++
		}
	}
	return count, nil
}

func (f *fakeQuoteRepo) CreateQuote(_ context.Context, quote domain.Quote) error {
	f.quotes = append(f.quotes, quote)
	return nil
}

func (f *fakeQuoteRepo) GetQuote(_ context.Context, quoteID string) (domain.Quote, error) {
	for _, q := range f.quotes {
		if q.ID == quoteID {
			return q, nil
		}
	}
	return domain.Quote{}, domain.ErrQuoteNotFound
}

func (f *fakeQuoteRepo) ListQuotesByRFQ(_ context.Context, rfqID string) ([]domain.Quote, error) {
	var out []domain.Quote
	for _, q := range f.quotes {
		if q.RFQID == rfqID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuoteRepo) UpdateQuoteStatus(_ context.Context, quoteID string, status domain.QuoteStatus) error {
	for i := range f.quotes {
		if f.quotes[i].ID == quoteID {
			f.quotes[i].Status = status
			return nil
		}
	}
	return domain.ErrQuoteNotFound
}

func (f *fakeQuoteRepo) ExpireOpenBefore(_ context.Context, now time.Time) (int, error) {
	n := 0
	for i := range f.rfqs {
		if f.rfqs[i].Status == domain.RFQStatusOpen && f.rfqs[i].ClosesAt.Before(now) {
			f.rfqs[i].Status = domain.RFQStatusExpired
			n++
		}
	}
	return n, nil
}

func (f *fakeQuoteRepo) quoteStatus(id string) domain.QuoteStatus {
	for _, q := range f.quotes {
		if q.ID == id {
			return q.Status
		}
	}
	return ""
}

func (f *fakeQuoteRepo) rfqStatus(id string) domain.RFQStatus {
	for _, r := range f.rfqs {
		if r.ID == id {
			return r.Status
		}
	}
	return ""
}
