package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freshlane/trade-api/internal/domain"
)

type QuoteRepository struct {
	pool *pgxpool.Pool
}

func NewQuoteRepository(pool *pgxpool.Pool) *QuoteRepository {
	return &QuoteRepository{pool: pool}
}

func (r *QuoteRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *QuoteRepository) CreateRFQ(ctx context.Context, rfq domain.RFQ) error {
	const stmt = `
INSERT INTO rfqs (id, buyer_id, category, budget_min, budget_max, urgency, delivery_date, status, max_quotes, closes_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.exec(ctx, stmt,
		rfq.ID,
		rfq.BuyerID,
		rfq.Category,
		rfq.BudgetMin,
		rfq.BudgetMax,
		rfq.Urgency,
		rfq.DeliveryDate,
		string(rfq.Status),
		rfq.MaxQuotes,
		rfq.ClosesAt,
		rfq.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create rfq: %w", err)
	}

	const itemStmt = `
INSERT INTO rfq_items (rfq_id, position, product_name, quantity, unit, specification)
VALUES ($1, $2, $3, $4, $5, $6)`

	for i, item := range rfq.Items {
		if _, err := r.exec(ctx, itemStmt, rfq.ID, i, item.ProductName, item.Quantity, item.Unit, item.Specification); err != nil {
			return fmt.Errorf("create rfq item: %w", err)
		}
	}
	return nil
}

const rfqColumns = `id, buyer_id, category, budget_min, budget_max, urgency, delivery_date, status, max_quotes, closes_at, created_at`

func (r *QuoteRepository) GetRFQ(ctx context.Context, rfqID string) (domain.RFQ, error) {
	query := `SELECT ` + rfqColumns + ` FROM rfqs WHERE id = $1`
	return r.getRFQ(ctx, query, rfqID)
}

func (r *QuoteRepository) GetRFQForUpdate(ctx context.Context, rfqID string) (domain.RFQ, error) {
	query := `SELECT ` + rfqColumns + ` FROM rfqs WHERE id = $1 FOR UPDATE`
	return r.getRFQ(ctx, query, rfqID)
}

func (r *QuoteRepository) getRFQ(ctx context.Context, query, rfqID string) (domain.RFQ, error) {
	var rfq domain.RFQ
	var status string
	err := r.queryRow(ctx, query, rfqID).Scan(
		&rfq.ID, &rfq.BuyerID, &rfq.Category, &rfq.BudgetMin, &rfq.BudgetMax,
		&rfq.Urgency, &rfq.DeliveryDate, &status, &rfq.MaxQuotes, &rfq.ClosesAt, &rfq.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.RFQ{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.RFQ{}, domain.ErrRFQNotFound
		}
		return domain.RFQ{}, fmt.Errorf("get rfq: %w", err)
	}
	rfq.Status = domain.RFQStatus(status)

	items, err := r.listRFQItems(ctx, rfq.ID)
	if err != nil {
		return domain.RFQ{}, err
	}
	rfq.Items = items
	return rfq, nil
}

func (r *QuoteRepository) listRFQItems(ctx context.Context, rfqID string) ([]domain.RFQItem, error) {
	const query = `
SELECT product_name, quantity, unit, specification
FROM rfq_items
WHERE rfq_id = $1
ORDER BY position`

	rows, err := r.query(ctx, query, rfqID)
	if err != nil {
		return nil, fmt.Errorf("list rfq items: %w", err)
	}
	defer rows.Close()

	var items []domain.RFQItem
	for rows.Next() {
		var item domain.RFQItem
		if err := rows.Scan(&item.ProductName, &item.Quantity, &item.Unit, &item.Specification); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *QuoteRepository) UpdateRFQStatus(ctx context.Context, rfqID string, status domain.RFQStatus) error {
	const stmt = `UPDATE rfqs SET status = $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, rfqID, string(status))
	if err != nil {
		return fmt.Errorf("update rfq status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRFQNotFound
	}
	return nil
}

func (r *QuoteRepository) CountQuotes(ctx context.Context, rfqID string) (int, error) {
	const query = `SELECT COUNT(*) FROM quotes WHERE rfq_id = $1`

	var total int
	if err := r.queryRow(ctx, query, rfqID).Scan(&total); err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("count quotes: %w", err)
	}
	return total, nil
}

func (r *QuoteRepository) CreateQuote(ctx context.Context, quote domain.Quote) error {
	const stmt = `
INSERT INTO quotes (id, rfq_id, vendor_id, subtotal, delivery_charge, discount_amount, tax_amount, final_amount, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.exec(ctx, stmt,
		quote.ID,
		quote.RFQID,
		quote.VendorID,
		quote.Subtotal,
		quote.DeliveryCharge,
		quote.DiscountAmount,
		quote.TaxAmount,
		quote.FinalAmount,
		string(quote.Status),
		quote.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create quote: %w", err)
	}

	const itemStmt = `
INSERT INTO quote_items (quote_id, position, product_name, quantity, unit_price, line_total)
VALUES ($1, $2, $3, $4, $5, $6)`

	for i, item := range quote.Items {
		if _, err := r.exec(ctx, itemStmt, quote.ID, i, item.ProductName, item.Quantity, item.UnitPrice, item.LineTotal); err != nil {
			return fmt.Errorf("create quote item: %w", err)
		}
	}
	return nil
}

const quoteColumns = `id, rfq_id, vendor_id, subtotal, delivery_charge, discount_amount, tax_amount, final_amount, status, created_at`

func (r *QuoteRepository) GetQuote(ctx context.Context, quoteID string) (domain.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE id = $1`

	quote, err := scanQuote(r.queryRow(ctx, query, quoteID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Quote{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Quote{}, domain.ErrQuoteNotFound
		}
		return domain.Quote{}, fmt.Errorf("get quote: %w", err)
	}

	items, err := r.listQuoteItems(ctx, quote.ID)
	if err != nil {
		return domain.Quote{}, err
	}
	quote.Items = items
	return quote, nil
}

func (r *QuoteRepository) ListQuotesByRFQ(ctx context.Context, rfqID string) ([]domain.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE rfq_id = $1 ORDER BY created_at`

	rows, err := r.query(ctx, query, rfqID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	defer rows.Close()

	var quotes []domain.Quote
	for rows.Next() {
		quote, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, quote)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range quotes {
		items, err := r.listQuoteItems(ctx, quotes[i].ID)
		if err != nil {
			return nil, err
		}
		quotes[i].Items = items
	}
	return quotes, nil
}

func (r *QuoteRepository) listQuoteItems(ctx context.Context, quoteID string) ([]domain.QuoteItem, error) {
	const query = `
SELECT product_name, quantity, unit_price, line_total
FROM quote_items
WHERE quote_id = $1
ORDER BY position`

	rows, err := r.query(ctx, query, quoteID)
	if err != nil {
		return nil, fmt.Errorf("list quote items: %w", err)
	}
	defer rows.Close()

	var items []domain.QuoteItem
	for rows.Next() {
		var item domain.QuoteItem
		if err := rows.Scan(&item.ProductName, &item.Quantity, &item.UnitPrice, &item.LineTotal); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanQuote(row pgx.Row) (domain.Quote, error) {
	var q domain.Quote
	var status string
	err := row.Scan(
		&q.ID, &q.RFQID, &q.VendorID, &q.Subtotal, &q.DeliveryCharge,
		&q.DiscountAmount, &q.TaxAmount, &q.FinalAmount, &status, &q.CreatedAt,
	)
	if err != nil {
		return domain.Quote{}, err
	}
	q.Status = domain.QuoteStatus(status)
	return q, nil
}

func (r *QuoteRepository) UpdateQuoteStatus(ctx context.Context, quoteID string, status domain.QuoteStatus) error {
	const stmt = `UPDATE quotes SET status = $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, quoteID, string(status))
	if err != nil {
		if isUniqueViolation(err) {
			// Partial unique index: one accepted quote per RFQ.
			return domain.ErrAlreadyAwarded
		}
		return fmt.Errorf("update quote status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuoteNotFound
	}
	return nil
}

func (r *QuoteRepository) ExpireOpenBefore(ctx context.Context, now time.Time) (int, error) {
	const stmt = `UPDATE rfqs SET status = 'expired' WHERE status = 'open' AND closes_at < $1`

	tag, err := r.exec(ctx, stmt, now)
	if err != nil {
		return 0, fmt.Errorf("expire rfqs: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *QuoteRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *QuoteRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *QuoteRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
