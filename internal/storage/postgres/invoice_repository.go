package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freshlane/trade-api/internal/domain"
)

type InvoiceRepository struct {
	pool *pgxpool.Pool
}

func NewInvoiceRepository(pool *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{pool: pool}
}

func (r *InvoiceRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *InvoiceRepository) GetQuote(ctx context.Context, quoteID string) (domain.Quote, error) {
	const query = `
SELECT id, rfq_id, vendor_id, subtotal, delivery_charge, discount_amount, tax_amount, final_amount, status, created_at
FROM quotes
WHERE id = $1`

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
	return quote, nil
}

func (r *InvoiceRepository) GetRFQBuyerID(ctx context.Context, rfqID string) (string, error) {
	const query = `SELECT buyer_id FROM rfqs WHERE id = $1`

	var buyerID string
	if err := r.queryRow(ctx, query, rfqID).Scan(&buyerID); err != nil {
		if isInvalidUUID(err) {
			return "", domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return "", domain.ErrRFQNotFound
		}
		return "", fmt.Errorf("get rfq buyer: %w", err)
	}
	return buyerID, nil
}

func (r *InvoiceRepository) CreateInvoice(ctx context.Context, invoice domain.Invoice) error {
	const stmt = `
INSERT INTO invoices (id, invoice_number, quote_id, buyer_id, subtotal, tax_amount, discount, shipping, total_amount, paid_amount, balance_due, status, version, created_at)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.exec(ctx, stmt,
		invoice.ID,
		invoice.Number,
		invoice.QuoteID,
		invoice.BuyerID,
		invoice.Subtotal,
		invoice.TaxAmount,
		invoice.Discount,
		invoice.Shipping,
		invoice.TotalAmount,
		invoice.PaidAmount,
		invoice.BalanceDue,
		string(invoice.Status),
		invoice.Version,
		invoice.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invoice already exists for quote: %w", domain.ErrValidation)
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepository) GetInvoice(ctx context.Context, invoiceID string) (domain.Invoice, error) {
	const query = `
SELECT id, invoice_number, COALESCE(quote_id::text, ''), buyer_id, subtotal, tax_amount, discount, shipping, total_amount, paid_amount, balance_due, status, version, created_at
FROM invoices
WHERE id = $1`

	var inv domain.Invoice
	var status string
	err := r.queryRow(ctx, query, invoiceID).Scan(
		&inv.ID, &inv.Number, &inv.QuoteID, &inv.BuyerID, &inv.Subtotal, &inv.TaxAmount,
		&inv.Discount, &inv.Shipping, &inv.TotalAmount, &inv.PaidAmount, &inv.BalanceDue,
		&status, &inv.Version, &inv.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Invoice{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Invoice{}, domain.ErrInvoiceNotFound
		}
		return domain.Invoice{}, fmt.Errorf("get invoice: %w", err)
	}
	inv.Status = domain.InvoiceStatus(status)
	return inv, nil
}

func (r *InvoiceRepository) UpdateInvoicePayment(ctx context.Context, invoice domain.Invoice, expectedVersion int64) error {
	const stmt = `
UPDATE invoices
SET paid_amount = $2, balance_due = $3, status = $4, version = $5
WHERE id = $1 AND version = $6`

	tag, err := r.exec(ctx, stmt,
		invoice.ID,
		invoice.PaidAmount,
		invoice.BalanceDue,
		string(invoice.Status),
		invoice.Version,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("update invoice payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Row exists but version moved, or invoice vanished; either way
		// the caller re-reads and retries.
		return domain.ErrConcurrencyConflict
	}
	return nil
}

func (r *InvoiceRepository) CreatePayment(ctx context.Context, payment domain.Payment) error {
	const stmt = `
INSERT INTO payments (id, invoice_id, amount, reference, created_at)
VALUES ($1, $2, $3, $4, $5)`

	_, err := r.exec(ctx, stmt, payment.ID, payment.InvoiceID, payment.Amount, payment.Reference, payment.CreatedAt)
	if err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

func (r *InvoiceRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *InvoiceRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
