package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestComputeQuoteTotals(t *testing.T) {
	t.Parallel()

	items := []QuoteItem{
		{ProductName: "iceberg lettuce", Quantity: decimal.RequireFromString("20"), UnitPrice: decimal.RequireFromString("2.50")},
		{ProductName: "truss tomatoes", Quantity: decimal.RequireFromString("10"), UnitPrice: decimal.RequireFromString("4.35")},
	}
	delivery := decimal.RequireFromString("25.00")
	discount := decimal.RequireFromString("5.00")

	got := ComputeQuoteTotals(items, delivery, discount)
	if got.Subtotal.StringFixed(2) != "93.50" {
		t.Fatalf("expected subtotal 93.50, got %s", got.Subtotal)
	}
	if got.TaxAmount.StringFixed(2) != "11.85" {
		t.Fatalf("expected tax 11.85, got %s", got.TaxAmount)
	}
	if got.FinalAmount.StringFixed(2) != "125.35" {
		t.Fatalf("expected final 125.35, got %s", got.FinalAmount)
	}
	if got.Items[0].LineTotal.StringFixed(2) != "50.00" {
		t.Fatalf("expected first line 50.00, got %s", got.Items[0].LineTotal)
	}
}

func TestComputeQuoteTotalsIsIdempotent(t *testing.T) {
	t.Parallel()

	items := []QuoteItem{
		{ProductName: "basil", Quantity: decimal.RequireFromString("3.333"), UnitPrice: decimal.RequireFromString("1.99")},
		{ProductName: "figs", Quantity: decimal.RequireFromString("7"), UnitPrice: decimal.RequireFromString("6.05")},
	}
	delivery := decimal.RequireFromString("12.40")
	discount := decimal.Zero

	first := ComputeQuoteTotals(items, delivery, discount)

	// Recompute from the stored line items, as the audit check does.
	second := ComputeQuoteTotals(first.Items, delivery, discount)
	if !first.Subtotal.Equal(second.Subtotal) {
		t.Fatalf("subtotal drifted: %s vs %s", first.Subtotal, second.Subtotal)
	}
	if !first.TaxAmount.Equal(second.TaxAmount) {
		t.Fatalf("tax drifted: %s vs %s", first.TaxAmount, second.TaxAmount)
	}
	if !first.FinalAmount.Equal(second.FinalAmount) {
		t.Fatalf("final drifted: %s vs %s", first.FinalAmount, second.FinalAmount)
	}
}

func TestRoundMoneyHalfAwayFromZero(t *testing.T) {
	t.Parallel()

	if got := RoundMoney(decimal.RequireFromString("1.005")); got.StringFixed(2) != "1.01" {
		t.Fatalf("expected 1.01, got %s", got)
	}
	if got := RoundMoney(decimal.RequireFromString("-1.005")); got.StringFixed(2) != "-1.01" {
		t.Fatalf("expected -1.01, got %s", got)
	}
}

func TestInvoiceTotal(t *testing.T) {
	t.Parallel()

	total := InvoiceTotal(
		decimal.RequireFromString("200.00"),
		decimal.RequireFromString("20.00"),
		decimal.RequireFromString("10.00"),
		decimal.RequireFromString("16.50"),
	)
	if total.StringFixed(2) != "226.50" {
		t.Fatalf("expected 226.50, got %s", total)
	}
}
