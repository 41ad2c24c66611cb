package domain

import "github.com/shopspring/decimal"

// GSTRate is the Australian Goods and Services Tax applied to quotes
// and invoices.
var GSTRate = decimal.NewFromFloat(0.10)

const moneyPlaces = 2

// RoundMoney rounds to whole cents, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}

// QuoteTotals holds the derived money fields of a quote. Deriving them
// through ComputeQuoteTotals from the same line items always yields the
// same result, so stored totals can be verified bit-for-bit.
type QuoteTotals struct {
	Items       []QuoteItem
	Subtotal    decimal.Decimal
	TaxAmount   decimal.Decimal
	FinalAmount decimal.Decimal
}

// ComputeQuoteTotals derives per-line totals, the subtotal, GST on
// subtotal plus delivery, and the final amount:
//
//	final = subtotal + tax + delivery - discount
func ComputeQuoteTotals(items []QuoteItem, delivery, discount decimal.Decimal) QuoteTotals {
	out := QuoteTotals{Items: make([]QuoteItem, len(items))}
	subtotal := decimal.Zero
	for i, item := range items {
		line := RoundMoney(item.UnitPrice.Mul(item.Quantity))
		item.LineTotal = line
		out.Items[i] = item
		subtotal = subtotal.Add(line)
	}
	out.Subtotal = RoundMoney(subtotal)
	out.TaxAmount = RoundMoney(out.Subtotal.Add(delivery).Mul(GSTRate))
	out.FinalAmount = RoundMoney(out.Subtotal.Add(out.TaxAmount).Add(delivery).Sub(discount))
	return out
}

// InvoiceTotal computes the audited invoice total:
//
//	total = subtotal + tax - discount + shipping
func InvoiceTotal(subtotal, tax, discount, shipping decimal.Decimal) decimal.Decimal {
	return RoundMoney(subtotal.Add(tax).Sub(discount).Add(shipping))
}
