package core

import "github.com/shopspring/decimal"

var oneHundred = decimal.NewFromInt(100)

// Totals is the derived financial summary of a document. It is recomputed
// from the line items on every read and never persisted, so a stored total
// can never drift from the items it summarizes.
type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Total     decimal.Decimal `json:"total"`
}

// Subtotal sums quantity × unit price over all items.
func Subtotal(items []DocumentItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.TotalPrice())
	}
	return sum
}

// TaxAmount applies a percentage rate to a subtotal.
func TaxAmount(subtotal, rate decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(rate).Div(oneHundred)
}

// ComputeTotals derives subtotal, tax and total for the given items and rate.
func ComputeTotals(items []DocumentItem, taxRate decimal.Decimal) Totals {
	subtotal := Subtotal(items)
	tax := TaxAmount(subtotal, taxRate)
	return Totals{
		Subtotal:  subtotal,
		TaxAmount: tax,
		Total:     subtotal.Add(tax),
	}
}
