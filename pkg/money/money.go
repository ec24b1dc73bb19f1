package money

import (
	"github.com/shopspring/decimal"
)

// Round2 rounds a currency amount to 2 decimal places, half away from zero.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// LineAmount computes the amount of a single line item.
func LineAmount(qty, unitPrice float64) float64 {
	amount := decimal.NewFromFloat(qty).Mul(decimal.NewFromFloat(unitPrice))
	f, _ := amount.Round(2).Float64()
	return f
}

// Totals holds the derived financial fields of a quotation.
type Totals struct {
	Subtotal   float64 `json:"subtotal"`
	TaxAmount  float64 `json:"tax_amount"`
	GrandTotal float64 `json:"grand_total"`
}

// LinePricing is the slice of a line item the totals computation needs.
type LinePricing struct {
	Qty       float64
	UnitPrice float64
}

// ComputeTotals derives subtotal, tax and grand total from line pricing,
// a tax rate in percent and a flat discount amount. The grand total is
// floored at zero; a discount larger than the taxed subtotal never
// produces a negative document.
func ComputeTotals(items []LinePricing, taxRate, discount float64) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		line := decimal.NewFromFloat(it.Qty).Mul(decimal.NewFromFloat(it.UnitPrice)).Round(2)
		subtotal = subtotal.Add(line)
	}
	subtotal = subtotal.Round(2)

	tax := subtotal.Mul(decimal.NewFromFloat(taxRate)).Div(decimal.NewFromInt(100)).Round(2)

	grand := subtotal.Add(tax).Sub(decimal.NewFromFloat(discount)).Round(2)
	if grand.IsNegative() {
		grand = decimal.Zero
	}

	sub, _ := subtotal.Float64()
	tx, _ := tax.Float64()
	gt, _ := grand.Float64()
	return Totals{Subtotal: sub, TaxAmount: tx, GrandTotal: gt}
}
