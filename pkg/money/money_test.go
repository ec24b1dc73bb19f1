package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineAmount_RoundsToTwoDecimals(t *testing.T) {
	assert.Equal(t, 0.0, LineAmount(0, 99.99))
	assert.Equal(t, 299.97, LineAmount(3, 99.99))
	assert.Equal(t, 0.33, LineAmount(3, 0.111))
	assert.Equal(t, 10.05, LineAmount(1.5, 6.70))
}

func TestComputeTotals_Basic(t *testing.T) {
	items := []LinePricing{
		{Qty: 2, UnitPrice: 100},
		{Qty: 1, UnitPrice: 50},
	}

	totals := ComputeTotals(items, 18, 0)
	assert.Equal(t, 250.0, totals.Subtotal)
	assert.Equal(t, 45.0, totals.TaxAmount)
	assert.Equal(t, 295.0, totals.GrandTotal)
}

func TestComputeTotals_DiscountApplied(t *testing.T) {
	items := []LinePricing{{Qty: 1, UnitPrice: 100}}

	totals := ComputeTotals(items, 18, 18)
	assert.Equal(t, 100.0, totals.Subtotal)
	assert.Equal(t, 18.0, totals.TaxAmount)
	assert.Equal(t, 100.0, totals.GrandTotal)
}

func TestComputeTotals_GrandTotalClampsToZero(t *testing.T) {
	items := []LinePricing{{Qty: 1, UnitPrice: 10}}

	totals := ComputeTotals(items, 0, 500)
	assert.Equal(t, 10.0, totals.Subtotal)
	assert.Equal(t, 0.0, totals.TaxAmount)
	assert.Equal(t, 0.0, totals.GrandTotal)
}

func TestComputeTotals_EmptyItems(t *testing.T) {
	totals := ComputeTotals(nil, 18, 0)
	assert.Equal(t, 0.0, totals.Subtotal)
	assert.Equal(t, 0.0, totals.TaxAmount)
	assert.Equal(t, 0.0, totals.GrandTotal)
}

func TestComputeTotals_RoundingOfTax(t *testing.T) {
	items := []LinePricing{{Qty: 3, UnitPrice: 33.33}}

	totals := ComputeTotals(items, 18, 0)
	assert.Equal(t, 99.99, totals.Subtotal)
	assert.Equal(t, 18.0, totals.TaxAmount)
	assert.Equal(t, 117.99, totals.GrandTotal)
}
