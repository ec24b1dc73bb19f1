package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmarube/eventquote-api/internal/domain/enum"
)

func TestNextQuotationNumber_IncrementsMaxSequence(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	existing := []Quotation{
		{QuotationNumber: "QT-2024-0001"},
		{QuotationNumber: "QT-2024-0007"},
	}

	assert.Equal(t, "QT-2024-0008", NextQuotationNumber(existing, now))
}

func TestNextQuotationNumber_IgnoresUnparseableNumbers(t *testing.T) {
	now := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	existing := []Quotation{
		{QuotationNumber: "DRAFT"},
		{QuotationNumber: ""},
		{QuotationNumber: "QT-2024-0003"},
	}

	assert.Equal(t, "QT-2025-0004", NextQuotationNumber(existing, now))
}

func TestNextQuotationNumber_StartsAtOne(t *testing.T) {
	now := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "QT-2025-0001", NextQuotationNumber(nil, now))
	assert.Equal(t, "QT-2025-0001", NextQuotationNumber([]Quotation{{QuotationNumber: "no-digits"}}, now))
}

func TestNewQuotation_Defaults(t *testing.T) {
	ownerID := uuid.New()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	q := NewQuotation(ownerID, nil, now)

	assert.NotEqual(t, uuid.Nil, q.ID)
	assert.Equal(t, ownerID, q.OwnerID)
	assert.Equal(t, "QT-2025-0001", q.QuotationNumber)
	assert.Equal(t, now.Format(DateIssuedFormat), q.DateIssued)
	assert.Equal(t, now.AddDate(0, 0, 30), q.ValidUntil)
	assert.Equal(t, DefaultTaxRate, q.TaxRate)
	assert.Equal(t, 0.0, q.Discount)
	assert.Equal(t, enum.QuotationStatusDraft, q.Status)
	require.Len(t, q.Items, 1)
	assert.Equal(t, 0.0, q.Items[0].Qty)
	assert.Equal(t, 0.0, q.Items[0].UnitPrice)
	assert.Equal(t, 0.0, q.GrandTotal)
}

func TestRecalculate_OverwritesDerivedFields(t *testing.T) {
	q := &Quotation{
		TaxRate:  18,
		Discount: 10,
		Items: []LineItem{
			{ID: uuid.New(), Qty: 2, UnitPrice: 100, Amount: 999},
			{ID: uuid.New(), Qty: 1, UnitPrice: 50},
		},
		// Stale values that must be replaced.
		Subtotal:   1,
		TaxAmount:  2,
		GrandTotal: 3,
	}

	q.Recalculate()

	assert.Equal(t, 200.0, q.Items[0].Amount)
	assert.Equal(t, 50.0, q.Items[1].Amount)
	assert.Equal(t, 250.0, q.Subtotal)
	assert.Equal(t, 45.0, q.TaxAmount)
	assert.Equal(t, 285.0, q.GrandTotal)
}

func TestRecalculate_ClampsNegativeGrandTotal(t *testing.T) {
	q := &Quotation{
		Discount: 1000,
		Items:    []LineItem{{ID: uuid.New(), Qty: 1, UnitPrice: 10}},
	}

	q.Recalculate()

	assert.Equal(t, 10.0, q.Subtotal)
	assert.Equal(t, 0.0, q.GrandTotal)
}
