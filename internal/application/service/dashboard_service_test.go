package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmarube/eventquote-api/internal/domain/entity"
	"github.com/kmarube/eventquote-api/internal/domain/enum"
)

func TestAggregate_Statistics(t *testing.T) {
	quotations := []entity.Quotation{
		{Status: enum.QuotationStatusDraft, GrandTotal: 400},
		{Status: enum.QuotationStatusPending, GrandTotal: 75},
		{Status: enum.QuotationStatusAccepted, GrandTotal: 100},
		{Status: enum.QuotationStatusAccepted, GrandTotal: 50},
	}

	summary := Aggregate(quotations, "")

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 1, summary.Pending)
	assert.Equal(t, 2, summary.Accepted)
	assert.Equal(t, 150.0, summary.Revenue)
}

func TestAggregate_RevenueCountsAcceptedOnly(t *testing.T) {
	quotations := []entity.Quotation{
		{Status: enum.QuotationStatusDraft, GrandTotal: 1000},
		{Status: enum.QuotationStatusPending, GrandTotal: 1000},
	}

	summary := Aggregate(quotations, "")
	assert.Equal(t, 0.0, summary.Revenue)
}

func TestAggregate_SearchIsCaseInsensitive(t *testing.T) {
	quotations := []entity.Quotation{
		{ClientName: "Amara Events", QuotationNumber: "QT-2025-0001"},
		{ClientName: "Beta Corp", QuotationNumber: "QT-2025-0002"},
		{ClientName: "Other", QuotationNumber: "qt-2025-0003"},
	}

	byClient := Aggregate(quotations, "AMARA")
	require.Equal(t, 1, byClient.Total)
	assert.Equal(t, "Amara Events", byClient.Quotations[0].ClientName)

	byNumber := Aggregate(quotations, "0003")
	require.Equal(t, 1, byNumber.Total)
	assert.Equal(t, "Other", byNumber.Quotations[0].ClientName)
}

func TestAggregate_NoMatchesYieldsEmptyResult(t *testing.T) {
	quotations := []entity.Quotation{
		{ClientName: "Amara Events", Status: enum.QuotationStatusAccepted, GrandTotal: 100},
	}

	summary := Aggregate(quotations, "zzz")

	assert.Equal(t, 0, summary.Total)
	assert.Equal(t, 0.0, summary.Revenue)
	assert.Empty(t, summary.Quotations)
}

func TestAggregate_SortsNewestFirst(t *testing.T) {
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	quotations := []entity.Quotation{
		{ClientName: "old", CreatedAt: old},
		{ClientName: "missing-timestamp"},
		{ClientName: "recent", CreatedAt: recent},
	}

	summary := Aggregate(quotations, "")

	require.Len(t, summary.Quotations, 3)
	assert.Equal(t, "recent", summary.Quotations[0].ClientName)
	assert.Equal(t, "old", summary.Quotations[1].ClientName)
	// A zero CreatedAt sorts as oldest.
	assert.Equal(t, "missing-timestamp", summary.Quotations[2].ClientName)
}
