package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainRepo "github.com/kmarube/eventquote-api/internal/domain/repository"
	"github.com/kmarube/eventquote-api/internal/infrastructure/repository"
	"github.com/kmarube/eventquote-api/pkg/apperror"
)

func newTestStore(t *testing.T) domainRepo.QuotationRepository {
	t.Helper()
	repo, err := repository.NewFileQuotationRepository(filepath.Join(t.TempDir(), "quotations.json"))
	require.NoError(t, err)
	return repo
}

func newTestDraftService(t *testing.T) *DraftService {
	t.Helper()
	return NewDraftService(newTestStore(t), 5*time.Second, nil)
}

func TestDraftService_OpenNewQuotation(t *testing.T) {
	svc := newTestDraftService(t)
	ownerID := uuid.New()

	view, err := svc.Open(context.Background(), ownerID, nil)
	require.NoError(t, err)

	assert.Equal(t, ownerID, view.Quotation.OwnerID)
	assert.Regexp(t, `^QT-\d{4}-0001$`, view.Quotation.QuotationNumber)
	require.Len(t, view.Quotation.Items, 1)
	assert.Equal(t, 0.0, view.Totals.GrandTotal)
}

func TestDraftService_EditItemRecomputesAmount(t *testing.T) {
	svc := newTestDraftService(t)
	ownerID := uuid.New()
	ctx := context.Background()

	view, err := svc.Open(ctx, ownerID, nil)
	require.NoError(t, err)
	draftID := view.Quotation.ID
	itemID := view.Quotation.Items[0].ID

	_, err = svc.EditItem(ownerID, draftID, itemID, "qty", "3")
	require.NoError(t, err)
	view, err = svc.EditItem(ownerID, draftID, itemID, "unit_price", "99.99")
	require.NoError(t, err)

	assert.Equal(t, 299.97, view.Quotation.Items[0].Amount)
	assert.Equal(t, 299.97, view.Totals.Subtotal)
}

func TestDraftService_InvalidNumericInputCoercesToZero(t *testing.T) {
	svc := newTestDraftService(t)
	ownerID := uuid.New()

	view, err := svc.Open(context.Background(), ownerID, nil)
	require.NoError(t, err)
	draftID := view.Quotation.ID
	itemID := view.Quotation.Items[0].ID

	_, err = svc.EditItem(ownerID, draftID, itemID, "qty", "not-a-number")
	require.NoError(t, err)
	view, err = svc.EditItem(ownerID, draftID, itemID, "unit_price", "-5")
	require.NoError(t, err)

	assert.Equal(t, 0.0, view.Quotation.Items[0].Qty)
	assert.Equal(t, 0.0, view.Quotation.Items[0].UnitPrice)
	assert.Equal(t, 0.0, view.Quotation.Items[0].Amount)

	view, err = svc.SetField(ownerID, draftID, "discount", "garbage")
	require.NoError(t, err)
	assert.Equal(t, 0.0, view.Quotation.Discount)
}

func TestDraftService_NonFiniteNumericInputCoercesToZero(t *testing.T) {
	svc := newTestDraftService(t)
	ownerID := uuid.New()

	view, err := svc.Open(context.Background(), ownerID, nil)
	require.NoError(t, err)
	draftID := view.Quotation.ID
	itemID := view.Quotation.Items[0].ID

	// ParseFloat accepts these without error; the editor must still
	// coerce them to zero instead of letting them reach the totals.
	for _, value := range []string{"NaN", "Inf", "+Inf", "-Inf"} {
		view, err = svc.EditItem(ownerID, draftID, itemID, "qty", value)
		require.NoError(t, err, value)
		assert.Equal(t, 0.0, view.Quotation.Items[0].Qty, value)
		assert.Equal(t, 0.0, view.Quotation.Items[0].Amount, value)

		view, err = svc.SetField(ownerID, draftID, "tax_rate", value)
		require.NoError(t, err, value)
		assert.Equal(t, 0.0, view.Quotation.TaxRate, value)
		assert.Equal(t, 0.0, view.Totals.GrandTotal, value)
	}
}

func TestDraftService_EditUnknownItemIsNoOp(t *testing.T) {
	svc := newTestDraftService(t)
	ownerID := uuid.New()

	view, err := svc.Open(context.Background(), ownerID, nil)
	require.NoError(t, err)
	draftID := view.Quotation.ID

	after, err := svc.EditItem(ownerID, draftID, uuid.New(), "qty", "7")
	require.NoError(t, err)
	assert.Equal(t, view.Quotation.Items, after.Quotation.Items)
}

func TestDraftService_RemoveLastItemIsNoOp(t *testing.T) {
	svc := newTestDraftService(t)
	ownerID := uuid.New()

	view, err := svc.Open(context.Background(), ownerID, nil)
	require.NoError(t, err)
	draftID := view.Quotation.ID
	itemID := view.Quotation.Items[0].ID

	view, err = svc.RemoveItem(ownerID, draftID, itemID)
	require.NoError(t, err)
	assert.Len(t, view.Quotation.Items, 1)
}

func TestDraftService_RemoveItemKeepsRemainder(t *testing.T) {
	svc := newTestDraftService(t)
	ownerID := uuid.New()

	view, err := svc.Open(context.Background(), ownerID, nil)
	require.NoError(t, err)
	draftID := view.Quotation.ID
	firstID := view.Quotation.Items[0].ID

	view, err = svc.AddItem(ownerID, draftID)
	require.NoError(t, err)
	require.Len(t, view.Quotation.Items, 2)

	view, err = svc.RemoveItem(ownerID, draftID, firstID)
	require.NoError(t, err)
	require.Len(t, view.Quotation.Items, 1)
	assert.NotEqual(t, firstID, view.Quotation.Items[0].ID)
}

func TestDraftService_SetFieldUpdatesHeader(t *testing.T) {
	svc := newTestDraftService(t)
	ownerID := uuid.New()

	view, err := svc.Open(context.Background(), ownerID, nil)
	require.NoError(t, err)
	draftID := view.Quotation.ID

	_, err = svc.SetField(ownerID, draftID, "client_name", "Amara Events")
	require.NoError(t, err)
	_, err = svc.SetField(ownerID, draftID, "status", "Pending")
	require.NoError(t, err)
	view, err = svc.SetField(ownerID, draftID, "tax_rate", "16")
	require.NoError(t, err)

	assert.Equal(t, "Amara Events", view.Quotation.ClientName)
	assert.Equal(t, "Pending", view.Quotation.Status.String())
	assert.Equal(t, 16.0, view.Quotation.TaxRate)
}

func TestDraftService_SaveMaterializesFreshTotals(t *testing.T) {
	store := newTestStore(t)
	svc := NewDraftService(store, 5*time.Second, nil)
	ownerID := uuid.New()
	ctx := context.Background()

	view, err := svc.Open(ctx, ownerID, nil)
	require.NoError(t, err)
	draftID := view.Quotation.ID
	itemID := view.Quotation.Items[0].ID

	_, err = svc.EditItem(ownerID, draftID, itemID, "qty", "2")
	require.NoError(t, err)
	_, err = svc.EditItem(ownerID, draftID, itemID, "unit_price", "100")
	require.NoError(t, err)
	_, err = svc.SetField(ownerID, draftID, "discount", "36")
	require.NoError(t, err)

	saved, err := svc.Save(ctx, ownerID, draftID)
	require.NoError(t, err)

	stored, err := store.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)

	// Persisted totals match a fresh recomputation from the items.
	totals := stored.Totals()
	assert.Equal(t, totals.Subtotal, stored.Subtotal)
	assert.Equal(t, totals.TaxAmount, stored.TaxAmount)
	assert.Equal(t, totals.GrandTotal, stored.GrandTotal)
	assert.Equal(t, 200.0, stored.Subtotal)
	assert.Equal(t, 36.0, stored.TaxAmount)
	assert.Equal(t, 200.0, stored.GrandTotal)
}

func TestDraftService_OpenExistingQuotation(t *testing.T) {
	store := newTestStore(t)
	svc := NewDraftService(store, 5*time.Second, nil)
	ownerID := uuid.New()
	ctx := context.Background()

	view, err := svc.Open(ctx, ownerID, nil)
	require.NoError(t, err)
	saved, err := svc.Save(ctx, ownerID, view.Quotation.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Discard(ownerID, saved.ID))

	reopened, err := svc.Open(ctx, ownerID, &saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, reopened.Quotation.ID)
	assert.Equal(t, saved.QuotationNumber, reopened.Quotation.QuotationNumber)
}

func TestDraftService_OpenMissingQuotationIsNotFound(t *testing.T) {
	svc := newTestDraftService(t)
	missing := uuid.New()

	_, err := svc.Open(context.Background(), uuid.New(), &missing)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDraftService_OpenOtherOwnersQuotationIsNotFound(t *testing.T) {
	store := newTestStore(t)
	svc := NewDraftService(store, 5*time.Second, nil)
	ownerID := uuid.New()
	ctx := context.Background()

	view, err := svc.Open(ctx, ownerID, nil)
	require.NoError(t, err)
	saved, err := svc.Save(ctx, ownerID, view.Quotation.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Discard(ownerID, saved.ID))

	_, err = svc.Open(ctx, uuid.New(), &saved.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDraftService_DiscardClosesSession(t *testing.T) {
	svc := newTestDraftService(t)
	ownerID := uuid.New()

	view, err := svc.Open(context.Background(), ownerID, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Discard(ownerID, view.Quotation.ID))

	_, err = svc.Get(ownerID, view.Quotation.ID)
	assert.True(t, apperror.IsNotFound(err))
}
