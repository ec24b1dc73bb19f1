package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmarube/eventquote-api/internal/application/service"
	"github.com/kmarube/eventquote-api/internal/infrastructure/repository"
)

func newTestRouter(t *testing.T, ownerID uuid.UUID) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := repository.NewFileQuotationRepository(filepath.Join(t.TempDir(), "quotations.json"))
	require.NoError(t, err)

	draftService := service.NewDraftService(store, 5*time.Second, nil)
	quotationService := service.NewQuotationService(store, 5*time.Second, nil)

	draftHandler := NewDraftHandler(draftService)
	quotationHandler := NewQuotationHandler(quotationService, draftService, nil)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("owner_id", ownerID)
	})

	router.POST("/drafts", draftHandler.Open)
	router.GET("/drafts/:id", draftHandler.Get)
	router.PATCH("/drafts/:id", draftHandler.SetField)
	router.POST("/drafts/:id/save", draftHandler.Save)
	router.PATCH("/drafts/:id/items/:itemId", draftHandler.EditItem)
	router.GET("/quotations/:id", quotationHandler.Get)
	router.DELETE("/quotations/:id", quotationHandler.Delete)
	return router
}

type draftEnvelope struct {
	Success bool              `json:"success"`
	Data    service.DraftView `json:"data"`
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestDraftHandler_EditAndSaveFlow(t *testing.T) {
	ownerID := uuid.New()
	router := newTestRouter(t, ownerID)

	w := doJSON(t, router, http.MethodPost, "/drafts", gin.H{})
	require.Equal(t, http.StatusCreated, w.Code)

	var opened draftEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &opened))
	require.True(t, opened.Success)
	draftID := opened.Data.Quotation.ID
	require.Len(t, opened.Data.Quotation.Items, 1)
	itemID := opened.Data.Quotation.Items[0].ID

	w = doJSON(t, router, http.MethodPatch, "/drafts/"+draftID.String(),
		gin.H{"field": "client_name", "value": "Amara Events"})
	require.Equal(t, http.StatusOK, w.Code)

	itemPath := fmt.Sprintf("/drafts/%s/items/%s", draftID, itemID)
	w = doJSON(t, router, http.MethodPatch, itemPath, gin.H{"field": "qty", "value": "2"})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, router, http.MethodPatch, itemPath, gin.H{"field": "unit_price", "value": "150"})
	require.Equal(t, http.StatusOK, w.Code)

	var edited draftEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &edited))
	assert.Equal(t, 300.0, edited.Data.Quotation.Items[0].Amount)
	assert.Equal(t, 300.0, edited.Data.Totals.Subtotal)

	w = doJSON(t, router, http.MethodPost, "/drafts/"+draftID.String()+"/save", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// The saved quotation is now readable from the collection.
	w = doJSON(t, router, http.MethodGet, "/quotations/"+draftID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Amara Events")
}

func TestDraftHandler_InvalidNumericValueBecomesZero(t *testing.T) {
	ownerID := uuid.New()
	router := newTestRouter(t, ownerID)

	w := doJSON(t, router, http.MethodPost, "/drafts", gin.H{})
	require.Equal(t, http.StatusCreated, w.Code)
	var opened draftEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &opened))
	draftID := opened.Data.Quotation.ID

	w = doJSON(t, router, http.MethodPatch, "/drafts/"+draftID.String(),
		gin.H{"field": "discount", "value": "abc"})
	require.Equal(t, http.StatusOK, w.Code)

	var patched draftEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &patched))
	assert.Equal(t, 0.0, patched.Data.Quotation.Discount)
}

func TestDraftHandler_UnknownDraftIsNotFound(t *testing.T) {
	router := newTestRouter(t, uuid.New())

	w := doJSON(t, router, http.MethodGet, "/drafts/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQuotationHandler_DeleteDiscardsOpenDraft(t *testing.T) {
	ownerID := uuid.New()
	router := newTestRouter(t, ownerID)

	w := doJSON(t, router, http.MethodPost, "/drafts", gin.H{})
	require.Equal(t, http.StatusCreated, w.Code)
	var opened draftEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &opened))
	draftID := opened.Data.Quotation.ID

	w = doJSON(t, router, http.MethodPost, "/drafts/"+draftID.String()+"/save", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/quotations/"+draftID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Deleting again still succeeds, and the draft session is gone.
	w = doJSON(t, router, http.MethodDelete, "/quotations/"+draftID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, router, http.MethodGet, "/drafts/"+draftID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
