package handler

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kmarube/eventquote-api/internal/application/service"
	"github.com/kmarube/eventquote-api/internal/presentation/http/dto/response"
)

// DraftHandler exposes the in-memory draft editor over HTTP
type DraftHandler struct {
	draftService *service.DraftService
}

// NewDraftHandler creates a new draft handler
func NewDraftHandler(draftService *service.DraftService) *DraftHandler {
	return &DraftHandler{draftService: draftService}
}

// OpenDraftRequest optionally names an existing quotation to edit
type OpenDraftRequest struct {
	QuotationID *string `json:"quotation_id"`
}

// FieldUpdateRequest is a single field assignment. Values arrive as
// raw strings; numeric fields are normalized by the editor.
type FieldUpdateRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// Open starts a draft session for a new or existing quotation
func (h *DraftHandler) Open(c *gin.Context) {
	ownerID := GetOwnerID(c)
	if ownerID == nil {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	var req OpenDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	var quotationID *uuid.UUID
	if req.QuotationID != nil {
		id, err := uuid.Parse(*req.QuotationID)
		if err != nil {
			response.BadRequest(c, "Invalid quotation ID")
			return
		}
		quotationID = &id
	}

	view, err := h.draftService.Open(c.Request.Context(), *ownerID, quotationID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Draft opened successfully", view)
}

// Get returns the draft with freshly derived totals
func (h *DraftHandler) Get(c *gin.Context) {
	ownerID, draftID, ok := h.target(c)
	if !ok {
		return
	}

	view, err := h.draftService.Get(ownerID, draftID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Draft retrieved successfully", view)
}

// SetField updates one header-level field
func (h *DraftHandler) SetField(c *gin.Context) {
	ownerID, draftID, ok := h.target(c)
	if !ok {
		return
	}

	var req FieldUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	view, err := h.draftService.SetField(ownerID, draftID, req.Field, req.Value)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Draft updated successfully", view)
}

// AddItem appends a fresh line item
func (h *DraftHandler) AddItem(c *gin.Context) {
	ownerID, draftID, ok := h.target(c)
	if !ok {
		return
	}

	view, err := h.draftService.AddItem(ownerID, draftID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Line item added successfully", view)
}

// EditItem updates one field of one line item
func (h *DraftHandler) EditItem(c *gin.Context) {
	ownerID, draftID, ok := h.target(c)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		response.BadRequest(c, "Invalid item ID")
		return
	}

	var req FieldUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	view, err := h.draftService.EditItem(ownerID, draftID, itemID, req.Field, req.Value)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Line item updated successfully", view)
}

// RemoveItem drops a line item; removing the last one is a no-op
func (h *DraftHandler) RemoveItem(c *gin.Context) {
	ownerID, draftID, ok := h.target(c)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		response.BadRequest(c, "Invalid item ID")
		return
	}

	view, err := h.draftService.RemoveItem(ownerID, draftID, itemID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Line item removed successfully", view)
}

// Save persists the draft to the collection store
func (h *DraftHandler) Save(c *gin.Context) {
	ownerID, draftID, ok := h.target(c)
	if !ok {
		return
	}

	quotation, err := h.draftService.Save(c.Request.Context(), ownerID, draftID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Quotation saved successfully", quotation)
}

// Discard closes the draft session without saving
func (h *DraftHandler) Discard(c *gin.Context) {
	ownerID, draftID, ok := h.target(c)
	if !ok {
		return
	}

	if err := h.draftService.Discard(ownerID, draftID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Draft discarded successfully", nil)
}

func (h *DraftHandler) target(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	ownerID := GetOwnerID(c)
	if ownerID == nil {
		response.Unauthorized(c, "Not authenticated")
		return uuid.Nil, uuid.Nil, false
	}

	draftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid draft ID")
		return uuid.Nil, uuid.Nil, false
	}
	return *ownerID, draftID, true
}
