package handler

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kmarube/eventquote-api/internal/application/service"
	"github.com/kmarube/eventquote-api/internal/domain/entity"
	"github.com/kmarube/eventquote-api/internal/domain/enum"
	"github.com/kmarube/eventquote-api/internal/presentation/http/dto/response"
	"github.com/kmarube/eventquote-api/pkg/pagination"
	"github.com/kmarube/eventquote-api/pkg/pdf"
)

// QuotationHandler handles quotation-related HTTP requests
type QuotationHandler struct {
	quotationService *service.QuotationService
	draftService     *service.DraftService
	pdfGenerator     *pdf.Generator
}

// NewQuotationHandler creates a new quotation handler
func NewQuotationHandler(quotationService *service.QuotationService, draftService *service.DraftService, pdfGenerator *pdf.Generator) *QuotationHandler {
	return &QuotationHandler{
		quotationService: quotationService,
		draftService:     draftService,
		pdfGenerator:     pdfGenerator,
	}
}

// List handles listing quotations with pagination and filtering
func (h *QuotationHandler) List(c *gin.Context) {
	ownerID := GetOwnerID(c)
	if ownerID == nil {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	page := 1
	perPage := 15
	if p := c.Query("page"); p != "" {
		if parsed, err := parsePositiveInt(p); err == nil {
			page = parsed
		}
	}
	if pp := c.Query("per_page"); pp != "" {
		if parsed, err := parsePositiveInt(pp); err == nil {
			perPage = parsed
		}
	}

	var status *enum.QuotationStatus
	if s := c.Query("status"); s != "" {
		st := enum.ParseQuotationStatus(s)
		status = &st
	}

	result, err := h.quotationService.ListQuotations(c.Request.Context(), &service.ListQuotationsInput{
		OwnerID: *ownerID,
		Pagination: &pagination.PaginationParams{
			Page:    page,
			PerPage: perPage,
		},
		Search: c.Query("search"),
		Status: status,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Quotations retrieved successfully", result)
}

// Get handles getting a single quotation
func (h *QuotationHandler) Get(c *gin.Context) {
	ownerID := GetOwnerID(c)
	if ownerID == nil {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid quotation ID")
		return
	}

	quotation, err := h.quotationService.GetQuotation(c.Request.Context(), *ownerID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quotation retrieved successfully", quotation)
}

// Create handles creating a quotation. Omitted fields take the
// document defaults; the quotation number is always generated.
func (h *QuotationHandler) Create(c *gin.Context) {
	ownerID := GetOwnerID(c)
	if ownerID == nil {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	var patch service.QuotationPatch
	if err := c.ShouldBindJSON(&patch); err != nil && err != io.EOF {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	quotation, err := h.quotationService.CreateQuotation(c.Request.Context(), *ownerID, &patch)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Quotation created successfully", quotation)
}

// Update handles merging a partial quotation into the stored record
func (h *QuotationHandler) Update(c *gin.Context) {
	ownerID := GetOwnerID(c)
	if ownerID == nil {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid quotation ID")
		return
	}

	var patch service.QuotationPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	quotation, err := h.quotationService.UpdateQuotation(c.Request.Context(), *ownerID, id, &patch)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quotation updated successfully", quotation)
}

// Delete handles permanent removal of a quotation. Any open draft for
// it is discarded as well.
func (h *QuotationHandler) Delete(c *gin.Context) {
	ownerID := GetOwnerID(c)
	if ownerID == nil {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid quotation ID")
		return
	}

	if err := h.quotationService.DeleteQuotation(c.Request.Context(), *ownerID, id); err != nil {
		response.Error(c, err)
		return
	}
	h.draftService.DiscardFor(id)

	response.OK(c, "Quotation deleted successfully", nil)
}

// PDF renders the quotation as a printable document
func (h *QuotationHandler) PDF(c *gin.Context) {
	ownerID := GetOwnerID(c)
	if ownerID == nil {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid quotation ID")
		return
	}

	quotation, err := h.quotationService.GetQuotation(c.Request.Context(), *ownerID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	data, err := h.pdfGenerator.Generate(quotation)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+quotation.QuotationNumber+`.pdf"`)
	c.Data(200, "application/pdf", data)
}

// Watch streams full-collection snapshots over SSE. Each event
// replaces the previous collection state entirely.
func (h *QuotationHandler) Watch(c *gin.Context) {
	ownerID := GetOwnerID(c)
	if ownerID == nil {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	sub, err := h.quotationService.WatchQuotations(c.Request.Context(), *ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer sub.Cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case snapshot, ok := <-sub.C:
			if !ok {
				return false
			}
			if snapshot == nil {
				snapshot = []entity.Quotation{}
			}
			c.SSEvent("quotations", snapshot)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
