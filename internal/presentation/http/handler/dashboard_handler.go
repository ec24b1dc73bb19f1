package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kmarube/eventquote-api/internal/application/service"
	"github.com/kmarube/eventquote-api/internal/presentation/http/dto/response"
)

// DashboardHandler handles dashboard HTTP requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetSummary returns the filtered collection and its statistics
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	ownerID := GetOwnerID(c)
	if ownerID == nil {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	summary, err := h.dashboardService.GetSummary(c.Request.Context(), *ownerID, c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Dashboard summary retrieved successfully", summary)
}
