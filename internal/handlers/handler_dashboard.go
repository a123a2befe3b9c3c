package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/corebank/bancore/internal/core/services"
	"github.com/corebank/bancore/internal/dto"
)

// dashboardHandler serves read-only reporting aggregates.
type dashboardHandler struct {
	reportingService *services.ReportingService
}

func registerDashboardRoutes(rg *gin.RouterGroup, reportingService *services.ReportingService) {
	h := &dashboardHandler{reportingService: reportingService}
	rg.GET("/dashboard/summary", h.summary)
}

func (h *dashboardHandler) summary(c *gin.Context) {
	ownerID := c.Query("owner")
	if ownerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner query parameter is required"})
		return
	}

	summary, err := h.reportingService.OwnerSummary(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOwnerSummaryResponse(summary))
}
