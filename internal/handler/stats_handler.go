package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evdash/evdash-backend-go/internal/service"
	"github.com/evdash/evdash-backend-go/pkg/models"
	"github.com/evdash/evdash-backend-go/pkg/response"
)

// StatsHandler handles HTTP requests for aggregate statistics
type StatsHandler struct {
	service *service.StatsService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(service *service.StatsService) *StatsHandler {
	return &StatsHandler{service: service}
}

// GetConsumption handles GET /api/consumption
func (h *StatsHandler) GetConsumption(c *gin.Context) {
	stats, err := h.service.ConsumptionStats()
	if err != nil {
		response.InternalError(c, "Failed to compute statistics", err)
		return
	}
	if stats.ByDistance == nil {
		stats.ByDistance = []models.DistanceBucket{}
	}
	if stats.Monthly == nil {
		stats.Monthly = []models.MonthlyStat{}
	}

	c.JSON(http.StatusOK, stats)
}

// GetMonthly handles GET /api/monthly
func (h *StatsHandler) GetMonthly(c *gin.Context) {
	monthly, err := h.service.Monthly(12)
	if err != nil {
		response.InternalError(c, "Failed to compute monthly statistics", err)
		return
	}
	if monthly == nil {
		monthly = []models.MonthlyStat{}
	}

	c.JSON(http.StatusOK, monthly)
}
