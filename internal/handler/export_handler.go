package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/evdash/evdash-backend-go/internal/export"
	"github.com/evdash/evdash-backend-go/internal/service"
	"github.com/evdash/evdash-backend-go/pkg/response"
)

// ExportHandler renders downloadable trip reports
type ExportHandler struct {
	trips *service.TripService
	stats *service.StatsService
}

// NewExportHandler creates a new export handler
func NewExportHandler(trips *service.TripService, stats *service.StatsService) *ExportHandler {
	return &ExportHandler{trips: trips, stats: stats}
}

// ExportTrips handles GET /api/trips/export?format=xlsx|pdf
func (h *ExportHandler) ExportTrips(c *gin.Context) {
	format := c.DefaultQuery("format", "xlsx")
	if format != "xlsx" && format != "pdf" {
		response.BadRequest(c, "format must be xlsx or pdf")
		return
	}

	trips, err := h.trips.ListTrips(0, "DESC")
	if err != nil {
		response.InternalError(c, "Failed to load trips", err)
		return
	}
	stats, err := h.stats.ConsumptionStats()
	if err != nil {
		response.InternalError(c, "Failed to load statistics", err)
		return
	}

	stamp := time.Now().Format("20060102_150405")

	switch format {
	case "xlsx":
		data, err := export.BuildTripsXLSX(trips, stats.General)
		if err != nil {
			response.InternalError(c, "Failed to build report", err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="trips_%s.xlsx"`, stamp))
		c.Data(200, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	case "pdf":
		data, err := export.BuildSummaryPDF(trips, stats.General)
		if err != nil {
			response.InternalError(c, "Failed to build report", err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="trips_%s.pdf"`, stamp))
		c.Data(200, "application/pdf", data)
	}
}
