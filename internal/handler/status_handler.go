package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/evdash/evdash-backend-go/internal/service"
	"github.com/evdash/evdash-backend-go/pkg/response"
)

// StatusHandler handles health and status endpoints
type StatusHandler struct {
	service  *service.StatusService
	timezone string
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(service *service.StatusService, timezone string) *StatusHandler {
	return &StatusHandler{service: service, timezone: timezone}
}

// Health handles GET /api/health
func (h *StatusHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "EV Trip Dashboard",
		"version":   service.AppVersion,
		"timestamp": time.Now().Format(time.RFC3339),
		"timezone":  h.timezone,
	})
}

// DBStatus handles GET /api/db_status
func (h *StatusHandler) DBStatus(c *gin.Context) {
	status, err := h.service.DBStatus()
	if err != nil {
		response.InternalError(c, "Failed to read database status", err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// SystemStatus handles GET /api/system/status
func (h *StatusHandler) SystemStatus(c *gin.Context) {
	status, err := h.service.SystemStatus()
	if err != nil {
		response.InternalError(c, "Failed to read system status", err)
		return
	}

	c.JSON(http.StatusOK, status)
}
