package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/evdash/evdash-backend-go/internal/service"
	"github.com/evdash/evdash-backend-go/pkg/models"
	"github.com/evdash/evdash-backend-go/pkg/response"
)

// Listing sizes at or above this are treated as "everything".
const unlimitedThreshold = 10000

// TripHandler handles HTTP requests for trips
type TripHandler struct {
	service *service.TripService
}

// NewTripHandler creates a new trip handler
func NewTripHandler(service *service.TripService) *TripHandler {
	return &TripHandler{service: service}
}

// GetTrips handles GET /api/trips
func (h *TripHandler) GetTrips(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "100")
	order := c.DefaultQuery("order", "DESC")

	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		response.BadRequest(c, "limit must be an integer")
		return
	}
	if limit >= unlimitedThreshold {
		limit = 0
	}

	trips, err := h.service.ListTrips(limit, order)
	if err != nil {
		response.InternalError(c, "Failed to get trips", err)
		return
	}
	if trips == nil {
		trips = []models.Trip{}
	}

	c.JSON(http.StatusOK, trips)
}
