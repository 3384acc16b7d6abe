package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evdash/evdash-backend-go/internal/service"
	"github.com/evdash/evdash-backend-go/pkg/models"
	"github.com/evdash/evdash-backend-go/pkg/response"
)

// EnergyHandler handles the cost/emissions comparison endpoints
type EnergyHandler struct {
	service *service.EnergyService
}

// NewEnergyHandler creates a new energy handler
func NewEnergyHandler(service *service.EnergyService) *EnergyHandler {
	return &EnergyHandler{service: service}
}

// GetEnergyCosts handles GET /api/energy_costs
func (h *EnergyHandler) GetEnergyCosts(c *gin.Context) {
	result, err := h.service.DefaultComparison()
	if err != nil {
		response.InternalError(c, "Failed to compute energy costs", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// PostEnergyCosts handles POST /api/energy_costs
func (h *EnergyHandler) PostEnergyCosts(c *gin.Context) {
	var req models.EnergyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	result, err := h.service.CustomComparison(req)
	if err != nil {
		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			response.BadRequest(c, vErr.Msg)
			return
		}
		response.InternalError(c, "Failed to compute energy costs", err)
		return
	}

	c.JSON(http.StatusOK, result)
}
