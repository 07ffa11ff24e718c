package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nextserve/booking-core-api/internal/models"
	"github.com/nextserve/booking-core-api/pkg/response"
)

type eligibilityService interface {
	Resolve(ctx context.Context, businessID string) (*models.EligibilityResult, error)
}

// EligibilityHandler exposes the service-eligibility endpoint.
type EligibilityHandler struct {
	service eligibilityService
}

// NewEligibilityHandler constructs the handler.
func NewEligibilityHandler(service eligibilityService) *EligibilityHandler {
	return &EligibilityHandler{service: service}
}

// Resolve returns the eligibility partition for a business, with the source
// path in meta so the UI can warn when data is backup-sourced.
func (h *EligibilityHandler) Resolve(c *gin.Context) {
	businessID := requireParam(c, "id")
	if businessID == "" {
		return
	}

	result, err := h.service.Resolve(c.Request.Context(), businessID)
	if err != nil {
		response.Error(c, err)
		return
	}

	meta := map[string]interface{}{"source": result.Source}
	response.JSON(c, http.StatusOK, result.Set, nil, meta)
}
