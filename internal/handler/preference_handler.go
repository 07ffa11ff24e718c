package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nextserve/booking-core-api/internal/models"
	"github.com/nextserve/booking-core-api/internal/service"
	appErrors "github.com/nextserve/booking-core-api/pkg/errors"
	"github.com/nextserve/booking-core-api/pkg/response"
)

type preferenceService interface {
	Get(ctx context.Context, providerID string) (*models.BookingPreferences, error)
	Upsert(ctx context.Context, providerID string, req service.UpsertPreferencesRequest, actor models.Actor) (*models.BookingPreferences, error)
}

// PreferenceHandler exposes per-provider slot parameter endpoints.
type PreferenceHandler struct {
	service preferenceService
}

// NewPreferenceHandler constructs the handler.
func NewPreferenceHandler(service preferenceService) *PreferenceHandler {
	return &PreferenceHandler{service: service}
}

// Get returns stored preferences or the defaults.
func (h *PreferenceHandler) Get(c *gin.Context) {
	providerID := requireParam(c, "id")
	if providerID == "" {
		return
	}

	prefs, err := h.service.Get(c.Request.Context(), providerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, prefs, nil)
}

// Upsert stores preferences for a provider.
func (h *PreferenceHandler) Upsert(c *gin.Context) {
	providerID := requireParam(c, "id")
	if providerID == "" {
		return
	}

	var req service.UpsertPreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid preferences payload"))
		return
	}

	prefs, err := h.service.Upsert(c.Request.Context(), providerID, req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, prefs, nil)
}
