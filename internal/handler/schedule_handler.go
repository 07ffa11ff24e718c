package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nextserve/booking-core-api/internal/models"
	"github.com/nextserve/booking-core-api/internal/service"
	appErrors "github.com/nextserve/booking-core-api/pkg/errors"
	"github.com/nextserve/booking-core-api/pkg/response"
)

type availabilityService interface {
	SetWeeklySchedule(ctx context.Context, providerID string, req service.SetWeeklyScheduleRequest, actor models.Actor) (*models.ProviderSchedule, error)
	BlockInterval(ctx context.Context, providerID string, req service.BlockIntervalRequest, actor models.Actor) (*models.BlockedInterval, error)
}

type scheduleViewService interface {
	GetWindow(ctx context.Context, providerID string, from time.Time) (*models.ScheduleWindow, error)
}

type syncService interface {
	ApplyBusinessHours(ctx context.Context, providerID string, actor models.Actor) (*models.ProviderSchedule, error)
	SyncAllInherited(ctx context.Context, businessID string, actor models.Actor) (*service.SyncResult, error)
}

// ScheduleHandler exposes provider schedule endpoints.
type ScheduleHandler struct {
	availability availabilityService
	view         scheduleViewService
	sync         syncService
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(availability availabilityService, view scheduleViewService, sync syncService) *ScheduleHandler {
	return &ScheduleHandler{availability: availability, view: view, sync: sync}
}

// GetSchedule returns the composed 7-day view for a provider.
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	providerID := requireParam(c, "id")
	if providerID == "" {
		return
	}

	from := time.Now().UTC()
	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from must be YYYY-MM-DD"))
			return
		}
		from = parsed
	}

	window, err := h.view.GetWindow(c.Request.Context(), providerID, from)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, window, nil)
}

// SetWeeklySchedule replaces a provider's weekly schedule.
func (h *ScheduleHandler) SetWeeklySchedule(c *gin.Context) {
	providerID := requireParam(c, "id")
	if providerID == "" {
		return
	}

	var req service.SetWeeklyScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid schedule payload"))
		return
	}

	schedule, err := h.availability.SetWeeklySchedule(c.Request.Context(), providerID, req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// BlockInterval records a blocked date range for a provider.
func (h *ScheduleHandler) BlockInterval(c *gin.Context) {
	providerID := requireParam(c, "id")
	if providerID == "" {
		return
	}

	var req service.BlockIntervalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid block payload"))
		return
	}

	interval, err := h.availability.BlockInterval(c.Request.Context(), providerID, req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, interval)
}

// ApplyBusinessHours replaces a provider's inherited rows from business hours.
func (h *ScheduleHandler) ApplyBusinessHours(c *gin.Context) {
	providerID := requireParam(c, "id")
	if providerID == "" {
		return
	}

	schedule, err := h.sync.ApplyBusinessHours(c.Request.Context(), providerID, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// SyncAllInherited re-syncs every inherited provider of a business.
func (h *ScheduleHandler) SyncAllInherited(c *gin.Context) {
	businessID := requireParam(c, "id")
	if businessID == "" {
		return
	}

	result, err := h.sync.SyncAllInherited(c.Request.Context(), businessID, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

func requireParam(c *gin.Context, name string) string {
	value := strings.TrimSpace(c.Param(name))
	if value == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, name+" is required"))
		return ""
	}
	return value
}
