package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nextserve/booking-core-api/internal/models"
	appErrors "github.com/nextserve/booking-core-api/pkg/errors"
	"github.com/nextserve/booking-core-api/pkg/response"
)

type bookingService interface {
	Transition(ctx context.Context, bookingID, target string, actor models.Actor, reason *string) (*models.Booking, error)
	AssignProvider(ctx context.Context, bookingID string, providerID *string, actor models.Actor) (*models.Booking, []string, error)
	ListBookings(ctx context.Context, businessID string, filter models.BookingFilter, actor models.Actor) ([]models.Booking, *models.Pagination, error)
}

// TransitionRequest moves a booking to a new status.
type TransitionRequest struct {
	Status string  `json:"status" binding:"required"`
	Reason *string `json:"reason,omitempty"`
}

// AssignRequest assigns a provider; a null provider_id unassigns.
type AssignRequest struct {
	ProviderID *string `json:"provider_id"`
}

// BookingHandler exposes booking lifecycle endpoints.
type BookingHandler struct {
	service bookingService
}

// NewBookingHandler constructs the handler.
func NewBookingHandler(service bookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// Transition applies one status transition.
func (h *BookingHandler) Transition(c *gin.Context) {
	bookingID := requireParam(c, "id")
	if bookingID == "" {
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid transition payload"))
		return
	}

	booking, err := h.service.Transition(c.Request.Context(), bookingID, req.Status, actorFromContext(c), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, booking, nil)
}

// Assign (re)assigns or unassigns the booking's provider. Feasibility
// concerns come back as warnings in the response meta, never as a rejection.
func (h *BookingHandler) Assign(c *gin.Context) {
	bookingID := requireParam(c, "id")
	if bookingID == "" {
		return
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	booking, warnings, err := h.service.AssignProvider(c.Request.Context(), bookingID, req.ProviderID, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	var meta map[string]interface{}
	if len(warnings) > 0 {
		meta = map[string]interface{}{"warnings": warnings}
	}
	response.JSON(c, http.StatusOK, booking, nil, meta)
}

// List returns a business's bookings with optional filters.
func (h *BookingHandler) List(c *gin.Context) {
	businessID := requireParam(c, "id")
	if businessID == "" {
		return
	}

	filter, err := parseBookingFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	bookings, pagination, err := h.service.ListBookings(c.Request.Context(), businessID, filter, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bookings, pagination)
}

func parseBookingFilter(c *gin.Context) (models.BookingFilter, error) {
	var filter models.BookingFilter

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, err := models.ParseBookingStatus(raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
		filter.Status = &status
	}
	if raw := strings.TrimSpace(c.Query("provider_id")); raw != "" {
		filter.ProviderID = &raw
	}
	if raw := strings.TrimSpace(c.Query("date_from")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "date_from must be YYYY-MM-DD")
		}
		filter.DateFrom = &parsed
	}
	if raw := strings.TrimSpace(c.Query("date_to")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "date_to must be YYYY-MM-DD")
		}
		filter.DateTo = &parsed
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	return filter, nil
}
