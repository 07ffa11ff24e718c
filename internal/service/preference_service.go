package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nextserve/booking-core-api/internal/models"
	appErrors "github.com/nextserve/booking-core-api/pkg/errors"
)

type preferenceRepo interface {
	GetByProvider(ctx context.Context, providerID string) (*models.BookingPreferences, error)
	Upsert(ctx context.Context, prefs *models.BookingPreferences) error
}

// UpsertPreferencesRequest captures the slot parameters a provider may tune.
type UpsertPreferencesRequest struct {
	MaxBookingsPerDay       int  `json:"max_bookings_per_day" validate:"min=1"`
	SlotDurationMinutes     int  `json:"slot_duration_minutes" validate:"gt=0"`
	BufferMinutes           int  `json:"buffer_minutes" validate:"min=0"`
	MinAdvanceHours         int  `json:"min_advance_hours" validate:"min=0"`
	AutoAccept              bool `json:"auto_accept"`
	AllowCancellation       bool `json:"allow_cancellation"`
	CancellationWindowHours int  `json:"cancellation_window_hours" validate:"min=0"`
}

// PreferenceService handles per-provider slot parameters.
type PreferenceService struct {
	providers providerReader
	repo      preferenceRepo
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPreferenceService builds the service.
func NewPreferenceService(providers providerReader, repo preferenceRepo, validate *validator.Validate, logger *zap.Logger) *PreferenceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreferenceService{
		providers: providers,
		repo:      repo,
		validator: validate,
		logger:    logger,
	}
}

// Get returns stored preferences, or the documented defaults when the
// provider never saved any.
func (s *PreferenceService) Get(ctx context.Context, providerID string) (*models.BookingPreferences, error) {
	if _, err := s.requireProvider(ctx, providerID); err != nil {
		return nil, err
	}

	prefs, err := s.repo.GetByProvider(ctx, providerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.DefaultBookingPreferences(providerID), nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load preferences")
	}
	return prefs, nil
}

// Upsert stores preferences for a provider. Owners and dispatchers may edit
// any provider of their business; providers only their own.
func (s *PreferenceService) Upsert(ctx context.Context, providerID string, req UpsertPreferencesRequest, actor models.Actor) (*models.BookingPreferences, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid preferences payload")
	}

	provider, err := s.requireProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if actor.BusinessID != provider.BusinessID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "provider not found")
	}
	if !actor.CanManageSchedules() && actor.ProviderID != provider.ID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed to edit this provider's preferences")
	}

	payload := &models.BookingPreferences{
		ProviderID:              providerID,
		MaxBookingsPerDay:       req.MaxBookingsPerDay,
		SlotDurationMinutes:     req.SlotDurationMinutes,
		BufferMinutes:           req.BufferMinutes,
		MinAdvanceHours:         req.MinAdvanceHours,
		AutoAccept:              req.AutoAccept,
		AllowCancellation:       req.AllowCancellation,
		CancellationWindowHours: req.CancellationWindowHours,
	}

	existing, err := s.repo.GetByProvider(ctx, providerID)
	if err != nil && err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load preferences")
	}
	if existing != nil {
		payload.ID = existing.ID
		payload.CreatedAt = existing.CreatedAt
	}

	if err := s.repo.Upsert(ctx, payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upsert preferences")
	}
	return payload, nil
}

func (s *PreferenceService) requireProvider(ctx context.Context, providerID string) (*models.Provider, error) {
	provider, err := s.providers.FindByID(ctx, providerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "provider not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load provider")
	}
	return provider, nil
}
