package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nextserve/booking-core-api/internal/models"
	appErrors "github.com/nextserve/booking-core-api/pkg/errors"
)

type providerReader interface {
	FindByID(ctx context.Context, id string) (*models.Provider, error)
	ListByBusiness(ctx context.Context, businessID string) ([]models.Provider, error)
}

type availabilityRepo interface {
	ListActiveWeekly(ctx context.Context, providerID string) ([]models.WeeklyAvailability, error)
	ListActiveBlocked(ctx context.Context, providerID string) ([]models.BlockedInterval, error)
	ReplaceWeekly(ctx context.Context, providerID string, entries []models.WeeklyAvailability) error
	ReplaceInherited(ctx context.Context, providerID string, entries []models.WeeklyAvailability) error
	InsertBlocked(ctx context.Context, interval *models.BlockedInterval) error
	ListInheritedProviderIDs(ctx context.Context, businessID string) ([]string, error)
}

var dayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// WeeklyEntryRequest is one day window in a schedule replacement payload.
type WeeklyEntryRequest struct {
	DayOfWeek    int    `json:"day_of_week" validate:"min=0,max=6"`
	StartTime    string `json:"start_time" validate:"required"`
	EndTime      string `json:"end_time" validate:"required"`
	LocationMode string `json:"location_mode" validate:"omitempty,oneof=business mobile both"`
}

// SetWeeklyScheduleRequest replaces a provider's whole weekly schedule.
type SetWeeklyScheduleRequest struct {
	Origin  string               `json:"origin" validate:"required,oneof=manual inherited"`
	Entries []WeeklyEntryRequest `json:"entries" validate:"dive"`
}

// BlockIntervalRequest marks a provider unavailable for a date range.
type BlockIntervalRequest struct {
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
	Reason    string `json:"reason" validate:"required"`
}

// AvailabilityService owns weekly recurring availability and blocked dates.
type AvailabilityService struct {
	providers providerReader
	repo      availabilityRepo
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAvailabilityService builds the service.
func NewAvailabilityService(providers providerReader, repo availabilityRepo, validate *validator.Validate, logger *zap.Logger) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{
		providers: providers,
		repo:      repo,
		validator: validate,
		logger:    logger,
	}
}

// SetWeeklySchedule replaces all active weekly rows for a provider with the
// given batch, tagging each row with the requested origin. The batch is
// all-or-nothing: one invalid entry rejects the whole write.
func (s *AvailabilityService) SetWeeklySchedule(ctx context.Context, providerID string, req SetWeeklyScheduleRequest, actor models.Actor) (*models.ProviderSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}

	provider, err := s.requireProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeScheduleEdit(provider, actor); err != nil {
		return nil, err
	}

	entries, err := buildWeeklyEntries(providerID, req.Entries, models.ScheduleOrigin(req.Origin))
	if err != nil {
		return nil, err
	}

	if err := s.repo.ReplaceWeekly(ctx, providerID, entries); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace weekly schedule")
	}

	s.logger.Info("schedule.replaced",
		zap.String("provider_id", providerID),
		zap.String("origin", req.Origin),
		zap.Int("entries", len(entries)))

	return s.GetSchedule(ctx, providerID)
}

// GetSchedule returns the active weekly rows ordered by day of week plus the
// active blocked intervals. Read-only.
func (s *AvailabilityService) GetSchedule(ctx context.Context, providerID string) (*models.ProviderSchedule, error) {
	if _, err := s.requireProvider(ctx, providerID); err != nil {
		return nil, err
	}

	weekly, err := s.repo.ListActiveWeekly(ctx, providerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weekly schedule")
	}
	blocked, err := s.repo.ListActiveBlocked(ctx, providerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load blocked intervals")
	}

	return &models.ProviderSchedule{ProviderID: providerID, Weekly: weekly, Blocked: blocked}, nil
}

// BlockInterval records an explicit unavailability override. It does not touch
// weekly rows; the read model gives it precedence instead.
func (s *AvailabilityService) BlockInterval(ctx context.Context, providerID string, req BlockIntervalRequest, actor models.Actor) (*models.BlockedInterval, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid block payload")
	}

	provider, err := s.requireProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeScheduleEdit(provider, actor); err != nil {
		return nil, err
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_date must be YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must not precede start_date")
	}

	interval := &models.BlockedInterval{
		ProviderID: providerID,
		StartDate:  start,
		EndDate:    end,
		Reason:     req.Reason,
	}
	if err := s.repo.InsertBlocked(ctx, interval); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to insert blocked interval")
	}
	return interval, nil
}

func (s *AvailabilityService) requireProvider(ctx context.Context, providerID string) (*models.Provider, error) {
	provider, err := s.providers.FindByID(ctx, providerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "provider not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load provider")
	}
	return provider, nil
}

// authorizeScheduleEdit lets owners and dispatchers edit any schedule in their
// business; a provider may only edit their own.
func (s *AvailabilityService) authorizeScheduleEdit(provider *models.Provider, actor models.Actor) error {
	if actor.BusinessID != provider.BusinessID {
		return appErrors.Clone(appErrors.ErrNotFound, "provider not found")
	}
	if actor.CanManageSchedules() {
		return nil
	}
	if actor.Role == models.RoleProvider && actor.ProviderID == provider.ID {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, "not allowed to edit this provider's schedule")
}

// buildWeeklyEntries validates and converts a request batch. It fails on the
// first invalid entry, naming the offending day, and rejects duplicate days so
// at most one active row per provider/day can ever exist.
func buildWeeklyEntries(providerID string, requests []WeeklyEntryRequest, origin models.ScheduleOrigin) ([]models.WeeklyAvailability, error) {
	entries := make([]models.WeeklyAvailability, 0, len(requests))
	seen := make(map[int]bool, len(requests))

	for _, req := range requests {
		if req.DayOfWeek < 0 || req.DayOfWeek > 6 {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("day_of_week %d is out of range", req.DayOfWeek))
		}
		day := dayNames[req.DayOfWeek]
		if seen[req.DayOfWeek] {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s appears more than once", day))
		}
		seen[req.DayOfWeek] = true

		start, err := parseClock(req.StartTime)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s start time %q is not HH:MM", day, req.StartTime))
		}
		end, err := parseClock(req.EndTime)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s end time %q is not HH:MM", day, req.EndTime))
		}
		if !start.Before(end) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s start time must precede end time", day))
		}

		mode := models.LocationMode(req.LocationMode)
		if mode == "" {
			mode = models.LocationBoth
		}

		entries = append(entries, models.WeeklyAvailability{
			ProviderID:   providerID,
			DayOfWeek:    req.DayOfWeek,
			StartTime:    req.StartTime,
			EndTime:      req.EndTime,
			LocationMode: mode,
			Origin:       origin,
		})
	}
	return entries, nil
}

func parseClock(value string) (time.Time, error) {
	return time.Parse("15:04", value)
}
