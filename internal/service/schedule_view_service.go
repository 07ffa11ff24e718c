package service

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/nextserve/booking-core-api/internal/models"
	appErrors "github.com/nextserve/booking-core-api/pkg/errors"
)

// ScheduleViewService composes the per-day read model. Pure read, no
// mutation: for each day pick blocked interval > weekly availability > no
// schedule, carrying the origin tag so consumers can explain why a slot
// exists.
type ScheduleViewService struct {
	providers providerReader
	repo      availabilityRepo
	logger    *zap.Logger
}

// NewScheduleViewService builds the service.
func NewScheduleViewService(providers providerReader, repo availabilityRepo, logger *zap.Logger) *ScheduleViewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleViewService{providers: providers, repo: repo, logger: logger}
}

// GetWindow resolves a 7-day window starting at from (date-only; the time
// component is ignored).
func (s *ScheduleViewService) GetWindow(ctx context.Context, providerID string, from time.Time) (*models.ScheduleWindow, error) {
	if _, err := s.providers.FindByID(ctx, providerID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "provider not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load provider")
	}

	weekly, err := s.repo.ListActiveWeekly(ctx, providerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weekly schedule")
	}
	blocked, err := s.repo.ListActiveBlocked(ctx, providerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load blocked intervals")
	}

	byDay := make(map[int]models.WeeklyAvailability, len(weekly))
	for _, row := range weekly {
		byDay[row.DayOfWeek] = row
	}

	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	days := make([]models.ScheduleDay, 0, 7)
	for i := 0; i < 7; i++ {
		date := start.AddDate(0, 0, i)
		days = append(days, resolveDay(date, byDay, blocked))
	}

	return &models.ScheduleWindow{ProviderID: providerID, From: start, Days: days}, nil
}

func resolveDay(date time.Time, byDay map[int]models.WeeklyAvailability, blocked []models.BlockedInterval) models.ScheduleDay {
	day := models.ScheduleDay{
		Date:      date,
		DayOfWeek: int(date.Weekday()),
		Status:    models.DayUnscheduled,
	}

	for _, interval := range blocked {
		if interval.Covers(date) {
			day.Status = models.DayBlocked
			day.BlockReason = interval.Reason
			return day
		}
	}

	if row, ok := byDay[day.DayOfWeek]; ok {
		day.Status = models.DayAvailable
		day.StartTime = row.StartTime
		day.EndTime = row.EndTime
		day.LocationMode = row.LocationMode
		day.Origin = row.Origin
	}
	return day
}
