package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/nextserve/booking-core-api/internal/models"
	appErrors "github.com/nextserve/booking-core-api/pkg/errors"
)

type businessHoursSource interface {
	GetWeekHours(ctx context.Context, businessID string) (models.WeekHours, error)
}

// SyncResult summarises a bulk re-sync run.
type SyncResult struct {
	BusinessID      string   `json:"business_id"`
	SyncedProviders []string `json:"synced_providers"`
}

// SyncService keeps providers tagged as inherited consistent with their
// business's weekly hours. Sync is a destructive replace of the inherited
// rows, never a diff: partial patching of recurring schedules risks silent
// drift between the origin tag and actual content after repeated edits.
// Manual rows are never touched.
type SyncService struct {
	providers providerReader
	repo      availabilityRepo
	hours     businessHoursSource
	logger    *zap.Logger
}

// NewSyncService builds the service.
func NewSyncService(providers providerReader, repo availabilityRepo, hours businessHoursSource, logger *zap.Logger) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{
		providers: providers,
		repo:      repo,
		hours:     hours,
		logger:    logger,
	}
}

// ApplyBusinessHours replaces one provider's inherited rows with the
// business's current weekly hours: one row per open business day, tagged
// inherited, zero rows for closed days. Idempotent for unchanged hours.
func (s *SyncService) ApplyBusinessHours(ctx context.Context, providerID string, actor models.Actor) (*models.ProviderSchedule, error) {
	if !actor.CanManageSchedules() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only owners and dispatchers may apply business hours")
	}

	provider, err := s.providers.FindByID(ctx, providerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "provider not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load provider")
	}
	if provider.BusinessID != actor.BusinessID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "provider not found")
	}

	week, err := s.loadWeekHours(ctx, provider.BusinessID)
	if err != nil {
		return nil, err
	}

	if err := s.syncProvider(ctx, provider.ID, week); err != nil {
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

// SyncAllInherited re-syncs every provider of the business currently carrying
// at least one inherited row. Providers whose schedules are fully manual are
// not eligible and stay untouched.
func (s *SyncService) SyncAllInherited(ctx context.Context, businessID string, actor models.Actor) (*SyncResult, error) {
	if !actor.CanManageSchedules() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only owners and dispatchers may sync schedules")
	}
	if actor.BusinessID != businessID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "business not found")
	}

	week, err := s.loadWeekHours(ctx, businessID)
	if err != nil {
		return nil, err
	}

	providerIDs, err := s.repo.ListInheritedProviderIDs(ctx, businessID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list inherited providers")
	}

	synced := make([]string, 0, len(providerIDs))
	for _, id := range providerIDs {
		if err := s.syncProvider(ctx, id, week); err != nil {
			return nil, err
		}
		synced = append(synced, id)
	}

	s.logger.Info("schedule.sync_all",
		zap.String("business_id", businessID),
		zap.Int("providers", len(synced)))

	return &SyncResult{BusinessID: businessID, SyncedProviders: synced}, nil
}

func (s *SyncService) loadWeekHours(ctx context.Context, businessID string) (models.WeekHours, error) {
	week, err := s.hours.GetWeekHours(ctx, businessID)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.WeekHours{}, appErrors.Clone(appErrors.ErrNotFound, "business hours not configured")
		}
		return models.WeekHours{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load business hours")
	}
	return week, nil
}

func (s *SyncService) syncProvider(ctx context.Context, providerID string, week models.WeekHours) error {
	entries := inheritedEntries(providerID, week)
	if err := s.repo.ReplaceInherited(ctx, providerID, entries); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sync provider schedule")
	}
	return nil
}

// inheritedEntries maps open business days onto inherited weekly rows using
// the default location mode.
func inheritedEntries(providerID string, week models.WeekHours) []models.WeeklyAvailability {
	entries := make([]models.WeeklyAvailability, 0, 7)
	for day, hours := range week {
		if !hours.Open {
			continue
		}
		entries = append(entries, models.WeeklyAvailability{
			ProviderID:   providerID,
			DayOfWeek:    day,
			StartTime:    hours.Start,
			EndTime:      hours.End,
			LocationMode: models.LocationBoth,
			Origin:       models.OriginInherited,
		})
	}
	return entries
}
