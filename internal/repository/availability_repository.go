package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nextserve/booking-core-api/internal/models"
)

// AvailabilityRepository persists weekly recurring availability and blocked
// intervals. Weekly edits are soft removals (rows flip inactive, preserving
// audit history); inheritance re-sync hard-deletes and reinserts the
// inherited-tagged rows. The asymmetry is deliberate.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository constructs the repository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// ListActiveWeekly returns the active weekly rows for a provider ordered by
// day of week.
func (r *AvailabilityRepository) ListActiveWeekly(ctx context.Context, providerID string) ([]models.WeeklyAvailability, error) {
	const query = `SELECT id, provider_id, day_of_week, start_time, end_time, location_mode, active, origin, created_at, updated_at
FROM weekly_availability WHERE provider_id = $1 AND active = TRUE ORDER BY day_of_week`
	var rows []models.WeeklyAvailability
	if err := r.db.SelectContext(ctx, &rows, query, providerID); err != nil {
		return nil, fmt.Errorf("list weekly availability: %w", err)
	}
	return rows, nil
}

// ListActiveBlocked returns the active blocked intervals for a provider.
func (r *AvailabilityRepository) ListActiveBlocked(ctx context.Context, providerID string) ([]models.BlockedInterval, error) {
	const query = `SELECT id, provider_id, start_date, end_date, reason, active, created_at
FROM blocked_intervals WHERE provider_id = $1 AND active = TRUE ORDER BY start_date`
	var rows []models.BlockedInterval
	if err := r.db.SelectContext(ctx, &rows, query, providerID); err != nil {
		return nil, fmt.Errorf("list blocked intervals: %w", err)
	}
	return rows, nil
}

// ReplaceWeekly atomically replaces all active weekly rows for a provider.
// Previously active rows not present in the new batch become inactive rather
// than being deleted. Readers never observe a partially-applied batch.
func (r *AvailabilityRepository) ReplaceWeekly(ctx context.Context, providerID string, entries []models.WeeklyAvailability) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace weekly: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()

	const deactivate = `UPDATE weekly_availability SET active = FALSE, updated_at = $2 WHERE provider_id = $1 AND active = TRUE`
	if _, err := tx.ExecContext(ctx, deactivate, providerID, now); err != nil {
		return fmt.Errorf("deactivate weekly availability: %w", err)
	}

	if err := insertWeekly(ctx, tx, providerID, entries, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace weekly: %w", err)
	}
	return nil
}

// ReplaceInherited hard-deletes the active inherited-tagged rows for a
// provider and inserts the new batch, leaving manual rows untouched.
func (r *AvailabilityRepository) ReplaceInherited(ctx context.Context, providerID string, entries []models.WeeklyAvailability) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace inherited: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const remove = `DELETE FROM weekly_availability WHERE provider_id = $1 AND origin = 'inherited' AND active = TRUE`
	if _, err := tx.ExecContext(ctx, remove, providerID); err != nil {
		return fmt.Errorf("delete inherited availability: %w", err)
	}

	if err := insertWeekly(ctx, tx, providerID, entries, time.Now().UTC()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace inherited: %w", err)
	}
	return nil
}

func insertWeekly(ctx context.Context, tx *sqlx.Tx, providerID string, entries []models.WeeklyAvailability, now time.Time) error {
	const insert = `INSERT INTO weekly_availability (id, provider_id, day_of_week, start_time, end_time, location_mode, active, origin, created_at, updated_at)
VALUES (:id, :provider_id, :day_of_week, :start_time, :end_time, :location_mode, :active, :origin, :created_at, :updated_at)`

	for i := range entries {
		entry := entries[i]
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		entry.ProviderID = providerID
		entry.Active = true
		entry.CreatedAt = now
		entry.UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, insert, entry); err != nil {
			return fmt.Errorf("insert weekly availability day %d: %w", entry.DayOfWeek, err)
		}
	}
	return nil
}

// InsertBlocked stores a new blocked interval.
func (r *AvailabilityRepository) InsertBlocked(ctx context.Context, interval *models.BlockedInterval) error {
	if interval.ID == "" {
		interval.ID = uuid.NewString()
	}
	interval.Active = true
	if interval.CreatedAt.IsZero() {
		interval.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO blocked_intervals (id, provider_id, start_date, end_date, reason, active, created_at)
VALUES (:id, :provider_id, :start_date, :end_date, :reason, :active, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, interval); err != nil {
		return fmt.Errorf("insert blocked interval: %w", err)
	}
	return nil
}

// ListInheritedProviderIDs returns providers of a business currently carrying
// at least one active inherited row, i.e. those eligible for bulk re-sync.
func (r *AvailabilityRepository) ListInheritedProviderIDs(ctx context.Context, businessID string) ([]string, error) {
	const query = `SELECT DISTINCT w.provider_id
FROM weekly_availability w
JOIN providers p ON p.id = w.provider_id
WHERE p.business_id = $1 AND w.origin = 'inherited' AND w.active = TRUE
ORDER BY w.provider_id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, businessID); err != nil {
		return nil, fmt.Errorf("list inherited providers: %w", err)
	}
	return ids, nil
}
