package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nextserve/booking-core-api/internal/models"
)

// PreferenceRepository persists per-provider booking preferences.
type PreferenceRepository struct {
	db *sqlx.DB
}

// NewPreferenceRepository constructs the repository.
func NewPreferenceRepository(db *sqlx.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// GetByProvider returns stored preferences for a provider.
func (r *PreferenceRepository) GetByProvider(ctx context.Context, providerID string) (*models.BookingPreferences, error) {
	const query = `SELECT id, provider_id, max_bookings_per_day, slot_duration_minutes, buffer_minutes, min_advance_hours, auto_accept, allow_cancellation, cancellation_window_hours, created_at, updated_at
FROM booking_preferences WHERE provider_id = $1`
	var prefs models.BookingPreferences
	if err := r.db.GetContext(ctx, &prefs, query, providerID); err != nil {
		return nil, err
	}
	return &prefs, nil
}

// Upsert creates or updates preferences for a provider.
func (r *PreferenceRepository) Upsert(ctx context.Context, prefs *models.BookingPreferences) error {
	if prefs.ID == "" {
		prefs.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if prefs.CreatedAt.IsZero() {
		prefs.CreatedAt = now
	}
	prefs.UpdatedAt = now

	const query = `INSERT INTO booking_preferences (id, provider_id, max_bookings_per_day, slot_duration_minutes, buffer_minutes, min_advance_hours, auto_accept, allow_cancellation, cancellation_window_hours, created_at, updated_at)
		VALUES (:id, :provider_id, :max_bookings_per_day, :slot_duration_minutes, :buffer_minutes, :min_advance_hours, :auto_accept, :allow_cancellation, :cancellation_window_hours, :created_at, :updated_at)
		ON CONFLICT (provider_id) DO UPDATE
		SET max_bookings_per_day = EXCLUDED.max_bookings_per_day,
		    slot_duration_minutes = EXCLUDED.slot_duration_minutes,
		    buffer_minutes = EXCLUDED.buffer_minutes,
		    min_advance_hours = EXCLUDED.min_advance_hours,
		    auto_accept = EXCLUDED.auto_accept,
		    allow_cancellation = EXCLUDED.allow_cancellation,
		    cancellation_window_hours = EXCLUDED.cancellation_window_hours,
		    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, prefs); err != nil {
		return fmt.Errorf("upsert booking preferences: %w", err)
	}
	return nil
}
