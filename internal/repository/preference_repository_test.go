package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextserve/booking-core-api/internal/models"
)

func TestPreferenceRepositoryGetAndUpsert(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewPreferenceRepository(db)

	mock.ExpectExec("INSERT INTO booking_preferences").
		WithArgs(sqlmock.AnyArg(), "prov-1", 6, 45, 10, 4, true, true, 12, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Upsert(context.Background(), &models.BookingPreferences{
		ProviderID:              "prov-1",
		MaxBookingsPerDay:       6,
		SlotDurationMinutes:     45,
		BufferMinutes:           10,
		MinAdvanceHours:         4,
		AutoAccept:              true,
		AllowCancellation:       true,
		CancellationWindowHours: 12,
	})
	require.NoError(t, err)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "provider_id", "max_bookings_per_day", "slot_duration_minutes", "buffer_minutes", "min_advance_hours", "auto_accept", "allow_cancellation", "cancellation_window_hours", "created_at", "updated_at"}).
		AddRow("pref-1", "prov-1", 6, 45, 10, 4, true, true, 12, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, provider_id, max_bookings_per_day, slot_duration_minutes, buffer_minutes, min_advance_hours, auto_accept, allow_cancellation, cancellation_window_hours, created_at, updated_at FROM booking_preferences WHERE provider_id = $1")).
		WithArgs("prov-1").
		WillReturnRows(rows)

	prefs, err := repo.GetByProvider(context.Background(), "prov-1")
	require.NoError(t, err)
	assert.Equal(t, "pref-1", prefs.ID)
	assert.Equal(t, 45, prefs.SlotDurationMinutes)
	assert.NoError(t, mock.ExpectationsWereMet())
}
