package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nextserve/booking-core-api/internal/models"
	appErrors "github.com/nextserve/booking-core-api/pkg/errors"
)

func TestScheduleViewWindowPrecedence(t *testing.T) {
	repo := newAvailabilityRepoMock()
	repo.weekly["prov-1"] = []models.WeeklyAvailability{
		{ProviderID: "prov-1", DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00", LocationMode: models.LocationBusiness, Origin: models.OriginInherited, Active: true},
		{ProviderID: "prov-1", DayOfWeek: 3, StartTime: "10:00", EndTime: "14:00", LocationMode: models.LocationMobile, Origin: models.OriginManual, Active: true},
	}
	repo.blocked["prov-1"] = []models.BlockedInterval{{
		ProviderID: "prov-1",
		StartDate:  time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC),
		Reason:     "conference",
		Active:     true,
	}}
	svc := NewScheduleViewService(testProviders(), repo, zap.NewNop())

	// 2025-03-10 is a Monday
	window, err := svc.GetWindow(context.Background(), "prov-1", time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, window.Days, 7)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), window.From, "time component dropped")

	monday := window.Days[0]
	assert.Equal(t, models.DayAvailable, monday.Status)
	assert.Equal(t, "09:00", monday.StartTime)
	assert.Equal(t, models.OriginInherited, monday.Origin)

	tuesday := window.Days[1]
	assert.Equal(t, models.DayUnscheduled, tuesday.Status)
	assert.Empty(t, tuesday.StartTime)

	// Wednesday has a weekly row but the block wins
	wednesday := window.Days[2]
	assert.Equal(t, models.DayBlocked, wednesday.Status)
	assert.Equal(t, "conference", wednesday.BlockReason)
	assert.Empty(t, wednesday.StartTime)

	thursday := window.Days[3]
	assert.Equal(t, models.DayBlocked, thursday.Status, "block end date is inclusive")

	// next Monday falls outside the 7-day window
	sunday := window.Days[6]
	assert.Equal(t, 0, sunday.DayOfWeek)
	assert.Equal(t, models.DayUnscheduled, sunday.Status)
}

func TestScheduleViewWindowManualOrigin(t *testing.T) {
	repo := newAvailabilityRepoMock()
	repo.weekly["prov-1"] = []models.WeeklyAvailability{
		{ProviderID: "prov-1", DayOfWeek: 3, StartTime: "10:00", EndTime: "14:00", LocationMode: models.LocationMobile, Origin: models.OriginManual, Active: true},
	}
	svc := NewScheduleViewService(testProviders(), repo, zap.NewNop())

	window, err := svc.GetWindow(context.Background(), "prov-1", time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	wednesday := window.Days[0]
	assert.Equal(t, models.DayAvailable, wednesday.Status)
	assert.Equal(t, models.OriginManual, wednesday.Origin)
	assert.Equal(t, models.LocationMobile, wednesday.LocationMode)
}

func TestScheduleViewWindowUnknownProvider(t *testing.T) {
	svc := NewScheduleViewService(testProviders(), newAvailabilityRepoMock(), zap.NewNop())

	_, err := svc.GetWindow(context.Background(), "prov-missing", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
