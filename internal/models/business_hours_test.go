package models

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeekHoursMixedShapes(t *testing.T) {
	raw := types.JSONText(`{
		"Monday":    {"open": "09:00", "close": "17:00"},
		"tuesday":   {"start": "10:00", "end": "16:00"},
		"WEDNESDAY": {"open": "09:00", "close": "17:00", "closed": true},
		"thursday":  {"closed": false},
		"sunday":    {}
	}`)

	week, err := ParseWeekHours(raw)
	require.NoError(t, err)

	assert.Equal(t, DayHours{Open: true, Start: "09:00", End: "17:00"}, week[1])
	assert.Equal(t, DayHours{Open: true, Start: "10:00", End: "16:00"}, week[2])
	// explicit closed flag wins even when times are present
	assert.False(t, week[3].Open)
	// closed=false without times is still closed
	assert.False(t, week[4].Open)
	assert.False(t, week[0].Open)
	// days absent from the payload are closed
	assert.False(t, week[5].Open)
	assert.False(t, week[6].Open)
}

func TestParseWeekHoursUnknownDay(t *testing.T) {
	_, err := ParseWeekHours(types.JSONText(`{"funday": {"open": "09:00", "close": "17:00"}}`))
	require.Error(t, err)
}

func TestParseWeekHoursEmptyPayload(t *testing.T) {
	week, err := ParseWeekHours(nil)
	require.NoError(t, err)
	for _, day := range week {
		assert.False(t, day.Open)
	}
}

func TestBlockedIntervalCovers(t *testing.T) {
	interval := BlockedInterval{
		StartDate: mustDate(t, "2025-03-10"),
		EndDate:   mustDate(t, "2025-03-12"),
	}

	assert.True(t, interval.Covers(mustDate(t, "2025-03-10")))
	assert.True(t, interval.Covers(mustDate(t, "2025-03-11")))
	assert.True(t, interval.Covers(mustDate(t, "2025-03-12")))
	assert.False(t, interval.Covers(mustDate(t, "2025-03-09")))
	assert.False(t, interval.Covers(mustDate(t, "2025-03-13")))
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return parsed
}
