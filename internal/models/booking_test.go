package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBookingStatus(t *testing.T) {
	status, err := ParseBookingStatus("confirmed")
	require.NoError(t, err)
	assert.Equal(t, BookingConfirmed, status)

	_, err = ParseBookingStatus("archived")
	require.Error(t, err)
}

func TestCanTransitionGraph(t *testing.T) {
	allowed := []struct {
		from, to BookingStatus
	}{
		{BookingPending, BookingConfirmed},
		{BookingPending, BookingDeclined},
		{BookingConfirmed, BookingInProgress},
		{BookingConfirmed, BookingCancelled},
		{BookingConfirmed, BookingNoShow},
		{BookingInProgress, BookingCompleted},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	all := []BookingStatus{
		BookingPending, BookingConfirmed, BookingInProgress,
		BookingCompleted, BookingCancelled, BookingDeclined, BookingNoShow,
	}
	allowedSet := make(map[[2]BookingStatus]bool, len(allowed))
	for _, tc := range allowed {
		allowedSet[[2]BookingStatus{tc.from, tc.to}] = true
	}
	for _, from := range all {
		for _, to := range all {
			if allowedSet[[2]BookingStatus{from, to}] {
				continue
			}
			assert.False(t, CanTransition(from, to), "%s -> %s should be rejected", from, to)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, status := range []BookingStatus{BookingCompleted, BookingCancelled, BookingDeclined, BookingNoShow} {
		assert.True(t, status.IsTerminal(), "%s should be terminal", status)
	}
	for _, status := range []BookingStatus{BookingPending, BookingConfirmed, BookingInProgress} {
		assert.False(t, status.IsTerminal(), "%s should not be terminal", status)
	}
}

func TestAssignmentOpen(t *testing.T) {
	assert.True(t, BookingPending.AssignmentOpen())
	assert.True(t, BookingConfirmed.AssignmentOpen())
	assert.False(t, BookingInProgress.AssignmentOpen())
	assert.False(t, BookingCompleted.AssignmentOpen())
	assert.False(t, BookingCancelled.AssignmentOpen())
}
