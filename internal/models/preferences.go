package models

import "time"

// BookingPreferences stores per-provider slot parameters.
type BookingPreferences struct {
	ID                      string    `db:"id" json:"id"`
	ProviderID              string    `db:"provider_id" json:"provider_id"`
	MaxBookingsPerDay       int       `db:"max_bookings_per_day" json:"max_bookings_per_day"`
	SlotDurationMinutes     int       `db:"slot_duration_minutes" json:"slot_duration_minutes"`
	BufferMinutes           int       `db:"buffer_minutes" json:"buffer_minutes"`
	MinAdvanceHours         int       `db:"min_advance_hours" json:"min_advance_hours"`
	AutoAccept              bool      `db:"auto_accept" json:"auto_accept"`
	AllowCancellation       bool      `db:"allow_cancellation" json:"allow_cancellation"`
	CancellationWindowHours int       `db:"cancellation_window_hours" json:"cancellation_window_hours"`
	CreatedAt               time.Time `db:"created_at" json:"created_at"`
	UpdatedAt               time.Time `db:"updated_at" json:"updated_at"`
}

// DefaultBookingPreferences returns the preferences applied when a provider
// has never saved their own.
func DefaultBookingPreferences(providerID string) *BookingPreferences {
	return &BookingPreferences{
		ProviderID:              providerID,
		MaxBookingsPerDay:       8,
		SlotDurationMinutes:     60,
		BufferMinutes:           15,
		MinAdvanceHours:         2,
		AutoAccept:              false,
		AllowCancellation:       true,
		CancellationWindowHours: 24,
	}
}
