package models

import "time"

// ScheduleOrigin tags how a weekly availability row came to exist.
type ScheduleOrigin string

const (
	OriginManual    ScheduleOrigin = "manual"
	OriginInherited ScheduleOrigin = "inherited"
)

// LocationMode describes where a provider delivers service for a window.
type LocationMode string

const (
	LocationBusiness LocationMode = "business"
	LocationMobile   LocationMode = "mobile"
	LocationBoth     LocationMode = "both"
)

// WeeklyAvailability is one recurring weekly window for a provider.
// Day of week uses Sunday=0 through Saturday=6. Times are "HH:MM" strings.
// At most one active row may exist per provider and day.
type WeeklyAvailability struct {
	ID           string         `db:"id" json:"id"`
	ProviderID   string         `db:"provider_id" json:"provider_id"`
	DayOfWeek    int            `db:"day_of_week" json:"day_of_week"`
	StartTime    string         `db:"start_time" json:"start_time"`
	EndTime      string         `db:"end_time" json:"end_time"`
	LocationMode LocationMode   `db:"location_mode" json:"location_mode"`
	Active       bool           `db:"active" json:"active"`
	Origin       ScheduleOrigin `db:"origin" json:"origin"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// BlockedInterval marks a provider unavailable for a date range.
// It always wins over WeeklyAvailability for the same calendar date.
type BlockedInterval struct {
	ID         string    `db:"id" json:"id"`
	ProviderID string    `db:"provider_id" json:"provider_id"`
	StartDate  time.Time `db:"start_date" json:"start_date"`
	EndDate    time.Time `db:"end_date" json:"end_date"`
	Reason     string    `db:"reason" json:"reason"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Covers reports whether the interval includes the given calendar date.
func (b BlockedInterval) Covers(date time.Time) bool {
	d := date.Truncate(24 * time.Hour)
	start := b.StartDate.Truncate(24 * time.Hour)
	end := b.EndDate.Truncate(24 * time.Hour)
	return !d.Before(start) && !d.After(end)
}

// ProviderSchedule is the persisted schedule state for one provider:
// active weekly rows ordered by day of week plus active blocked intervals.
type ProviderSchedule struct {
	ProviderID string               `json:"provider_id"`
	Weekly     []WeeklyAvailability `json:"weekly"`
	Blocked    []BlockedInterval    `json:"blocked"`
}
