package models

import "time"

// ScheduleDayStatus describes how one calendar day resolved in the read model.
type ScheduleDayStatus string

const (
	DayAvailable   ScheduleDayStatus = "available"
	DayBlocked     ScheduleDayStatus = "blocked"
	DayUnscheduled ScheduleDayStatus = "unscheduled"
)

// ScheduleDay is one fully-resolved day of the 7-day view. Precedence is
// blocked interval > weekly availability > no schedule. Origin is set only for
// available days so consumers can explain why a window exists.
type ScheduleDay struct {
	Date         time.Time         `json:"date"`
	DayOfWeek    int               `json:"day_of_week"`
	Status       ScheduleDayStatus `json:"status"`
	StartTime    string            `json:"start_time,omitempty"`
	EndTime      string            `json:"end_time,omitempty"`
	LocationMode LocationMode      `json:"location_mode,omitempty"`
	Origin       ScheduleOrigin    `json:"origin,omitempty"`
	BlockReason  string            `json:"block_reason,omitempty"`
}

// ScheduleWindow is the composed read model for one provider and 7-day window.
type ScheduleWindow struct {
	ProviderID string        `json:"provider_id"`
	From       time.Time     `json:"from"`
	Days       []ScheduleDay `json:"days"`
}
