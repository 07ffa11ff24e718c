package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// DayHours is one normalized day of business hours. Closed days carry no times.
type DayHours struct {
	Open  bool   `json:"open"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// WeekHours is a fixed 7-element week, Sunday=0 through Saturday=6.
type WeekHours [7]DayHours

// BusinessHours is the stored business-settings row. The weekly payload is kept
// as raw JSON because it arrives in several historical shapes; it is normalized
// once via ParseWeekHours before any consumer sees it.
type BusinessHours struct {
	BusinessID string         `db:"business_id" json:"business_id"`
	Weekly     types.JSONText `db:"weekly" json:"weekly"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}

var dayIndex = map[string]int{
	"sunday":    0,
	"monday":    1,
	"tuesday":   2,
	"wednesday": 3,
	"thursday":  4,
	"friday":    5,
	"saturday":  6,
}

// rawDayHours tolerates the loose shapes seen in stored settings: mixed-case
// keys, an explicit closed flag, or simply missing open/close times.
type rawDayHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Start  string `json:"start"`
	End    string `json:"end"`
	Closed *bool  `json:"closed"`
}

// ParseWeekHours normalizes a stored weekly-hours payload into a fixed week.
// Unknown day keys are rejected; days absent from the payload are closed.
func ParseWeekHours(raw types.JSONText) (WeekHours, error) {
	var week WeekHours
	if len(raw) == 0 {
		return week, nil
	}

	var loose map[string]rawDayHours
	if err := json.Unmarshal(raw, &loose); err != nil {
		return week, fmt.Errorf("parse weekly hours: %w", err)
	}

	for key, day := range loose {
		idx, ok := dayIndex[strings.ToLower(strings.TrimSpace(key))]
		if !ok {
			return WeekHours{}, fmt.Errorf("unknown day key %q in weekly hours", key)
		}

		open := firstNonEmpty(day.Open, day.Start)
		close := firstNonEmpty(day.Close, day.End)
		if (day.Closed != nil && *day.Closed) || open == "" || close == "" {
			week[idx] = DayHours{Open: false}
			continue
		}
		week[idx] = DayHours{Open: true, Start: open, End: close}
	}

	return week, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
