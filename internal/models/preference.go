package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// FlexibilityLevel controls how aggressively the planner may move blocks.
type FlexibilityLevel string

const (
	FlexibilityRigid    FlexibilityLevel = "RIGID"
	FlexibilityBalanced FlexibilityLevel = "BALANCED"
	FlexibilityFluid    FlexibilityLevel = "FLUID"
)

// UserPreference stores a user's scheduling defaults.
type UserPreference struct {
	ID               string           `db:"id" json:"id"`
	UserID           string           `db:"user_id" json:"user_id"`
	WakeTime         string           `db:"wake_time" json:"wake_time"`
	SleepTime        string           `db:"sleep_time" json:"sleep_time"`
	EnergyPeak       string           `db:"energy_peak" json:"energy_peak"`
	FlexibilityLevel FlexibilityLevel `db:"flexibility_level" json:"flexibility_level"`
	EatingStart      *string          `db:"eating_start" json:"eating_start,omitempty"`
	EatingEnd        *string          `db:"eating_end" json:"eating_end,omitempty"`
	CalendarSync     bool             `db:"calendar_sync" json:"calendar_sync"`
	PriorityTags     types.JSONText   `db:"priority_tags" json:"priority_tags"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`
}

// DefaultPreference returns the preference row used before a user saves one.
func DefaultPreference(userID string) UserPreference {
	return UserPreference{
		UserID:           userID,
		WakeTime:         "06:30",
		SleepTime:        "22:30",
		EnergyPeak:       "morning",
		FlexibilityLevel: FlexibilityBalanced,
		CalendarSync:     false,
		PriorityTags:     types.JSONText("[]"),
	}
}
