package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// DayTimelineStatus tracks the lifecycle of a generated day plan.
type DayTimelineStatus string

const (
	DayTimelineStatusDraft      DayTimelineStatus = "DRAFT"
	DayTimelineStatusSaved      DayTimelineStatus = "SAVED"
	DayTimelineStatusSuperseded DayTimelineStatus = "SUPERSEDED"
)

// DayTimeline is a versioned day plan for one user and date. Saving a new
// plan for the same date bumps the version; only the latest SAVED version
// is served by default.
type DayTimeline struct {
	ID        string            `db:"id" json:"id"`
	UserID    string            `db:"user_id" json:"user_id"`
	Date      time.Time         `db:"date" json:"date"`
	Version   int               `db:"version" json:"version"`
	Status    DayTimelineStatus `db:"status" json:"status"`
	Meta      types.JSONText    `db:"meta" json:"meta"`
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt time.Time         `db:"updated_at" json:"updated_at"`
}

// TimelineBlock is a single scheduled block belonging to a DayTimeline.
type TimelineBlock struct {
	ID          string  `db:"id" json:"id"`
	TimelineID  string  `db:"timeline_id" json:"timeline_id"`
	BlockID     string  `db:"block_id" json:"block_id"`
	Kind        string  `db:"kind" json:"kind"`
	Title       string  `db:"title" json:"title"`
	StartTime   string  `db:"start_time" json:"start_time"`
	EndTime     string  `db:"end_time" json:"end_time"`
	Duration    int     `db:"duration" json:"duration"`
	Priority    int     `db:"priority" json:"priority"`
	Flexibility float64 `db:"flexibility" json:"flexibility"`
	AllDay      bool    `db:"all_day" json:"all_day"`
	Status      string  `db:"status" json:"status"`
	Position    int     `db:"position" json:"position"`
}
