package dto

import "github.com/dayflow-app/dayflow-api/internal/scheduler"

// GenerateDayPlanRequest instructs the planner to build a day timeline preview.
// Stored calendar events, meals, workout and preferences are loaded for the
// user; the inline fields override what is stored.
type GenerateDayPlanRequest struct {
	Date         string             `json:"date" validate:"required,datetime=2006-01-02"`
	SleepStart   string             `json:"sleepStart" validate:"omitempty,len=5"`
	SleepEnd     string             `json:"sleepEnd" validate:"omitempty,len=5"`
	EatingStart  string             `json:"eatingStart" validate:"omitempty,len=5"`
	EatingEnd    string             `json:"eatingEnd" validate:"omitempty,len=5"`
	SkipWorkout  bool               `json:"skipWorkout"`
	ExtraMeals   []PlannedMeal      `json:"extraMeals" validate:"omitempty,dive"`
	ExtraEvents  []PlannedEvent     `json:"extraEvents" validate:"omitempty,dive"`
	Workout      *PlannedWorkout    `json:"workout"`
	MealWindows  []MealWindowTweak  `json:"mealWindows" validate:"omitempty,dive"`
}

// PlannedMeal is an inline meal request.
type PlannedMeal struct {
	Name     string `json:"name" validate:"required"`
	Duration int    `json:"duration" validate:"omitempty,min=5,max=180"`
}

// PlannedEvent is an inline calendar commitment.
type PlannedEvent struct {
	Title     string `json:"title" validate:"required"`
	StartTime string `json:"startTime" validate:"required,len=5"`
	EndTime   string `json:"endTime" validate:"required,len=5"`
	AllDay    bool   `json:"allDay"`
}

// PlannedWorkout is an inline workout request.
type PlannedWorkout struct {
	Title    string `json:"title"`
	Duration int    `json:"duration" validate:"omitempty,min=15,max=240"`
}

// MealWindowTweak overrides a named meal window's anchors.
type MealWindowTweak struct {
	Slot      string `json:"slot" validate:"required,oneof=breakfast lunch dinner"`
	Target    string `json:"target" validate:"omitempty,len=5"`
	FlexStart string `json:"flexStart" validate:"omitempty,len=5"`
	FlexEnd   string `json:"flexEnd" validate:"omitempty,len=5"`
}

// GenerateDayPlanResponse returns the built timeline preview.
type GenerateDayPlanResponse struct {
	PreviewID   string               `json:"previewId"`
	Success     bool                 `json:"success"`
	Timeline    scheduler.Timeline   `json:"timeline"`
	Conflicts   []scheduler.Conflict `json:"conflicts"`
	Warnings    []string             `json:"warnings"`
	Suggestions []string             `json:"suggestions"`
}

// SaveDayPlanRequest persists a previewed plan as a day timeline.
type SaveDayPlanRequest struct {
	PreviewID string `json:"previewId" validate:"required"`
}

// TimelineQuery filters stored timelines by date range.
type TimelineQuery struct {
	From string `form:"from" json:"from" validate:"required,datetime=2006-01-02"`
	To   string `form:"to" json:"to" validate:"required,datetime=2006-01-02"`
}

// BlockStatusRequest marks a timeline block done or skipped.
type BlockStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=completed skipped pending"`
}
