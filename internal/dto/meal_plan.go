package dto

// CreateMealRequest adds a meal or snack to the plan for a date.
type CreateMealRequest struct {
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Name     string `json:"name" validate:"required"`
	Duration int    `json:"duration" validate:"omitempty,min=5,max=180"`
}

// UpsertWorkoutRequest sets the workout planned for a date.
type UpsertWorkoutRequest struct {
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Title    string `json:"title"`
	Duration int    `json:"duration" validate:"omitempty,min=15,max=240"`
}

// CreateCalendarEventRequest adds a calendar commitment.
type CreateCalendarEventRequest struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Title     string `json:"title" validate:"required"`
	StartTime string `json:"startTime" validate:"required,len=5"`
	EndTime   string `json:"endTime" validate:"required,len=5"`
	AllDay    bool   `json:"allDay"`
	Source    string `json:"source" validate:"omitempty,oneof=manual google outlook"`
}
