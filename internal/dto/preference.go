package dto

// UpdatePreferenceRequest replaces a user's scheduling preferences.
type UpdatePreferenceRequest struct {
	WakeTime         string   `json:"wakeTime" validate:"required,len=5"`
	SleepTime        string   `json:"sleepTime" validate:"required,len=5"`
	EnergyPeak       string   `json:"energyPeak" validate:"omitempty,oneof=morning afternoon evening"`
	FlexibilityLevel string   `json:"flexibilityLevel" validate:"omitempty,oneof=RIGID BALANCED FLUID"`
	EatingStart      *string  `json:"eatingStart" validate:"omitempty,len=5"`
	EatingEnd        *string  `json:"eatingEnd" validate:"omitempty,len=5"`
	CalendarSync     bool     `json:"calendarSync"`
	PriorityTags     []string `json:"priorityTags"`
}

// PreferenceResponse is the API view of stored preferences.
type PreferenceResponse struct {
	WakeTime         string   `json:"wakeTime"`
	SleepTime        string   `json:"sleepTime"`
	EnergyPeak       string   `json:"energyPeak"`
	FlexibilityLevel string   `json:"flexibilityLevel"`
	EatingStart      *string  `json:"eatingStart,omitempty"`
	EatingEnd        *string  `json:"eatingEnd,omitempty"`
	CalendarSync     bool     `json:"calendarSync"`
	PriorityTags     []string `json:"priorityTags"`
}
