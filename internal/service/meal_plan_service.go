package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dayflow-app/dayflow-api/internal/dto"
	"github.com/dayflow-app/dayflow-api/internal/models"
	"github.com/dayflow-app/dayflow-api/internal/scheduler"
	appErrors "github.com/dayflow-app/dayflow-api/pkg/errors"
)

type mealPlanRepo interface {
	ListMealsByUserDate(ctx context.Context, userID string, date time.Time) ([]models.MealPlanEntry, error)
	CreateMeal(ctx context.Context, entry *models.MealPlanEntry) error
	DeleteMeal(ctx context.Context, userID, id string) error
	GetWorkoutByUserDate(ctx context.Context, userID string, date time.Time) (*models.WorkoutPlan, error)
	UpsertWorkout(ctx context.Context, plan *models.WorkoutPlan) error
	DeleteWorkout(ctx context.Context, userID string, date time.Time) error
}

type calendarEventRepo interface {
	ListByUserDate(ctx context.Context, userID string, date time.Time) ([]models.CalendarEvent, error)
	Create(ctx context.Context, event *models.CalendarEvent) error
	Delete(ctx context.Context, userID, id string) error
}

// MealPlanService manages the raw day inputs: meals, workouts and calendar
// commitments. The planner consumes whatever is stored here.
type MealPlanService struct {
	meals     mealPlanRepo
	events    calendarEventRepo
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMealPlanService builds the service.
func NewMealPlanService(meals mealPlanRepo, events calendarEventRepo, validate *validator.Validate, logger *zap.Logger) *MealPlanService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MealPlanService{meals: meals, events: events, validator: validate, logger: logger}
}

// ListDay returns everything planned for a date.
type DayInputs struct {
	Meals   []models.MealPlanEntry `json:"meals"`
	Workout *models.WorkoutPlan    `json:"workout,omitempty"`
	Events  []models.CalendarEvent `json:"events"`
}

// ListDay returns the stored inputs for one date.
func (s *MealPlanService) ListDay(ctx context.Context, userID string, date time.Time) (*DayInputs, error) {
	meals, err := s.meals.ListMealsByUserDate(ctx, userID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list meals")
	}
	events, err := s.events.ListByUserDate(ctx, userID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list calendar events")
	}
	workout, err := s.meals.GetWorkoutByUserDate(ctx, userID, date)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load workout")
	}
	return &DayInputs{Meals: meals, Workout: workout, Events: events}, nil
}

// AddMeal stores a planned meal for a date.
func (s *MealPlanService) AddMeal(ctx context.Context, userID string, req dto.CreateMealRequest) (*models.MealPlanEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid meal payload")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be formatted as YYYY-MM-DD")
	}
	duration := req.Duration
	if duration <= 0 {
		duration = 30
	}
	entry := &models.MealPlanEntry{UserID: userID, Date: date, Name: req.Name, Duration: duration}
	if err := s.meals.CreateMeal(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store meal")
	}
	return entry, nil
}

// RemoveMeal deletes a planned meal.
func (s *MealPlanService) RemoveMeal(ctx context.Context, userID, id string) error {
	if err := s.meals.DeleteMeal(ctx, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "meal not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete meal")
	}
	return nil
}

// SetWorkout stores or replaces the workout for a date.
func (s *MealPlanService) SetWorkout(ctx context.Context, userID string, req dto.UpsertWorkoutRequest) (*models.WorkoutPlan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid workout payload")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be formatted as YYYY-MM-DD")
	}
	duration := req.Duration
	if duration <= 0 {
		duration = 60
	}
	title := req.Title
	if title == "" {
		title = "Workout"
	}
	plan := &models.WorkoutPlan{UserID: userID, Date: date, Title: title, Duration: duration}
	if err := s.meals.UpsertWorkout(ctx, plan); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store workout")
	}
	return plan, nil
}

// ClearWorkout removes the workout planned for a date.
func (s *MealPlanService) ClearWorkout(ctx context.Context, userID string, date time.Time) error {
	if err := s.meals.DeleteWorkout(ctx, userID, date); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete workout")
	}
	return nil
}

// AddEvent stores a calendar commitment.
func (s *MealPlanService) AddEvent(ctx context.Context, userID string, req dto.CreateCalendarEventRequest) (*models.CalendarEvent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be formatted as YYYY-MM-DD")
	}
	if !req.AllDay {
		for _, clock := range []string{req.StartTime, req.EndTime} {
			if _, err := scheduler.ParseClock(clock); err != nil {
				return nil, appErrors.Clone(appErrors.ErrValidation, "event times must be HH:MM")
			}
		}
	}
	source := req.Source
	if source == "" {
		source = "manual"
	}
	event := &models.CalendarEvent{
		UserID:    userID,
		Title:     req.Title,
		Date:      date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		AllDay:    req.AllDay,
		Source:    source,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store calendar event")
	}
	return event, nil
}

// RemoveEvent deletes a calendar commitment.
func (s *MealPlanService) RemoveEvent(ctx context.Context, userID, id string) error {
	if err := s.events.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "calendar event not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete calendar event")
	}
	return nil
}
