package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dayflow-app/dayflow-api/internal/dto"
	"github.com/dayflow-app/dayflow-api/internal/models"
	"github.com/dayflow-app/dayflow-api/internal/service"
	appErrors "github.com/dayflow-app/dayflow-api/pkg/errors"
	"github.com/dayflow-app/dayflow-api/pkg/response"
)

type dayInputService interface {
	ListDay(ctx context.Context, userID string, date time.Time) (*service.DayInputs, error)
	AddMeal(ctx context.Context, userID string, req dto.CreateMealRequest) (*models.MealPlanEntry, error)
	RemoveMeal(ctx context.Context, userID, id string) error
	SetWorkout(ctx context.Context, userID string, req dto.UpsertWorkoutRequest) (*models.WorkoutPlan, error)
	ClearWorkout(ctx context.Context, userID string, date time.Time) error
	AddEvent(ctx context.Context, userID string, req dto.CreateCalendarEventRequest) (*models.CalendarEvent, error)
	RemoveEvent(ctx context.Context, userID, id string) error
}

// MealPlanHandler manages day inputs: meals, workouts, calendar events.
type MealPlanHandler struct {
	service dayInputService
}

// NewMealPlanHandler constructs the handler.
func NewMealPlanHandler(service dayInputService) *MealPlanHandler {
	return &MealPlanHandler{service: service}
}

// ListDay godoc
// @Summary List planned inputs for a date
// @Tags DayInputs
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /inputs/{date} [get]
func (h *MealPlanHandler) ListDay(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	date, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be formatted as YYYY-MM-DD"))
		return
	}
	inputs, err := h.service.ListDay(c.Request.Context(), claims.UserID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, inputs, nil)
}

// AddMeal godoc
// @Summary Plan a meal for a date
// @Tags DayInputs
// @Accept json
// @Produce json
// @Param payload body dto.CreateMealRequest true "Meal payload"
// @Success 201 {object} response.Envelope
// @Router /inputs/meals [post]
func (h *MealPlanHandler) AddMeal(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid meal payload"))
		return
	}
	meal, err := h.service.AddMeal(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, meal)
}

// RemoveMeal godoc
// @Summary Remove a planned meal
// @Tags DayInputs
// @Produce json
// @Param id path string true "Meal ID"
// @Success 204
// @Router /inputs/meals/{id} [delete]
func (h *MealPlanHandler) RemoveMeal(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.RemoveMeal(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SetWorkout godoc
// @Summary Plan or replace the workout for a date
// @Tags DayInputs
// @Accept json
// @Produce json
// @Param payload body dto.UpsertWorkoutRequest true "Workout payload"
// @Success 200 {object} response.Envelope
// @Router /inputs/workout [put]
func (h *MealPlanHandler) SetWorkout(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UpsertWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid workout payload"))
		return
	}
	plan, err := h.service.SetWorkout(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil)
}

// ClearWorkout godoc
// @Summary Remove the workout planned for a date
// @Tags DayInputs
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 204
// @Router /inputs/workout/{date} [delete]
func (h *MealPlanHandler) ClearWorkout(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	date, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be formatted as YYYY-MM-DD"))
		return
	}
	if err := h.service.ClearWorkout(c.Request.Context(), claims.UserID, date); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddEvent godoc
// @Summary Add a calendar commitment
// @Tags DayInputs
// @Accept json
// @Produce json
// @Param payload body dto.CreateCalendarEventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Router /inputs/events [post]
func (h *MealPlanHandler) AddEvent(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateCalendarEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}
	event, err := h.service.AddEvent(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// RemoveEvent godoc
// @Summary Remove a calendar commitment
// @Tags DayInputs
// @Produce json
// @Param id path string true "Event ID"
// @Success 204
// @Router /inputs/events/{id} [delete]
func (h *MealPlanHandler) RemoveEvent(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.RemoveEvent(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
