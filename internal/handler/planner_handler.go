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

type dayPlanner interface {
	Generate(ctx context.Context, userID string, req dto.GenerateDayPlanRequest) (*dto.GenerateDayPlanResponse, error)
	Save(ctx context.Context, userID string, req dto.SaveDayPlanRequest) (string, error)
	GetDay(ctx context.Context, userID string, date time.Time) (*service.DayView, error)
	ListRange(ctx context.Context, userID string, query dto.TimelineQuery) ([]models.DayTimeline, error)
	MarkBlock(ctx context.Context, userID, timelineID, blockID string, req dto.BlockStatusRequest) (string, error)
	DeleteTimeline(ctx context.Context, userID, timelineID string) error
}

type habitTracker interface {
	RecordCompletion(userID, blockKind string, date time.Time)
	List(ctx context.Context, userID string) ([]models.HabitStreak, error)
}

// PlannerHandler exposes day-plan endpoints.
type PlannerHandler struct {
	planner dayPlanner
	streaks habitTracker
}

// NewPlannerHandler constructs the handler.
func NewPlannerHandler(planner *service.PlannerService, streaks *service.StreakService) *PlannerHandler {
	return &PlannerHandler{planner: planner, streaks: streaks}
}

// Generate godoc
// @Summary Generate a day plan preview
// @Description Builds a conflict-free timeline from stored inputs plus inline overrides. The preview expires unless saved.
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.GenerateDayPlanRequest true "Generate day plan payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /planner/generate [post]
func (h *PlannerHandler) Generate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.GenerateDayPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	result, err := h.planner.Generate(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Save godoc
// @Summary Save a previewed day plan
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.SaveDayPlanRequest true "Save day plan payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 410 {object} response.Envelope
// @Router /planner/save [post]
func (h *PlannerHandler) Save(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.SaveDayPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid save payload"))
		return
	}
	id, err := h.planner.Save(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"timelineId": id})
}

// Day godoc
// @Summary Get the saved timeline for a date
// @Tags Planner
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /planner/days/{date} [get]
func (h *PlannerHandler) Day(c *gin.Context) {
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
	view, err := h.planner.GetDay(c.Request.Context(), claims.UserID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// List godoc
// @Summary List saved timelines within a date range
// @Tags Planner
// @Produce json
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /planner/days [get]
func (h *PlannerHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	query := dto.TimelineQuery{
		From: c.Query("from"),
		To:   c.Query("to"),
	}
	list, err := h.planner.ListRange(c.Request.Context(), claims.UserID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, nil)
}

// MarkBlock godoc
// @Summary Mark a timeline block completed or skipped
// @Description Completed workouts and meals feed habit streaks.
// @Tags Planner
// @Accept json
// @Produce json
// @Param id path string true "Timeline ID"
// @Param blockId path string true "Block ID"
// @Param payload body dto.BlockStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /planner/timelines/{id}/blocks/{blockId} [patch]
func (h *PlannerHandler) MarkBlock(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.BlockStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}
	kind, err := h.planner.MarkBlock(c.Request.Context(), claims.UserID, c.Param("id"), c.Param("blockId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if req.Status == "completed" && h.streaks != nil {
		h.streaks.RecordCompletion(claims.UserID, kind, time.Now().UTC())
	}
	response.JSON(c, http.StatusOK, gin.H{"status": req.Status}, nil)
}

// DeleteTimeline godoc
// @Summary Delete a saved timeline version
// @Tags Planner
// @Produce json
// @Param id path string true "Timeline ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /planner/timelines/{id} [delete]
func (h *PlannerHandler) DeleteTimeline(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.planner.DeleteTimeline(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Streaks godoc
// @Summary List habit streaks for the current user
// @Tags Planner
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /planner/streaks [get]
func (h *PlannerHandler) Streaks(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	streaks, err := h.streaks.List(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, streaks, nil)
}
