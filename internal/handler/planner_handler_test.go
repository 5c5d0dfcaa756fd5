package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/dayflow-app/dayflow-api/internal/dto"
	internalmiddleware "github.com/dayflow-app/dayflow-api/internal/middleware"
	"github.com/dayflow-app/dayflow-api/internal/models"
	"github.com/dayflow-app/dayflow-api/internal/service"
)

type plannerMock struct {
	capturedUser string
	captured     dto.GenerateDayPlanRequest
	markedKind   string
	deletedID    string
	saveErr      error
}

func (m *plannerMock) Generate(ctx context.Context, userID string, req dto.GenerateDayPlanRequest) (*dto.GenerateDayPlanResponse, error) {
	m.capturedUser = userID
	m.captured = req
	return &dto.GenerateDayPlanResponse{PreviewID: "preview-1", Success: true}, nil
}

func (m *plannerMock) Save(ctx context.Context, userID string, req dto.SaveDayPlanRequest) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	return "tl-1", nil
}

func (m *plannerMock) GetDay(ctx context.Context, userID string, date time.Time) (*service.DayView, error) {
	return &service.DayView{Timeline: models.DayTimeline{ID: "tl-1", UserID: userID, Date: date}}, nil
}

func (m *plannerMock) ListRange(ctx context.Context, userID string, query dto.TimelineQuery) ([]models.DayTimeline, error) {
	return nil, nil
}

func (m *plannerMock) MarkBlock(ctx context.Context, userID, timelineID, blockID string, req dto.BlockStatusRequest) (string, error) {
	return m.markedKind, nil
}

func (m *plannerMock) DeleteTimeline(ctx context.Context, userID, timelineID string) error {
	m.capturedUser = userID
	m.deletedID = timelineID
	return nil
}

type streakTrackerMock struct {
	recordedKind string
	recordedUser string
}

func (m *streakTrackerMock) RecordCompletion(userID, blockKind string, date time.Time) {
	m.recordedUser = userID
	m.recordedKind = blockKind
}

func (m *streakTrackerMock) List(ctx context.Context, userID string) ([]models.HabitStreak, error) {
	return []models.HabitStreak{{UserID: userID, Habit: "workout", Current: 3, Longest: 5}}, nil
}

func authedContext(w *httptest.ResponseRecorder, req *http.Request) *gin.Context {
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleUser})
	return c
}

func TestPlannerGenerateSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &plannerMock{}
	handler := &PlannerHandler{planner: mockSvc}

	payload := []byte(`{"date":"2026-03-02","skipWorkout":true}`)
	req, _ := http.NewRequest(http.MethodPost, "/planner/generate", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c := authedContext(w, req)

	handler.Generate(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "user-1", mockSvc.capturedUser)
	require.Equal(t, "2026-03-02", mockSvc.captured.Date)
	require.True(t, mockSvc.captured.SkipWorkout)
}

func TestPlannerGenerateUnauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &PlannerHandler{planner: &plannerMock{}}

	req, _ := http.NewRequest(http.MethodPost, "/planner/generate", bytes.NewReader([]byte(`{"date":"2026-03-02"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPlannerGenerateValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &PlannerHandler{planner: &plannerMock{}}

	req, _ := http.NewRequest(http.MethodPost, "/planner/generate", bytes.NewReader([]byte(`{"date":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c := authedContext(w, req)

	handler.Generate(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlannerDayRejectsBadDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &PlannerHandler{planner: &plannerMock{}}

	req, _ := http.NewRequest(http.MethodGet, "/planner/days/yesterday", nil)
	w := httptest.NewRecorder()
	c := authedContext(w, req)
	c.Params = gin.Params{{Key: "date", Value: "yesterday"}}

	handler.Day(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlannerMarkBlockFeedsStreak(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &plannerMock{markedKind: "workout"}
	tracker := &streakTrackerMock{}
	handler := &PlannerHandler{planner: mockSvc, streaks: tracker}

	req, _ := http.NewRequest(http.MethodPatch, "/planner/timelines/tl-1/blocks/b-1", bytes.NewReader([]byte(`{"status":"completed"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c := authedContext(w, req)
	c.Params = gin.Params{{Key: "id", Value: "tl-1"}, {Key: "blockId", Value: "b-1"}}

	handler.MarkBlock(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "workout", tracker.recordedKind)
	require.Equal(t, "user-1", tracker.recordedUser)
}

func TestPlannerMarkBlockSkippedDoesNotFeedStreak(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &plannerMock{markedKind: "workout"}
	tracker := &streakTrackerMock{}
	handler := &PlannerHandler{planner: mockSvc, streaks: tracker}

	req, _ := http.NewRequest(http.MethodPatch, "/planner/timelines/tl-1/blocks/b-1", bytes.NewReader([]byte(`{"status":"skipped"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c := authedContext(w, req)
	c.Params = gin.Params{{Key: "id", Value: "tl-1"}, {Key: "blockId", Value: "b-1"}}

	handler.MarkBlock(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, tracker.recordedKind)
}

func TestPlannerDeleteTimeline(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &plannerMock{}
	handler := &PlannerHandler{planner: mockSvc}

	req, _ := http.NewRequest(http.MethodDelete, "/planner/timelines/tl-1", nil)
	w := httptest.NewRecorder()
	c := authedContext(w, req)
	c.Params = gin.Params{{Key: "id", Value: "tl-1"}}

	handler.DeleteTimeline(c)
	c.Writer.WriteHeaderNow()

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "tl-1", mockSvc.deletedID)
	require.Equal(t, "user-1", mockSvc.capturedUser)
}

func TestPlannerStreaksList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &PlannerHandler{planner: &plannerMock{}, streaks: &streakTrackerMock{}}

	req, _ := http.NewRequest(http.MethodGet, "/planner/streaks", nil)
	w := httptest.NewRecorder()
	c := authedContext(w, req)

	handler.Streaks(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "workout")
}
