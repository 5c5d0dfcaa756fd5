package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dayflow-app/dayflow-api/internal/dto"
	"github.com/dayflow-app/dayflow-api/internal/models"
	appErrors "github.com/dayflow-app/dayflow-api/pkg/errors"
)

func TestPlannerServiceGenerateCleanDay(t *testing.T) {
	service := newPlannerServiceFixture(t, plannerFixtureConfig{})

	resp, err := service.Generate(context.Background(), "user-1", dto.GenerateDayPlanRequest{
		Date: "2025-03-12",
		ExtraMeals: []dto.PlannedMeal{
			{Name: "Breakfast", Duration: 30},
			{Name: "Lunch", Duration: 30},
			{Name: "Dinner", Duration: 30},
		},
		Workout: &dto.PlannedWorkout{Duration: 60},
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.PreviewID)
	assert.Empty(t, resp.Conflicts)
	assert.Equal(t, "2025-03-12", resp.Timeline.Date)
	assert.NotEmpty(t, resp.Timeline.Blocks)
}

func TestPlannerServiceGenerateUsesStoredInputs(t *testing.T) {
	date := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	service := newPlannerServiceFixture(t, plannerFixtureConfig{
		events: []models.CalendarEvent{
			{ID: "evt-1", UserID: "user-1", Date: date, Title: "Standup", StartTime: "09:00", EndTime: "09:30"},
		},
		meals: []models.MealPlanEntry{
			{ID: "meal-1", UserID: "user-1", Date: date, Name: "Lunch", Duration: 30},
		},
		workout: &models.WorkoutPlan{ID: "wo-1", UserID: "user-1", Date: date, Duration: 60},
	})

	resp, err := service.Generate(context.Background(), "user-1", dto.GenerateDayPlanRequest{Date: "2025-03-12"})
	require.NoError(t, err)
	require.True(t, resp.Success)

	ids := make(map[string]bool)
	for _, block := range resp.Timeline.Blocks {
		ids[block.ID] = true
	}
	assert.True(t, ids["evt-1"], "stored calendar event missing from timeline")
	assert.True(t, ids["meal-1"], "stored meal missing from timeline")
	assert.True(t, ids["wo-1"], "stored workout missing from timeline")
}

func TestPlannerServiceGenerateRejectsBadDate(t *testing.T) {
	service := newPlannerServiceFixture(t, plannerFixtureConfig{})

	_, err := service.Generate(context.Background(), "user-1", dto.GenerateDayPlanRequest{Date: "12-03-2025"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestPlannerServiceSaveRoundTrip(t *testing.T) {
	tx, mock := newPlannerTxMock(t)
	timelines := &timelineRepoStub{}
	service := newPlannerServiceFixture(t, plannerFixtureConfig{tx: tx, timelines: timelines})

	resp, err := service.Generate(context.Background(), "user-1", dto.GenerateDayPlanRequest{
		Date:       "2025-03-12",
		ExtraMeals: []dto.PlannedMeal{{Name: "Lunch", Duration: 30}},
	})
	require.NoError(t, err)
	require.True(t, resp.Success)

	mock.ExpectBegin()
	mock.ExpectCommit()

	id, err := service.Save(context.Background(), "user-1", dto.SaveDayPlanRequest{PreviewID: resp.PreviewID})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	require.Len(t, timelines.timelines, 1)
	assert.Equal(t, models.DayTimelineStatusSaved, timelines.timelines[0].Status)
	assert.NotEmpty(t, timelines.blocks[id])
	assert.NoError(t, mock.ExpectationsWereMet())

	// Saving the same preview twice must fail; the store is one-shot.
	_, err = service.Save(context.Background(), "user-1", dto.SaveDayPlanRequest{PreviewID: resp.PreviewID})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPlanExpired.Code, appErrors.FromError(err).Code)
}

func TestPlannerServiceSaveSupersedesPriorVersion(t *testing.T) {
	tx, mock := newPlannerTxMock(t)
	timelines := &timelineRepoStub{}
	service := newPlannerServiceFixture(t, plannerFixtureConfig{tx: tx, timelines: timelines})

	first, err := service.Generate(context.Background(), "user-1", dto.GenerateDayPlanRequest{Date: "2025-03-12"})
	require.NoError(t, err)
	mock.ExpectBegin()
	mock.ExpectCommit()
	firstID, err := service.Save(context.Background(), "user-1", dto.SaveDayPlanRequest{PreviewID: first.PreviewID})
	require.NoError(t, err)

	second, err := service.Generate(context.Background(), "user-1", dto.GenerateDayPlanRequest{Date: "2025-03-12"})
	require.NoError(t, err)
	mock.ExpectBegin()
	mock.ExpectCommit()
	secondID, err := service.Save(context.Background(), "user-1", dto.SaveDayPlanRequest{PreviewID: second.PreviewID})
	require.NoError(t, err)
	require.NotEqual(t, firstID, secondID)

	statuses := map[string]models.DayTimelineStatus{}
	for _, tl := range timelines.timelines {
		statuses[tl.ID] = tl.Status
	}
	assert.Equal(t, models.DayTimelineStatusSuperseded, statuses[firstID])
	assert.Equal(t, models.DayTimelineStatusSaved, statuses[secondID])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlannerServiceDeleteTimeline(t *testing.T) {
	date := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	timelines := &timelineRepoStub{
		timelines: []models.DayTimeline{{ID: "tl-1", UserID: "user-1", Date: date, Status: models.DayTimelineStatusSaved}},
	}
	service := newPlannerServiceFixture(t, plannerFixtureConfig{timelines: timelines})

	err := service.DeleteTimeline(context.Background(), "user-2", "tl-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	require.NoError(t, service.DeleteTimeline(context.Background(), "user-1", "tl-1"))
	assert.Empty(t, timelines.timelines)

	err = service.DeleteTimeline(context.Background(), "user-1", "tl-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestPlannerServiceSaveRejectsForeignPreview(t *testing.T) {
	service := newPlannerServiceFixture(t, plannerFixtureConfig{})

	resp, err := service.Generate(context.Background(), "user-1", dto.GenerateDayPlanRequest{Date: "2025-03-12"})
	require.NoError(t, err)

	_, err = service.Save(context.Background(), "user-2", dto.SaveDayPlanRequest{PreviewID: resp.PreviewID})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestPlannerServiceMarkBlockFeedsHabitKind(t *testing.T) {
	date := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	timelines := &timelineRepoStub{
		timelines: []models.DayTimeline{{ID: "tl-1", UserID: "user-1", Date: date, Status: models.DayTimelineStatusSaved}},
		blocks: map[string][]models.TimelineBlock{
			"tl-1": {{TimelineID: "tl-1", BlockID: "wo-1", Kind: "workout", Status: "pending"}},
		},
	}
	service := newPlannerServiceFixture(t, plannerFixtureConfig{timelines: timelines})

	kind, err := service.MarkBlock(context.Background(), "user-1", "tl-1", "wo-1", dto.BlockStatusRequest{Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, "workout", kind)
	assert.Equal(t, "completed", timelines.blocks["tl-1"][0].Status)

	_, err = service.MarkBlock(context.Background(), "user-2", "tl-1", "wo-1", dto.BlockStatusRequest{Status: "completed"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

// --- Fixtures ---

type plannerFixtureConfig struct {
	timelines *timelineRepoStub
	events    []models.CalendarEvent
	meals     []models.MealPlanEntry
	workout   *models.WorkoutPlan
	pref      *models.UserPreference
	tx        txProvider
}

func newPlannerServiceFixture(t *testing.T, cfg plannerFixtureConfig) *PlannerService {
	t.Helper()
	timelines := cfg.timelines
	if timelines == nil {
		timelines = &timelineRepoStub{}
	}
	tx := cfg.tx
	if tx == nil {
		tx = plannerNoopTx{}
	}
	return NewPlannerService(
		timelines,
		eventFetcherStub{items: cfg.events},
		mealFetcherStub{meals: cfg.meals, workout: cfg.workout},
		prefFetcherStub{pref: cfg.pref},
		nil,
		nil,
		tx,
		validator.New(),
		zap.NewNop(),
		PlannerConfig{PreviewTTL: time.Hour},
	)
}

type timelineRepoStub struct {
	timelines []models.DayTimeline
	blocks    map[string][]models.TimelineBlock
	nextID    int
}

func (s *timelineRepoStub) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, timeline *models.DayTimeline) error {
	s.nextID++
	timeline.ID = timelineStubID(s.nextID)
	timeline.Version = s.nextID
	s.timelines = append(s.timelines, *timeline)
	return nil
}

func (s *timelineRepoStub) FindLatestByUserDate(ctx context.Context, userID string, date time.Time) (*models.DayTimeline, error) {
	for i := len(s.timelines) - 1; i >= 0; i-- {
		if s.timelines[i].UserID == userID && s.timelines[i].Date.Equal(date) {
			return &s.timelines[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *timelineRepoStub) ListByUserRange(ctx context.Context, userID string, from, to time.Time) ([]models.DayTimeline, error) {
	var out []models.DayTimeline
	for _, tl := range s.timelines {
		if tl.UserID == userID && !tl.Date.Before(from) && !tl.Date.After(to) {
			out = append(out, tl)
		}
	}
	return out, nil
}

func (s *timelineRepoStub) FindByID(ctx context.Context, id string) (*models.DayTimeline, error) {
	for i := range s.timelines {
		if s.timelines[i].ID == id {
			return &s.timelines[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *timelineRepoStub) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.DayTimelineStatus, meta types.JSONText) error {
	for i := range s.timelines {
		if s.timelines[i].ID == id {
			s.timelines[i].Status = status
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *timelineRepoStub) UpsertBlocks(ctx context.Context, exec sqlx.ExtContext, blocks []models.TimelineBlock) error {
	if s.blocks == nil {
		s.blocks = make(map[string][]models.TimelineBlock)
	}
	for _, block := range blocks {
		s.blocks[block.TimelineID] = append(s.blocks[block.TimelineID], block)
	}
	return nil
}

func (s *timelineRepoStub) ListBlocks(ctx context.Context, timelineID string) ([]models.TimelineBlock, error) {
	return s.blocks[timelineID], nil
}

func (s *timelineRepoStub) Delete(ctx context.Context, id string) error {
	for i := range s.timelines {
		if s.timelines[i].ID == id {
			s.timelines = append(s.timelines[:i], s.timelines[i+1:]...)
			delete(s.blocks, id)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *timelineRepoStub) UpdateBlockStatus(ctx context.Context, timelineID, blockID, status string) error {
	for i := range s.blocks[timelineID] {
		if s.blocks[timelineID][i].BlockID == blockID {
			s.blocks[timelineID][i].Status = status
			return nil
		}
	}
	return sql.ErrNoRows
}

type eventFetcherStub struct {
	items []models.CalendarEvent
}

func (s eventFetcherStub) ListByUserDate(ctx context.Context, userID string, date time.Time) ([]models.CalendarEvent, error) {
	return s.items, nil
}

type mealFetcherStub struct {
	meals   []models.MealPlanEntry
	workout *models.WorkoutPlan
}

func (s mealFetcherStub) ListMealsByUserDate(ctx context.Context, userID string, date time.Time) ([]models.MealPlanEntry, error) {
	return s.meals, nil
}

func (s mealFetcherStub) GetWorkoutByUserDate(ctx context.Context, userID string, date time.Time) (*models.WorkoutPlan, error) {
	if s.workout == nil {
		return nil, sql.ErrNoRows
	}
	return s.workout, nil
}

type prefFetcherStub struct {
	pref *models.UserPreference
}

func (s prefFetcherStub) GetByUser(ctx context.Context, userID string) (*models.UserPreference, error) {
	if s.pref == nil {
		return nil, sql.ErrNoRows
	}
	return s.pref, nil
}

type plannerNoopTx struct{}

func (plannerNoopTx) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider unavailable")
}

type plannerTxMock struct {
	db *sqlx.DB
}

func newPlannerTxMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return &plannerTxMock{db: sqlxdb}, mock
}

func (p *plannerTxMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return p.db.BeginTxx(ctx, opts)
}

func timelineStubID(v int) string {
	return fmt.Sprintf("tl-%d", v)
}
