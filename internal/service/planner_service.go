package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/dayflow-app/dayflow-api/internal/dto"
	"github.com/dayflow-app/dayflow-api/internal/models"
	"github.com/dayflow-app/dayflow-api/internal/scheduler"
	appErrors "github.com/dayflow-app/dayflow-api/pkg/errors"
)

type timelineRepository interface {
	CreateVersioned(ctx context.Context, exec sqlx.ExtContext, timeline *models.DayTimeline) error
	FindLatestByUserDate(ctx context.Context, userID string, date time.Time) (*models.DayTimeline, error)
	ListByUserRange(ctx context.Context, userID string, from, to time.Time) ([]models.DayTimeline, error)
	FindByID(ctx context.Context, id string) (*models.DayTimeline, error)
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.DayTimelineStatus, meta types.JSONText) error
	UpsertBlocks(ctx context.Context, exec sqlx.ExtContext, blocks []models.TimelineBlock) error
	ListBlocks(ctx context.Context, timelineID string) ([]models.TimelineBlock, error)
	UpdateBlockStatus(ctx context.Context, timelineID, blockID, status string) error
	Delete(ctx context.Context, id string) error
}

type calendarEventFetcher interface {
	ListByUserDate(ctx context.Context, userID string, date time.Time) ([]models.CalendarEvent, error)
}

type mealPlanFetcher interface {
	ListMealsByUserDate(ctx context.Context, userID string, date time.Time) ([]models.MealPlanEntry, error)
	GetWorkoutByUserDate(ctx context.Context, userID string, date time.Time) (*models.WorkoutPlan, error)
}

type preferenceFetcher interface {
	GetByUser(ctx context.Context, userID string) (*models.UserPreference, error)
}

type plannerMetrics interface {
	PlanGenerated(success bool, conflicts, warnings int)
	PlanSaved()
	ObserveDBQuery(label string, duration time.Duration)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// PlannerService builds day-plan previews and persists saved timelines.
type PlannerService struct {
	timelines timelineRepository
	events    calendarEventFetcher
	meals     mealPlanFetcher
	prefs     preferenceFetcher
	cache     *CacheService
	metrics   plannerMetrics
	tx        txProvider
	validator *validator.Validate
	logger    *zap.Logger
	store     *previewStore
	cacheTTL  time.Duration
}

// PlannerConfig governs preview and cache lifetimes.
type PlannerConfig struct {
	PreviewTTL time.Duration
	CacheTTL   time.Duration
}

// NewPlannerService wires planner dependencies.
func NewPlannerService(
	timelines timelineRepository,
	events calendarEventFetcher,
	meals mealPlanFetcher,
	prefs preferenceFetcher,
	cache *CacheService,
	metrics plannerMetrics,
	tx txProvider,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg PlannerConfig,
) *PlannerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PreviewTTL <= 0 {
		cfg.PreviewTTL = 30 * time.Minute
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &PlannerService{
		timelines: timelines,
		events:    events,
		meals:     meals,
		prefs:     prefs,
		cache:     cache,
		metrics:   metrics,
		tx:        tx,
		validator: validate,
		logger:    logger,
		store:     newPreviewStore(cfg.PreviewTTL),
		cacheTTL:  cfg.CacheTTL,
	}
}

// Generate assembles the engine input for the user's day and returns a preview.
func (s *PlannerService) Generate(ctx context.Context, userID string, req dto.GenerateDayPlanRequest) (*dto.GenerateDayPlanResponse, error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing user identity")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid day plan payload")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be formatted as YYYY-MM-DD")
	}

	input, err := s.assembleRequest(ctx, userID, date, req)
	if err != nil {
		return nil, err
	}

	result := scheduler.BuildDayPlan(input)
	if s.metrics != nil {
		s.metrics.PlanGenerated(result.Success, len(result.Conflicts), len(result.Warnings))
	}

	preview := planPreview{
		PreviewID:   uuid.NewString(),
		UserID:      userID,
		Date:        date,
		Result:      result,
		RequestedAt: time.Now().UTC(),
	}
	s.store.Save(preview)

	return &dto.GenerateDayPlanResponse{
		PreviewID:   preview.PreviewID,
		Success:     result.Success,
		Timeline:    result.Timeline,
		Conflicts:   result.Conflicts,
		Warnings:    result.Warnings,
		Suggestions: result.Suggestions,
	}, nil
}

// Save persists a previewed plan as the next timeline version for the day.
func (s *PlannerService) Save(ctx context.Context, userID string, req dto.SaveDayPlanRequest) (string, error) {
	if err := s.validator.Struct(req); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save plan payload")
	}
	preview, ok := s.store.Get(req.PreviewID)
	if !ok {
		return "", appErrors.Clone(appErrors.ErrPlanExpired, "plan preview not found or expired")
	}
	if preview.UserID != userID {
		return "", appErrors.Clone(appErrors.ErrForbidden, "preview belongs to another user")
	}
	if len(preview.Result.Conflicts) > 0 {
		return "", appErrors.Clone(appErrors.ErrConflict, "plan contains unresolved conflicts")
	}
	if s.tx == nil {
		return "", appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	txStart := time.Now()
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	metaPayload := map[string]any{
		"warnings":       preview.Result.Warnings,
		"scheduledMins":  preview.Result.Timeline.TotalScheduledMinutes,
		"freeMins":       preview.Result.Timeline.TotalFreeMinutes,
		"completionRate": preview.Result.Timeline.CompletionRate,
		"generatedAt":    preview.RequestedAt,
	}
	metaBytes, marshalErr := json.Marshal(metaPayload)
	if marshalErr != nil {
		err = appErrors.Wrap(marshalErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode timeline metadata")
		return "", err
	}

	// The new version replaces whatever was served for this date before.
	prior, findErr := s.timelines.FindLatestByUserDate(ctx, userID, preview.Date)
	if findErr != nil && !errors.Is(findErr, sql.ErrNoRows) {
		err = appErrors.Wrap(findErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load prior timeline")
		return "", err
	}
	if prior != nil && prior.Status == models.DayTimelineStatusSaved {
		if err = s.timelines.UpdateStatus(ctx, tx, prior.ID, models.DayTimelineStatusSuperseded, nil); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to supersede prior timeline")
			return "", err
		}
	}

	record := &models.DayTimeline{
		UserID: userID,
		Date:   preview.Date,
		Status: models.DayTimelineStatusSaved,
		Meta:   types.JSONText(metaBytes),
	}
	if err = s.timelines.CreateVersioned(ctx, tx, record); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create day timeline")
		return "", err
	}

	blocks := make([]models.TimelineBlock, 0, len(preview.Result.Timeline.Blocks))
	for i, block := range preview.Result.Timeline.Blocks {
		blocks = append(blocks, models.TimelineBlock{
			TimelineID:  record.ID,
			BlockID:     block.ID,
			Kind:        string(block.Kind),
			Title:       block.Title,
			StartTime:   block.Start,
			EndTime:     block.End,
			Duration:    block.Duration,
			Priority:    int(block.Priority),
			Flexibility: block.Flexibility,
			AllDay:      block.AllDay,
			Status:      blockStatusOrPending(block.Status),
			Position:    i,
		})
	}
	if err = s.timelines.UpsertBlocks(ctx, tx, blocks); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timeline blocks")
		return "", err
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit timeline transaction")
		return "", err
	}

	s.store.Delete(req.PreviewID)
	if s.metrics != nil {
		s.metrics.PlanSaved()
		s.metrics.ObserveDBQuery("save_timeline", time.Since(txStart))
	}
	s.invalidateDayCache(ctx, userID, preview.Date)
	return record.ID, nil
}

// DayView is a stored timeline joined with its blocks.
type DayView struct {
	Timeline models.DayTimeline     `json:"timeline"`
	Blocks   []models.TimelineBlock `json:"blocks"`
}

// GetDay returns the latest saved timeline for a date, cache-aside.
func (s *PlannerService) GetDay(ctx context.Context, userID string, date time.Time) (*DayView, error) {
	cacheKey := s.dayCacheKey(userID, date)
	var cached DayView
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	timeline, err := s.timelines.FindLatestByUserDate(ctx, userID, date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no timeline saved for this date")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load day timeline")
	}
	blocks, err := s.timelines.ListBlocks(ctx, timeline.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timeline blocks")
	}

	view := &DayView{Timeline: *timeline, Blocks: blocks}
	_ = s.cache.Set(ctx, cacheKey, view, s.cacheTTL)
	return view, nil
}

// ListRange returns the latest timeline per date within the query range.
func (s *PlannerService) ListRange(ctx context.Context, userID string, query dto.TimelineQuery) ([]models.DayTimeline, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timeline query")
	}
	from, err := time.Parse("2006-01-02", query.From)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "from must be formatted as YYYY-MM-DD")
	}
	to, err := time.Parse("2006-01-02", query.To)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to must be formatted as YYYY-MM-DD")
	}
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to must not precede from")
	}
	list, err := s.timelines.ListByUserRange(ctx, userID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timelines")
	}
	return list, nil
}

// MarkBlock updates a block's completion status and returns the block kind so
// callers can feed habit tracking.
func (s *PlannerService) MarkBlock(ctx context.Context, userID, timelineID, blockID string, req dto.BlockStatusRequest) (string, error) {
	if err := s.validator.Struct(req); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid block status payload")
	}
	timeline, err := s.timelines.FindByID(ctx, timelineID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotFound, "timeline not found")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timeline")
	}
	if timeline.UserID != userID {
		return "", appErrors.Clone(appErrors.ErrForbidden, "timeline belongs to another user")
	}

	blocks, err := s.timelines.ListBlocks(ctx, timelineID)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timeline blocks")
	}
	kind := ""
	for _, block := range blocks {
		if block.BlockID == blockID {
			kind = block.Kind
			break
		}
	}
	if kind == "" {
		return "", appErrors.Clone(appErrors.ErrNotFound, "block not found in timeline")
	}

	if err := s.timelines.UpdateBlockStatus(ctx, timelineID, blockID, req.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotFound, "block not found in timeline")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update block status")
	}
	s.invalidateDayCache(ctx, userID, timeline.Date)
	return kind, nil
}

// DeleteTimeline removes one timeline version owned by the user.
func (s *PlannerService) DeleteTimeline(ctx context.Context, userID, timelineID string) error {
	timeline, err := s.timelines.FindByID(ctx, timelineID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timeline not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timeline")
	}
	if timeline.UserID != userID {
		return appErrors.Clone(appErrors.ErrForbidden, "timeline belongs to another user")
	}
	if err := s.timelines.Delete(ctx, timelineID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timeline not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timeline")
	}
	s.invalidateDayCache(ctx, userID, timeline.Date)
	return nil
}

func (s *PlannerService) assembleRequest(ctx context.Context, userID string, date time.Time, req dto.GenerateDayPlanRequest) (scheduler.Request, error) {
	var input scheduler.Request
	input.Date = date

	pref := models.DefaultPreference(userID)
	if s.prefs != nil {
		if stored, err := s.prefs.GetByUser(ctx, userID); err == nil {
			pref = *stored
		} else if !errors.Is(err, sql.ErrNoRows) {
			return input, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load preferences")
		}
	}
	var tags []string
	if len(pref.PriorityTags) > 0 {
		_ = json.Unmarshal(pref.PriorityTags, &tags)
	}
	input.Preferences = scheduler.Preferences{
		WakeTime:         pref.WakeTime,
		SleepTime:        pref.SleepTime,
		EnergyPeak:       pref.EnergyPeak,
		FlexibilityLevel: string(pref.FlexibilityLevel),
		CalendarSync:     pref.CalendarSync,
		PriorityTags:     tags,
	}

	input.SleepWindow = scheduler.Window{Start: pref.SleepTime, End: pref.WakeTime}
	if req.SleepStart != "" && req.SleepEnd != "" {
		input.SleepWindow = scheduler.Window{Start: req.SleepStart, End: req.SleepEnd}
	}

	if pref.EatingStart != nil && pref.EatingEnd != nil {
		input.EatingWindow = &scheduler.Window{Start: *pref.EatingStart, End: *pref.EatingEnd}
	}
	if req.EatingStart != "" && req.EatingEnd != "" {
		input.EatingWindow = &scheduler.Window{Start: req.EatingStart, End: req.EatingEnd}
	}

	if s.events != nil {
		stored, err := s.events.ListByUserDate(ctx, userID, date)
		if err != nil {
			return input, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load calendar events")
		}
		for _, event := range stored {
			input.CalendarEvents = append(input.CalendarEvents, scheduler.Block{
				ID:     event.ID,
				Title:  event.Title,
				Start:  event.StartTime,
				End:    event.EndTime,
				AllDay: event.AllDay,
			})
		}
	}
	for i, event := range req.ExtraEvents {
		input.CalendarEvents = append(input.CalendarEvents, scheduler.Block{
			ID:     fmt.Sprintf("inline-event-%d", i+1),
			Title:  event.Title,
			Start:  event.StartTime,
			End:    event.EndTime,
			AllDay: event.AllDay,
		})
	}

	if s.meals != nil {
		stored, err := s.meals.ListMealsByUserDate(ctx, userID, date)
		if err != nil {
			return input, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load meal plan")
		}
		for _, entry := range stored {
			input.Meals = append(input.Meals, scheduler.Block{
				ID:       entry.ID,
				Title:    entry.Name,
				Duration: entry.Duration,
			})
		}
	}
	for i, meal := range req.ExtraMeals {
		input.Meals = append(input.Meals, scheduler.Block{
			ID:       fmt.Sprintf("inline-meal-%d", i+1),
			Title:    meal.Name,
			Duration: meal.Duration,
		})
	}

	if !req.SkipWorkout {
		if req.Workout != nil {
			input.Workout = &scheduler.Block{
				ID:       "inline-workout",
				Kind:     scheduler.KindWorkout,
				Title:    workoutTitleOrDefault(req.Workout.Title),
				Duration: req.Workout.Duration,
			}
		} else if s.meals != nil {
			stored, err := s.meals.GetWorkoutByUserDate(ctx, userID, date)
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return input, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load workout plan")
			}
			if stored != nil {
				input.Workout = &scheduler.Block{
					ID:       stored.ID,
					Kind:     scheduler.KindWorkout,
					Title:    workoutTitleOrDefault(stored.Title),
					Duration: stored.Duration,
				}
			}
		}
	}

	if len(req.MealWindows) > 0 {
		windows := scheduler.DefaultMealWindows()
		for _, tweak := range req.MealWindows {
			slot := scheduler.MealSlot(tweak.Slot)
			window, ok := windows[slot]
			if !ok {
				continue
			}
			if tweak.Target != "" {
				window.Target = tweak.Target
			}
			if tweak.FlexStart != "" {
				window.FlexStart = tweak.FlexStart
			}
			if tweak.FlexEnd != "" {
				window.FlexEnd = tweak.FlexEnd
			}
			windows[slot] = window
		}
		input.MealWindows = windows
	}

	return input, nil
}

func (s *PlannerService) dayCacheKey(userID string, date time.Time) string {
	return fmt.Sprintf("planner:day:%s:%s", userID, date.Format("2006-01-02"))
}

func (s *PlannerService) invalidateDayCache(ctx context.Context, userID string, date time.Time) {
	_ = s.cache.Invalidate(ctx, s.dayCacheKey(userID, date))
}

func blockStatusOrPending(status string) string {
	if status == "" {
		return "pending"
	}
	return status
}

func workoutTitleOrDefault(title string) string {
	if title == "" {
		return "Workout"
	}
	return title
}

// --- Preview cache ---

type planPreview struct {
	PreviewID   string
	UserID      string
	Date        time.Time
	Result      scheduler.Result
	RequestedAt time.Time
}

type previewStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]planPreview
}

func newPreviewStore(ttl time.Duration) *previewStore {
	return &previewStore{
		ttl:   ttl,
		items: make(map[string]planPreview),
	}
}

func (s *previewStore) Save(preview planPreview) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[preview.PreviewID] = preview
}

func (s *previewStore) Get(id string) (planPreview, bool) {
	s.mu.RLock()
	preview, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return planPreview{}, false
	}
	if time.Since(preview.RequestedAt) > s.ttl {
		s.Delete(id)
		return planPreview{}, false
	}
	return preview, true
}

func (s *previewStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}
