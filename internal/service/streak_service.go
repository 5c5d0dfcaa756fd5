package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dayflow-app/dayflow-api/internal/models"
	"github.com/dayflow-app/dayflow-api/pkg/jobs"
	appErrors "github.com/dayflow-app/dayflow-api/pkg/errors"
)

type streakRepo interface {
	GetByUserHabit(ctx context.Context, userID, habit string) (*models.HabitStreak, error)
	ListByUser(ctx context.Context, userID string) ([]models.HabitStreak, error)
	Upsert(ctx context.Context, streak *models.HabitStreak) error
}

// streakUpdate is the payload carried through the background queue.
type streakUpdate struct {
	UserID string
	Habit  string
	Date   time.Time
}

// StreakService keeps per-habit streak counters. Completion events are
// processed asynchronously so marking a block never waits on the counters.
type StreakService struct {
	repo   streakRepo
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewStreakService builds the service and its background queue.
func NewStreakService(repo streakRepo, logger *zap.Logger, workers int) *StreakService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &StreakService{repo: repo, logger: logger}
	s.queue = jobs.NewQueue("streak-updates", s.handleJob, jobs.QueueConfig{
		Workers: workers,
		Logger:  logger,
	})
	return s
}

// Start launches the background workers.
func (s *StreakService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the background workers.
func (s *StreakService) Stop() {
	s.queue.Stop()
}

// List returns all streaks for a user.
func (s *StreakService) List(ctx context.Context, userID string) ([]models.HabitStreak, error) {
	streaks, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list streaks")
	}
	return streaks, nil
}

// RecordCompletion enqueues a habit completion for the given day. The habit
// is derived from the completed block's kind; unknown kinds are ignored.
func (s *StreakService) RecordCompletion(userID, blockKind string, date time.Time) {
	habit := habitForKind(blockKind)
	if habit == "" {
		return
	}
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    "streak-update",
		Payload: streakUpdate{UserID: userID, Habit: habit, Date: date},
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue streak update", zap.Error(err))
	}
}

func (s *StreakService) handleJob(ctx context.Context, job jobs.Job) error {
	update, ok := job.Payload.(streakUpdate)
	if !ok {
		s.logger.Warn("unexpected streak job payload", zap.String("job_id", job.ID))
		return nil
	}
	return s.apply(ctx, update)
}

// apply advances the streak: consecutive days extend it, gaps reset it, and
// repeated completions on the same day are idempotent.
func (s *StreakService) apply(ctx context.Context, update streakUpdate) error {
	day := update.Date.Truncate(24 * time.Hour)

	streak, err := s.repo.GetByUserHabit(ctx, update.UserID, update.Habit)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		streak = &models.HabitStreak{UserID: update.UserID, Habit: update.Habit}
	}

	switch {
	case streak.LastDate.Equal(day):
		return nil
	case streak.LastDate.Equal(day.AddDate(0, 0, -1)):
		streak.Current++
	default:
		streak.Current = 1
	}
	if streak.Current > streak.Longest {
		streak.Longest = streak.Current
	}
	streak.LastDate = day

	return s.repo.Upsert(ctx, streak)
}

func habitForKind(kind string) string {
	switch kind {
	case "workout":
		return "workout"
	case "meal_eating":
		return "meals"
	default:
		return ""
	}
}
