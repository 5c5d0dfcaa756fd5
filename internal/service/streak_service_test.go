package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dayflow-app/dayflow-api/internal/models"
)

type streakRepoStub struct {
	items map[string]*models.HabitStreak
}

func (s *streakRepoStub) key(userID, habit string) string { return userID + ":" + habit }

func (s *streakRepoStub) GetByUserHabit(ctx context.Context, userID, habit string) (*models.HabitStreak, error) {
	if streak, ok := s.items[s.key(userID, habit)]; ok {
		copied := *streak
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *streakRepoStub) ListByUser(ctx context.Context, userID string) ([]models.HabitStreak, error) {
	var out []models.HabitStreak
	for _, streak := range s.items {
		if streak.UserID == userID {
			out = append(out, *streak)
		}
	}
	return out, nil
}

func (s *streakRepoStub) Upsert(ctx context.Context, streak *models.HabitStreak) error {
	if s.items == nil {
		s.items = make(map[string]*models.HabitStreak)
	}
	copied := *streak
	s.items[s.key(streak.UserID, streak.Habit)] = &copied
	return nil
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	date, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return date
}

func TestStreakApplyConsecutiveDays(t *testing.T) {
	repo := &streakRepoStub{}
	service := NewStreakService(repo, zap.NewNop(), 1)

	require.NoError(t, service.apply(context.Background(), streakUpdate{UserID: "user-1", Habit: "workout", Date: day(t, "2025-03-10")}))
	require.NoError(t, service.apply(context.Background(), streakUpdate{UserID: "user-1", Habit: "workout", Date: day(t, "2025-03-11")}))
	require.NoError(t, service.apply(context.Background(), streakUpdate{UserID: "user-1", Habit: "workout", Date: day(t, "2025-03-12")}))

	streak, err := repo.GetByUserHabit(context.Background(), "user-1", "workout")
	require.NoError(t, err)
	assert.Equal(t, 3, streak.Current)
	assert.Equal(t, 3, streak.Longest)
}

func TestStreakApplyGapResets(t *testing.T) {
	repo := &streakRepoStub{}
	service := NewStreakService(repo, zap.NewNop(), 1)

	require.NoError(t, service.apply(context.Background(), streakUpdate{UserID: "user-1", Habit: "workout", Date: day(t, "2025-03-10")}))
	require.NoError(t, service.apply(context.Background(), streakUpdate{UserID: "user-1", Habit: "workout", Date: day(t, "2025-03-11")}))
	require.NoError(t, service.apply(context.Background(), streakUpdate{UserID: "user-1", Habit: "workout", Date: day(t, "2025-03-14")}))

	streak, err := repo.GetByUserHabit(context.Background(), "user-1", "workout")
	require.NoError(t, err)
	assert.Equal(t, 1, streak.Current)
	assert.Equal(t, 2, streak.Longest, "longest streak survives the reset")
}

func TestStreakApplySameDayIdempotent(t *testing.T) {
	repo := &streakRepoStub{}
	service := NewStreakService(repo, zap.NewNop(), 1)

	require.NoError(t, service.apply(context.Background(), streakUpdate{UserID: "user-1", Habit: "meals", Date: day(t, "2025-03-10")}))
	require.NoError(t, service.apply(context.Background(), streakUpdate{UserID: "user-1", Habit: "meals", Date: day(t, "2025-03-10")}))

	streak, err := repo.GetByUserHabit(context.Background(), "user-1", "meals")
	require.NoError(t, err)
	assert.Equal(t, 1, streak.Current)
}

func TestStreakRecordCompletionIgnoresUnknownKinds(t *testing.T) {
	assert.Equal(t, "workout", habitForKind("workout"))
	assert.Equal(t, "meals", habitForKind("meal_eating"))
	assert.Empty(t, habitForKind("snack"))
	assert.Empty(t, habitForKind("calendar_event"))
}
