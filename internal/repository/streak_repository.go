package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dayflow-app/dayflow-api/internal/models"
)

// StreakRepository persists habit streak counters.
type StreakRepository struct {
	db *sqlx.DB
}

// NewStreakRepository constructs the repository.
func NewStreakRepository(db *sqlx.DB) *StreakRepository {
	return &StreakRepository{db: db}
}

// GetByUserHabit returns the streak row for one habit.
func (r *StreakRepository) GetByUserHabit(ctx context.Context, userID, habit string) (*models.HabitStreak, error) {
	const query = `SELECT id, user_id, habit, current, longest, last_date, created_at, updated_at
FROM habit_streaks WHERE user_id = $1 AND habit = $2`
	var streak models.HabitStreak
	if err := r.db.GetContext(ctx, &streak, query, userID, habit); err != nil {
		return nil, err
	}
	return &streak, nil
}

// ListByUser returns all streaks for a user.
func (r *StreakRepository) ListByUser(ctx context.Context, userID string) ([]models.HabitStreak, error) {
	const query = `SELECT id, user_id, habit, current, longest, last_date, created_at, updated_at
FROM habit_streaks WHERE user_id = $1 ORDER BY habit ASC`
	var streaks []models.HabitStreak
	if err := r.db.SelectContext(ctx, &streaks, query, userID); err != nil {
		return nil, fmt.Errorf("list habit streaks: %w", err)
	}
	return streaks, nil
}

// Upsert creates or updates a streak counter.
func (r *StreakRepository) Upsert(ctx context.Context, streak *models.HabitStreak) error {
	if streak.ID == "" {
		streak.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if streak.CreatedAt.IsZero() {
		streak.CreatedAt = now
	}
	streak.UpdatedAt = now

	const query = `INSERT INTO habit_streaks (id, user_id, habit, current, longest, last_date, created_at, updated_at)
		VALUES (:id, :user_id, :habit, :current, :longest, :last_date, :created_at, :updated_at)
		ON CONFLICT (user_id, habit) DO UPDATE
		SET current = EXCLUDED.current,
		    longest = EXCLUDED.longest,
		    last_date = EXCLUDED.last_date,
		    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, streak); err != nil {
		return fmt.Errorf("upsert habit streak: %w", err)
	}
	return nil
}
