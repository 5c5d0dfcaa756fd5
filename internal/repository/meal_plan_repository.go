package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dayflow-app/dayflow-api/internal/models"
)

// MealPlanRepository persists planned meals and workouts per user and day.
type MealPlanRepository struct {
	db *sqlx.DB
}

// NewMealPlanRepository constructs the repository.
func NewMealPlanRepository(db *sqlx.DB) *MealPlanRepository {
	return &MealPlanRepository{db: db}
}

// ListMealsByUserDate returns planned meals for a user on a date.
func (r *MealPlanRepository) ListMealsByUserDate(ctx context.Context, userID string, date time.Time) ([]models.MealPlanEntry, error) {
	const query = `SELECT id, user_id, date, name, duration, created_at, updated_at
FROM meal_plan_entries WHERE user_id = $1 AND date = $2 ORDER BY created_at ASC, id ASC`
	var entries []models.MealPlanEntry
	if err := r.db.SelectContext(ctx, &entries, query, userID, date); err != nil {
		return nil, fmt.Errorf("list meal plan entries: %w", err)
	}
	return entries, nil
}

// CreateMeal inserts a planned meal.
func (r *MealPlanRepository) CreateMeal(ctx context.Context, entry *models.MealPlanEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	const query = `INSERT INTO meal_plan_entries (id, user_id, date, name, duration, created_at, updated_at)
VALUES (:id, :user_id, :date, :name, :duration, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create meal plan entry: %w", err)
	}
	return nil
}

// DeleteMeal removes a planned meal owned by the user.
func (r *MealPlanRepository) DeleteMeal(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM meal_plan_entries WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete meal plan entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("meal plan entry rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetWorkoutByUserDate returns the planned workout for a user on a date.
func (r *MealPlanRepository) GetWorkoutByUserDate(ctx context.Context, userID string, date time.Time) (*models.WorkoutPlan, error) {
	const query = `SELECT id, user_id, date, title, duration, created_at, updated_at
FROM workout_plans WHERE user_id = $1 AND date = $2 LIMIT 1`
	var plan models.WorkoutPlan
	if err := r.db.GetContext(ctx, &plan, query, userID, date); err != nil {
		return nil, err
	}
	return &plan, nil
}

// UpsertWorkout creates or replaces the workout planned for a date.
func (r *MealPlanRepository) UpsertWorkout(ctx context.Context, plan *models.WorkoutPlan) error {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = now
	}
	plan.UpdatedAt = now

	const query = `INSERT INTO workout_plans (id, user_id, date, title, duration, created_at, updated_at)
		VALUES (:id, :user_id, :date, :title, :duration, :created_at, :updated_at)
		ON CONFLICT (user_id, date) DO UPDATE
		SET title = EXCLUDED.title,
		    duration = EXCLUDED.duration,
		    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, plan); err != nil {
		return fmt.Errorf("upsert workout plan: %w", err)
	}
	return nil
}

// DeleteWorkout removes the planned workout for a date.
func (r *MealPlanRepository) DeleteWorkout(ctx context.Context, userID string, date time.Time) error {
	const query = `DELETE FROM workout_plans WHERE user_id = $1 AND date = $2`
	if _, err := r.db.ExecContext(ctx, query, userID, date); err != nil {
		return fmt.Errorf("delete workout plan: %w", err)
	}
	return nil
}
