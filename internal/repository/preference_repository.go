package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dayflow-app/dayflow-api/internal/models"
)

// PreferenceRepository persists per-user scheduling preferences.
type PreferenceRepository struct {
	db *sqlx.DB
}

// NewPreferenceRepository constructs the repository.
func NewPreferenceRepository(db *sqlx.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// GetByUser returns stored preferences for a user.
func (r *PreferenceRepository) GetByUser(ctx context.Context, userID string) (*models.UserPreference, error) {
	const query = `SELECT id, user_id, wake_time, sleep_time, energy_peak, flexibility_level, eating_start, eating_end, calendar_sync, priority_tags, created_at, updated_at
FROM user_preferences WHERE user_id = $1`
	var pref models.UserPreference
	if err := r.db.GetContext(ctx, &pref, query, userID); err != nil {
		return nil, err
	}
	return &pref, nil
}

// Upsert creates or updates a user's preferences.
func (r *PreferenceRepository) Upsert(ctx context.Context, pref *models.UserPreference) error {
	if pref.ID == "" {
		pref.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if pref.CreatedAt.IsZero() {
		pref.CreatedAt = now
	}
	pref.UpdatedAt = now
	if len(pref.PriorityTags) == 0 {
		pref.PriorityTags = []byte("[]")
	}

	const query = `INSERT INTO user_preferences (id, user_id, wake_time, sleep_time, energy_peak, flexibility_level, eating_start, eating_end, calendar_sync, priority_tags, created_at, updated_at)
		VALUES (:id, :user_id, :wake_time, :sleep_time, :energy_peak, :flexibility_level, :eating_start, :eating_end, :calendar_sync, :priority_tags, :created_at, :updated_at)
		ON CONFLICT (user_id) DO UPDATE
		SET wake_time = EXCLUDED.wake_time,
		    sleep_time = EXCLUDED.sleep_time,
		    energy_peak = EXCLUDED.energy_peak,
		    flexibility_level = EXCLUDED.flexibility_level,
		    eating_start = EXCLUDED.eating_start,
		    eating_end = EXCLUDED.eating_end,
		    calendar_sync = EXCLUDED.calendar_sync,
		    priority_tags = EXCLUDED.priority_tags,
		    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, pref); err != nil {
		return fmt.Errorf("upsert user preference: %w", err)
	}
	return nil
}
