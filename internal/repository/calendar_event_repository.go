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

// CalendarEventRepository persists user calendar commitments.
type CalendarEventRepository struct {
	db *sqlx.DB
}

// NewCalendarEventRepository constructs the repository.
func NewCalendarEventRepository(db *sqlx.DB) *CalendarEventRepository {
	return &CalendarEventRepository{db: db}
}

// ListByUserDate returns events for a user on a date ordered by start time.
func (r *CalendarEventRepository) ListByUserDate(ctx context.Context, userID string, date time.Time) ([]models.CalendarEvent, error) {
	const query = `SELECT id, user_id, title, date, start_time, end_time, all_day, source, created_at, updated_at
FROM calendar_events WHERE user_id = $1 AND date = $2 ORDER BY start_time ASC, id ASC`
	var events []models.CalendarEvent
	if err := r.db.SelectContext(ctx, &events, query, userID, date); err != nil {
		return nil, fmt.Errorf("list calendar events: %w", err)
	}
	return events, nil
}

// Create inserts a calendar event.
func (r *CalendarEventRepository) Create(ctx context.Context, event *models.CalendarEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now

	const query = `INSERT INTO calendar_events (id, user_id, title, date, start_time, end_time, all_day, source, created_at, updated_at)
VALUES (:id, :user_id, :title, :date, :start_time, :end_time, :all_day, :source, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create calendar event: %w", err)
	}
	return nil
}

// Update updates the mutable fields of an event owned by the user.
func (r *CalendarEventRepository) Update(ctx context.Context, event *models.CalendarEvent) error {
	event.UpdatedAt = time.Now().UTC()
	const query = `UPDATE calendar_events
SET title = :title, date = :date, start_time = :start_time, end_time = :end_time, all_day = :all_day, updated_at = :updated_at
WHERE id = :id AND user_id = :user_id`
	result, err := r.db.NamedExecContext(ctx, query, event)
	if err != nil {
		return fmt.Errorf("update calendar event: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("calendar event rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an event owned by the user.
func (r *CalendarEventRepository) Delete(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM calendar_events WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete calendar event: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("calendar event rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
