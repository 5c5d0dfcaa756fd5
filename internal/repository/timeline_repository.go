package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/dayflow-app/dayflow-api/internal/models"
)

// TimelineRepository persists versioned day timelines and their blocks.
type TimelineRepository struct {
	db *sqlx.DB
}

// NewTimelineRepository constructs the repository.
func NewTimelineRepository(db *sqlx.DB) *TimelineRepository {
	return &TimelineRepository{db: db}
}

func (r *TimelineRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// CreateVersioned inserts a timeline assigning the next version for the user-date tuple.
func (r *TimelineRepository) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, timeline *models.DayTimeline) error {
	if timeline == nil {
		return fmt.Errorf("timeline payload is nil")
	}
	if timeline.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	if timeline.ID == "" {
		timeline.ID = uuid.NewString()
	}
	if timeline.Status == "" {
		timeline.Status = models.DayTimelineStatusDraft
	}
	if len(timeline.Meta) == 0 {
		timeline.Meta = types.JSONText(`{}`)
	}
	now := time.Now().UTC()
	if timeline.CreatedAt.IsZero() {
		timeline.CreatedAt = now
	}
	timeline.UpdatedAt = now

	target := r.exec(exec)

	const nextVersionQuery = `SELECT COALESCE(MAX(version), 0) + 1 FROM day_timelines WHERE user_id = $1 AND date = $2`
	if err := sqlx.GetContext(ctx, target, &timeline.Version, nextVersionQuery, timeline.UserID, timeline.Date); err != nil {
		return fmt.Errorf("compute next timeline version: %w", err)
	}

	const insertQuery = `
INSERT INTO day_timelines (id, user_id, date, version, status, meta, created_at, updated_at)
VALUES (:id, :user_id, :date, :version, :status, :meta, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, target, insertQuery, timeline); err != nil {
		return fmt.Errorf("insert day timeline: %w", err)
	}
	return nil
}

// FindLatestByUserDate returns the newest timeline for a user and date,
// preferring the SAVED version over drafts and superseded versions.
func (r *TimelineRepository) FindLatestByUserDate(ctx context.Context, userID string, date time.Time) (*models.DayTimeline, error) {
	const query = `SELECT id, user_id, date, version, status, meta, created_at, updated_at
FROM day_timelines WHERE user_id = $1 AND date = $2
ORDER BY (status = 'SAVED') DESC, version DESC LIMIT 1`
	var timeline models.DayTimeline
	if err := r.db.GetContext(ctx, &timeline, query, userID, date); err != nil {
		return nil, err
	}
	return &timeline, nil
}

// ListByUserRange returns the latest timeline per date within [from, to].
func (r *TimelineRepository) ListByUserRange(ctx context.Context, userID string, from, to time.Time) ([]models.DayTimeline, error) {
	const query = `SELECT DISTINCT ON (date) id, user_id, date, version, status, meta, created_at, updated_at
FROM day_timelines WHERE user_id = $1 AND date BETWEEN $2 AND $3
ORDER BY date ASC, (status = 'SAVED') DESC, version DESC`
	var timelines []models.DayTimeline
	if err := r.db.SelectContext(ctx, &timelines, query, userID, from, to); err != nil {
		return nil, fmt.Errorf("list day timelines: %w", err)
	}
	return timelines, nil
}

// FindByID loads a timeline by identifier.
func (r *TimelineRepository) FindByID(ctx context.Context, id string) (*models.DayTimeline, error) {
	const query = `SELECT id, user_id, date, version, status, meta, created_at, updated_at FROM day_timelines WHERE id = $1`
	var timeline models.DayTimeline
	if err := r.db.GetContext(ctx, &timeline, query, id); err != nil {
		return nil, err
	}
	return &timeline, nil
}

// UpdateStatus updates the status (and optionally meta) of a timeline.
func (r *TimelineRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.DayTimelineStatus, meta types.JSONText) error {
	target := r.exec(exec)
	now := time.Now().UTC()

	var (
		query string
		args  []interface{}
	)
	if len(meta) > 0 {
		query = `UPDATE day_timelines SET status = $1, meta = $2, updated_at = $3 WHERE id = $4`
		args = []interface{}{status, meta, now, id}
	} else {
		query = `UPDATE day_timelines SET status = $1, updated_at = $2 WHERE id = $3`
		args = []interface{}{status, now, id}
	}
	result, err := target.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update timeline status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("timeline status rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpsertBlocks inserts or updates the blocks belonging to a timeline.
func (r *TimelineRepository) UpsertBlocks(ctx context.Context, exec sqlx.ExtContext, blocks []models.TimelineBlock) error {
	if len(blocks) == 0 {
		return nil
	}
	target := r.exec(exec)

	const query = `
INSERT INTO timeline_blocks (id, timeline_id, block_id, kind, title, start_time, end_time, duration, priority, flexibility, all_day, status, position)
VALUES (:id, :timeline_id, :block_id, :kind, :title, :start_time, :end_time, :duration, :priority, :flexibility, :all_day, :status, :position)
ON CONFLICT (timeline_id, block_id) DO UPDATE
SET kind = EXCLUDED.kind,
    title = EXCLUDED.title,
    start_time = EXCLUDED.start_time,
    end_time = EXCLUDED.end_time,
    duration = EXCLUDED.duration,
    priority = EXCLUDED.priority,
    flexibility = EXCLUDED.flexibility,
    all_day = EXCLUDED.all_day,
    status = EXCLUDED.status,
    position = EXCLUDED.position`

	for i := range blocks {
		block := &blocks[i]
		if block.ID == "" {
			block.ID = uuid.NewString()
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, block); err != nil {
			return fmt.Errorf("upsert timeline block: %w", err)
		}
	}
	return nil
}

// ListBlocks returns the blocks of a timeline ordered by position.
func (r *TimelineRepository) ListBlocks(ctx context.Context, timelineID string) ([]models.TimelineBlock, error) {
	const query = `SELECT id, timeline_id, block_id, kind, title, start_time, end_time, duration, priority, flexibility, all_day, status, position
FROM timeline_blocks WHERE timeline_id = $1 ORDER BY position ASC`
	var blocks []models.TimelineBlock
	if err := r.db.SelectContext(ctx, &blocks, query, timelineID); err != nil {
		return nil, fmt.Errorf("list timeline blocks: %w", err)
	}
	return blocks, nil
}

// UpdateBlockStatus marks a block done or skipped for habit tracking.
func (r *TimelineRepository) UpdateBlockStatus(ctx context.Context, timelineID, blockID, status string) error {
	const query = `UPDATE timeline_blocks SET status = $3 WHERE timeline_id = $1 AND block_id = $2`
	result, err := r.db.ExecContext(ctx, query, timelineID, blockID, status)
	if err != nil {
		return fmt.Errorf("update block status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("block status rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a timeline version (blocks cascade at the database level).
func (r *TimelineRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM day_timelines WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete day timeline: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("day timeline rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
