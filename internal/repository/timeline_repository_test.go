package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayflow-app/dayflow-api/internal/models"
)

func newTimelineRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTimelineRepositoryCreateVersioned(t *testing.T) {
	db, mock, cleanup := newTimelineRepoMock(t)
	defer cleanup()
	repo := NewTimelineRepository(db)

	date := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0) + 1 FROM day_timelines WHERE user_id = $1 AND date = $2")).
		WithArgs("user-1", date).
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(3))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO day_timelines")).
		WithArgs(sqlmock.AnyArg(), "user-1", date, 3, string(models.DayTimelineStatusDraft), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	payload := &models.DayTimeline{
		UserID: "user-1",
		Date:   date,
		Meta:   types.JSONText(`{"warnings":0}`),
	}
	err := repo.CreateVersioned(context.Background(), nil, payload)
	require.NoError(t, err)
	assert.Equal(t, 3, payload.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimelineRepositoryFindLatestByUserDate(t *testing.T) {
	db, mock, cleanup := newTimelineRepoMock(t)
	defer cleanup()
	repo := NewTimelineRepository(db)

	date := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "user_id", "date", "version", "status", "meta", "created_at", "updated_at"}).
		AddRow("tl-1", "user-1", date, 2, string(models.DayTimelineStatusSaved), types.JSONText(`{}`), time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM day_timelines WHERE user_id = $1 AND date = $2")).
		WithArgs("user-1", date).
		WillReturnRows(rows)

	timeline, err := repo.FindLatestByUserDate(context.Background(), "user-1", date)
	require.NoError(t, err)
	assert.Equal(t, 2, timeline.Version)
	assert.Equal(t, models.DayTimelineStatusSaved, timeline.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimelineRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newTimelineRepoMock(t)
	defer cleanup()
	repo := NewTimelineRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE day_timelines SET status = $1, meta = $2, updated_at = $3 WHERE id = $4")).
		WithArgs(string(models.DayTimelineStatusSaved), types.JSONText(`{"conflicts":0}`), sqlmock.AnyArg(), "tl-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.UpdateStatus(context.Background(), nil, "tl-1", models.DayTimelineStatusSaved, types.JSONText(`{"conflicts":0}`))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimelineRepositoryUpsertBlocks(t *testing.T) {
	db, mock, cleanup := newTimelineRepoMock(t)
	defer cleanup()
	repo := NewTimelineRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timeline_blocks")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	blocks := []models.TimelineBlock{{
		TimelineID: "tl-1",
		BlockID:    "meal-1",
		Kind:       "meal_eating",
		Title:      "Lunch",
		StartTime:  "12:00",
		EndTime:    "12:30",
		Duration:   30,
		Priority:   3,
		Position:   1,
	}}
	require.NoError(t, repo.UpsertBlocks(context.Background(), nil, blocks))
	assert.NotEmpty(t, blocks[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimelineRepositoryUpdateBlockStatusNotFound(t *testing.T) {
	db, mock, cleanup := newTimelineRepoMock(t)
	defer cleanup()
	repo := NewTimelineRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE timeline_blocks SET status = $3 WHERE timeline_id = $1 AND block_id = $2")).
		WithArgs("tl-1", "missing", "completed").
		WillReturnResult(sqlmock.NewResult(1, 0))

	err := repo.UpdateBlockStatus(context.Background(), "tl-1", "missing", "completed")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimelineRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newTimelineRepoMock(t)
	defer cleanup()
	repo := NewTimelineRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM day_timelines WHERE id = $1")).
		WithArgs("tl-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Delete(context.Background(), "tl-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
