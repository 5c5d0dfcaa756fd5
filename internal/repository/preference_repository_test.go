package repository

import (
	"context"
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

func newPreferenceRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestPreferenceRepositoryGetByUser(t *testing.T) {
	db, mock, cleanup := newPreferenceRepoMock(t)
	defer cleanup()
	repo := NewPreferenceRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "wake_time", "sleep_time", "energy_peak", "flexibility_level", "eating_start", "eating_end", "calendar_sync", "priority_tags", "created_at", "updated_at"}).
		AddRow("pref-1", "user-1", "06:30", "22:30", "morning", string(models.FlexibilityBalanced), nil, nil, false, types.JSONText(`[]`), time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM user_preferences WHERE user_id = $1")).
		WithArgs("user-1").
		WillReturnRows(rows)

	pref, err := repo.GetByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "06:30", pref.WakeTime)
	assert.Equal(t, models.FlexibilityBalanced, pref.FlexibilityLevel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreferenceRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newPreferenceRepoMock(t)
	defer cleanup()
	repo := NewPreferenceRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_preferences")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	pref := models.DefaultPreference("user-1")
	err := repo.Upsert(context.Background(), &pref)
	require.NoError(t, err)
	assert.NotEmpty(t, pref.ID)
	assert.False(t, pref.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
