package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naufalhakm/timetable-api/internal/models"
)

func TestPreferenceRepositoryListTeacherPreferences(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPreferenceRepository(db)

	now := time.Now()
	start := "08:00"
	end := "12:00"
	rows := sqlmock.NewRows([]string{
		"id", "teacher_id", "restricted_days", "allowed_start", "allowed_end", "created_at", "updated_at",
	}).AddRow(1, 10, []byte(`["Friday"]`), start, end, now, now)
	mock.ExpectQuery("SELECT id, teacher_id, restricted_days").WillReturnRows(rows)

	prefs, err := repo.ListTeacherPreferences(context.Background())
	require.NoError(t, err)
	require.Len(t, prefs, 1)
	assert.Equal(t, int64(10), prefs[0].TeacherID)
	assert.JSONEq(t, `["Friday"]`, string(prefs[0].RestrictedDays))
	require.NotNil(t, prefs[0].AllowedStart)
	assert.Equal(t, "08:00", *prefs[0].AllowedStart)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreferenceRepositoryUpsertTeacherPreference(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPreferenceRepository(db)

	start := "09:00"
	end := "15:00"
	pref := &models.TeacherSchedulingPreference{
		TeacherID:      10,
		RestrictedDays: types.JSONText(`["Monday","Friday"]`),
		AllowedStart:   &start,
		AllowedEnd:     &end,
	}

	mock.ExpectExec("INSERT INTO teacher_scheduling_preferences").
		WithArgs(pref.TeacherID, pref.RestrictedDays, pref.AllowedStart, pref.AllowedEnd).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpsertTeacherPreference(context.Background(), pref))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreferenceRepositoryGetProgramPreferenceEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPreferenceRepository(db)

	mock.ExpectQuery("SELECT id, restricted_days, window_start").
		WillReturnRows(sqlmock.NewRows([]string{"id", "restricted_days", "window_start", "window_end", "created_at"}))

	pref, err := repo.GetProgramPreference(context.Background())
	require.NoError(t, err)
	assert.Nil(t, pref)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreferenceRepositorySetProgramPreference(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPreferenceRepository(db)

	pref := &models.ProgramSchedulingPreference{
		RestrictedDays: types.JSONText(`["Saturday"]`),
	}

	mock.ExpectQuery("INSERT INTO program_scheduling_preferences").
		WithArgs(pref.RestrictedDays, pref.WindowStart, pref.WindowEnd).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))

	require.NoError(t, repo.SetProgramPreference(context.Background(), pref))
	assert.Equal(t, int64(4), pref.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
