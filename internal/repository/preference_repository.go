package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/naufalhakm/timetable-api/internal/models"
)

// PreferenceRepository manages teacher and program scheduling
// preferences.
type PreferenceRepository struct {
	db *sqlx.DB
}

// NewPreferenceRepository constructs a PreferenceRepository.
func NewPreferenceRepository(db *sqlx.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// ListTeacherPreferences returns every stored teacher preference.
func (r *PreferenceRepository) ListTeacherPreferences(ctx context.Context) ([]models.TeacherSchedulingPreference, error) {
	query := `SELECT id, teacher_id, restricted_days, allowed_start, allowed_end, created_at, updated_at
FROM teacher_scheduling_preferences ORDER BY teacher_id`
	var prefs []models.TeacherSchedulingPreference
	if err := r.db.SelectContext(ctx, &prefs, query); err != nil {
		return nil, fmt.Errorf("list teacher preferences: %w", err)
	}
	return prefs, nil
}

// UpsertTeacherPreference replaces the preference row of one teacher.
func (r *PreferenceRepository) UpsertTeacherPreference(ctx context.Context, pref *models.TeacherSchedulingPreference) error {
	query := `INSERT INTO teacher_scheduling_preferences (teacher_id, restricted_days, allowed_start, allowed_end, created_at, updated_at)
VALUES ($1, $2, $3, $4, NOW(), NOW())
ON CONFLICT (teacher_id) DO UPDATE SET
    restricted_days = EXCLUDED.restricted_days,
    allowed_start = EXCLUDED.allowed_start,
    allowed_end = EXCLUDED.allowed_end,
    updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query, pref.TeacherID, pref.RestrictedDays, pref.AllowedStart, pref.AllowedEnd); err != nil {
		return fmt.Errorf("upsert teacher preference: %w", err)
	}
	return nil
}

// GetProgramPreference returns the program-wide preference, or nil
// when none has been stored yet.
func (r *PreferenceRepository) GetProgramPreference(ctx context.Context) (*models.ProgramSchedulingPreference, error) {
	query := `SELECT id, restricted_days, window_start, window_end, created_at
FROM program_scheduling_preferences ORDER BY id DESC LIMIT 1`
	var pref models.ProgramSchedulingPreference
	if err := r.db.GetContext(ctx, &pref, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get program preference: %w", err)
	}
	return &pref, nil
}

// SetProgramPreference stores a new program-wide preference row. The
// newest row wins; history is kept for auditing.
func (r *PreferenceRepository) SetProgramPreference(ctx context.Context, pref *models.ProgramSchedulingPreference) error {
	query := `INSERT INTO program_scheduling_preferences (restricted_days, window_start, window_end, created_at)
VALUES ($1, $2, $3, NOW()) RETURNING id`
	if err := r.db.GetContext(ctx, &pref.ID, query, pref.RestrictedDays, pref.WindowStart, pref.WindowEnd); err != nil {
		return fmt.Errorf("set program preference: %w", err)
	}
	return nil
}
