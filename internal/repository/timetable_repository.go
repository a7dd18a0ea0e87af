package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/naufalhakm/timetable-api/internal/models"
)

// TimetableRepository persists optimization results: one versioned
// header row per run plus the full slot grid.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs a TimetableRepository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// Create stores the timetable and its slots in one transaction. The
// version is assigned here as one past the highest stored version, and
// the generated IDs are written back into the arguments.
func (r *TimetableRepository) Create(ctx context.Context, timetable *models.Timetable, slots []models.TimetableSlot) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin timetable tx: %w", err)
	}
	defer tx.Rollback()

	var version int
	if err := tx.GetContext(ctx, &version, "SELECT COALESCE(MAX(version), 0) + 1 FROM timetables"); err != nil {
		return fmt.Errorf("next timetable version: %w", err)
	}

	timetable.ID = uuid.NewString()
	timetable.Version = version
	timetable.CreatedAt = time.Now().UTC()

	insertHeader := `INSERT INTO timetables (id, run_id, version, status, fitness, generations, meta, created_at)
VALUES (:id, :run_id, :version, :status, :fitness, :generations, :meta, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insertHeader, timetable); err != nil {
		return fmt.Errorf("insert timetable: %w", err)
	}

	insertSlot := `INSERT INTO timetable_slots (id, timetable_id, slot_index, day, room, start_time, end_time,
    section_tag, course_id, course_name, teacher_id, teacher_name, class_group, semester, credits, delivery, status)
VALUES (:id, :timetable_id, :slot_index, :day, :room, :start_time, :end_time,
    :section_tag, :course_id, :course_name, :teacher_id, :teacher_name, :class_group, :semester, :credits, :delivery, :status)`
	for i := range slots {
		slots[i].ID = uuid.NewString()
		slots[i].TimetableID = timetable.ID
		if _, err := tx.NamedExecContext(ctx, insertSlot, &slots[i]); err != nil {
			return fmt.Errorf("insert timetable slot %d: %w", slots[i].SlotIndex, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit timetable tx: %w", err)
	}
	return nil
}

// GetByID returns the timetable header, or sql.ErrNoRows when absent.
func (r *TimetableRepository) GetByID(ctx context.Context, id string) (*models.Timetable, error) {
	var timetable models.Timetable
	query := "SELECT id, run_id, version, status, fitness, generations, meta, created_at FROM timetables WHERE id = $1"
	if err := r.db.GetContext(ctx, &timetable, query, id); err != nil {
		return nil, fmt.Errorf("get timetable: %w", err)
	}
	return &timetable, nil
}

// GetLatest returns the newest timetable header, or nil when nothing
// has been stored yet.
func (r *TimetableRepository) GetLatest(ctx context.Context) (*models.Timetable, error) {
	var timetable models.Timetable
	query := "SELECT id, run_id, version, status, fitness, generations, meta, created_at FROM timetables ORDER BY version DESC LIMIT 1"
	if err := r.db.GetContext(ctx, &timetable, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest timetable: %w", err)
	}
	return &timetable, nil
}

// ListVersions returns every stored timetable header, newest first.
func (r *TimetableRepository) ListVersions(ctx context.Context) ([]models.Timetable, error) {
	var timetables []models.Timetable
	query := "SELECT id, run_id, version, status, fitness, generations, meta, created_at FROM timetables ORDER BY version DESC"
	if err := r.db.SelectContext(ctx, &timetables, query); err != nil {
		return nil, fmt.Errorf("list timetables: %w", err)
	}
	return timetables, nil
}

// ListSlots returns every slot of one timetable in grid order.
func (r *TimetableRepository) ListSlots(ctx context.Context, timetableID string) ([]models.TimetableSlot, error) {
	var slots []models.TimetableSlot
	query := `SELECT id, timetable_id, slot_index, day, room, start_time, end_time,
       section_tag, course_id, course_name, teacher_id, teacher_name, class_group, semester, credits, delivery, status
FROM timetable_slots WHERE timetable_id = $1 ORDER BY slot_index`
	if err := r.db.SelectContext(ctx, &slots, query, timetableID); err != nil {
		return nil, fmt.Errorf("list timetable slots: %w", err)
	}
	return slots, nil
}

// UpdateStatus moves a timetable between DRAFT and PUBLISHED.
func (r *TimetableRepository) UpdateStatus(ctx context.Context, id string, status models.TimetableStatus) error {
	res, err := r.db.ExecContext(ctx, "UPDATE timetables SET status = $1 WHERE id = $2", status, id)
	if err != nil {
		return fmt.Errorf("update timetable status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update timetable status: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
