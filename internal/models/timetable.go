package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// TimetableStatus represents lifecycle phases for stored timetables.
type TimetableStatus string

const (
	TimetableStatusDraft     TimetableStatus = "DRAFT"
	TimetableStatusPublished TimetableStatus = "PUBLISHED"
)

// Timetable is a persisted optimization result: one versioned header
// row plus one TimetableSlot per grid cell.
type Timetable struct {
	ID          string          `db:"id" json:"id"`
	RunID       string          `db:"run_id" json:"run_id"`
	Version     int             `db:"version" json:"version"`
	Status      TimetableStatus `db:"status" json:"status"`
	Fitness     float64         `db:"fitness" json:"fitness"`
	Generations int             `db:"generations" json:"generations"`
	Meta        types.JSONText  `db:"meta" json:"meta"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// TimetableSlot is one stored grid cell. Course fields are null for
// empty cells and set together for occupied ones. Status carries the
// conflict marker from the final evaluation pass ("red" for hard
// violations, "yellow" for preference violations, empty otherwise).
type TimetableSlot struct {
	ID          string  `db:"id" json:"id"`
	TimetableID string  `db:"timetable_id" json:"timetable_id"`
	SlotIndex   int     `db:"slot_index" json:"slot_index"`
	Day         string  `db:"day" json:"day"`
	Room        string  `db:"room" json:"room"`
	StartTime   string  `db:"start_time" json:"start_time"`
	EndTime     string  `db:"end_time" json:"end_time"`
	SectionTag  *int    `db:"section_tag" json:"section_tag,omitempty"`
	CourseID    *int64  `db:"course_id" json:"course_id,omitempty"`
	CourseName  *string `db:"course_name" json:"course_name,omitempty"`
	TeacherID   *int64  `db:"teacher_id" json:"teacher_id,omitempty"`
	TeacherName *string `db:"teacher_name" json:"teacher_name,omitempty"`
	ClassGroup  *string `db:"class_group" json:"class_group,omitempty"`
	Semester    *int    `db:"semester" json:"semester,omitempty"`
	Credits     *int    `db:"credits" json:"credits,omitempty"`
	Delivery    *string `db:"delivery" json:"delivery,omitempty"`
	Status      string  `db:"status" json:"status"`
}

// TimetableStats summarises a stored timetable for reporting.
type TimetableStats struct {
	TotalSlots    int     `json:"total_slots"`
	OccupiedSlots int     `json:"occupied_slots"`
	EmptySlots    int     `json:"empty_slots"`
	HardConflicts int     `json:"hard_conflicts"`
	SoftConflicts int     `json:"soft_conflicts"`
	Fitness       float64 `json:"fitness"`
}
