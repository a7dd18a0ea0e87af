package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// TeacherSchedulingPreference stores scheduling wishes for a teacher:
// days they refuse to teach on and the daily window they accept.
// RestrictedDays holds a JSON array of day names.
type TeacherSchedulingPreference struct {
	ID             int64          `db:"id" json:"id"`
	TeacherID      int64          `db:"teacher_id" json:"teacher_id"`
	RestrictedDays types.JSONText `db:"restricted_days" json:"restricted_days"`
	AllowedStart   *string        `db:"allowed_start" json:"allowed_start,omitempty"`
	AllowedEnd     *string        `db:"allowed_end" json:"allowed_end,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// ProgramSchedulingPreference stores a program-wide restriction: no
// teaching on the listed days within the listed window.
type ProgramSchedulingPreference struct {
	ID             int64          `db:"id" json:"id"`
	RestrictedDays types.JSONText `db:"restricted_days" json:"restricted_days"`
	WindowStart    *string        `db:"window_start" json:"window_start,omitempty"`
	WindowEnd      *string        `db:"window_end" json:"window_end,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}
