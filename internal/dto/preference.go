package dto

// UpsertTeacherPreferenceRequest replaces the scheduling preference of
// one teacher. Times use 24h HH:MM; both window ends must be given
// together.
type UpsertTeacherPreferenceRequest struct {
	TeacherID      int64    `json:"teacherId" validate:"required,min=1"`
	RestrictedDays []string `json:"restrictedDays" validate:"omitempty,dive,min=1"`
	AllowedStart   *string  `json:"allowedStart" validate:"omitempty,datetime=15:04"`
	AllowedEnd     *string  `json:"allowedEnd" validate:"omitempty,datetime=15:04"`
}

// SetProgramPreferenceRequest stores the program-wide restriction.
type SetProgramPreferenceRequest struct {
	RestrictedDays []string `json:"restrictedDays" validate:"omitempty,dive,min=1"`
	WindowStart    *string  `json:"windowStart" validate:"omitempty,datetime=15:04"`
	WindowEnd      *string  `json:"windowEnd" validate:"omitempty,datetime=15:04"`
}

// TeacherPreferenceResponse mirrors a stored teacher preference.
type TeacherPreferenceResponse struct {
	TeacherID      int64    `json:"teacherId"`
	RestrictedDays []string `json:"restrictedDays"`
	AllowedStart   *string  `json:"allowedStart,omitempty"`
	AllowedEnd     *string  `json:"allowedEnd,omitempty"`
}

// ProgramPreferenceResponse mirrors the stored program restriction.
type ProgramPreferenceResponse struct {
	RestrictedDays []string `json:"restrictedDays"`
	WindowStart    *string  `json:"windowStart,omitempty"`
	WindowEnd      *string  `json:"windowEnd,omitempty"`
}
