package dto

import "time"

// TimetableSlotResponse is one rendered grid cell. Course fields are
// omitted for empty cells.
type TimetableSlotResponse struct {
	SlotIndex   int     `json:"slotIndex"`
	Day         string  `json:"day"`
	Room        string  `json:"room"`
	StartTime   string  `json:"startTime"`
	EndTime     string  `json:"endTime"`
	SectionTag  *int    `json:"sectionTag,omitempty"`
	CourseName  *string `json:"courseName,omitempty"`
	TeacherName *string `json:"teacherName,omitempty"`
	ClassGroup  *string `json:"classGroup,omitempty"`
	Semester    *int    `json:"semester,omitempty"`
	Credits     *int    `json:"credits,omitempty"`
	Delivery    *string `json:"delivery,omitempty"`
	Status      string  `json:"status,omitempty"`
}

// TimetableResponse returns one stored timetable with its slots.
type TimetableResponse struct {
	ID          string                  `json:"id"`
	RunID       string                  `json:"runId"`
	Version     int                     `json:"version"`
	Status      string                  `json:"status"`
	Fitness     float64                 `json:"fitness"`
	Generations int                     `json:"generations"`
	CreatedAt   time.Time               `json:"createdAt"`
	Slots       []TimetableSlotResponse `json:"slots,omitempty"`
}

// TimetableStatsResponse summarises slot occupancy and conflicts of a
// stored timetable.
type TimetableStatsResponse struct {
	TimetableID   string  `json:"timetableId"`
	Version       int     `json:"version"`
	TotalSlots    int     `json:"totalSlots"`
	OccupiedSlots int     `json:"occupiedSlots"`
	EmptySlots    int     `json:"emptySlots"`
	HardConflicts int     `json:"hardConflicts"`
	SoftConflicts int     `json:"softConflicts"`
	Fitness       float64 `json:"fitness"`
}
