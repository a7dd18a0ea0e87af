package models

// Teacher is a lecturer who can be assigned to course sections.
type Teacher struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Course is an offered course in the active semester.
type Course struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Semester int    `db:"semester" json:"semester"`
	Credits  int    `db:"credits" json:"credits"`
	Delivery string `db:"delivery" json:"delivery"`
}

// Room is a physical teaching room.
type Room struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Day is a teaching day, ordered by ID.
type Day struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// TimeBin is one teaching period, ordered by ID.
type TimeBin struct {
	ID    int64  `db:"id" json:"id"`
	Start string `db:"start_time" json:"start"`
	End   string `db:"end_time" json:"end"`
}

// Section joins a teacher, a course and a class group into one
// offering that must occupy a contiguous block of slots.
type Section struct {
	TeacherID   int64  `db:"teacher_id" json:"teacher_id"`
	TeacherName string `db:"teacher_name" json:"teacher_name"`
	CourseID    int64  `db:"course_id" json:"course_id"`
	CourseName  string `db:"course_name" json:"course_name"`
	ClassGroup  string `db:"class_group" json:"class_group"`
	Semester    int    `db:"semester" json:"semester"`
	Credits     int    `db:"credits" json:"credits"`
	Delivery    string `db:"delivery" json:"delivery"`
}
