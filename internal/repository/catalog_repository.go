package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/naufalhakm/timetable-api/internal/models"
)

// CatalogRepository reads the scheduling catalog: days, rooms, time
// bins, teachers, courses and the teacher-course sections derived from
// them. The optimizer consumes these as an immutable snapshot; writes
// only happen through the seeder.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository constructs a CatalogRepository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListDays returns teaching days in grid order.
func (r *CatalogRepository) ListDays(ctx context.Context) ([]models.Day, error) {
	var days []models.Day
	if err := r.db.SelectContext(ctx, &days, "SELECT id, name FROM days ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}
	return days, nil
}

// ListRooms returns rooms in grid order.
func (r *CatalogRepository) ListRooms(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, "SELECT id, name FROM rooms ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// ListTimeBins returns the daily teaching periods in grid order.
func (r *CatalogRepository) ListTimeBins(ctx context.Context) ([]models.TimeBin, error) {
	var bins []models.TimeBin
	if err := r.db.SelectContext(ctx, &bins, "SELECT id, start_time, end_time FROM time_bins ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list time bins: %w", err)
	}
	return bins, nil
}

// ListTeachers returns every teacher.
func (r *CatalogRepository) ListTeachers(ctx context.Context) ([]models.Teacher, error) {
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, "SELECT id, name FROM teachers ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}

// ListCourses returns every course of the active catalog.
func (r *CatalogRepository) ListCourses(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, "SELECT id, name, semester, credits, delivery FROM courses ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// ListSections returns the teacher-course offerings joined with their
// teacher and course attributes, in assignment order.
func (r *CatalogRepository) ListSections(ctx context.Context) ([]models.Section, error) {
	query := `SELECT tc.teacher_id, t.name AS teacher_name, tc.course_id, c.name AS course_name,
       tc.class_group, c.semester, c.credits, c.delivery
FROM teacher_courses tc
JOIN teachers t ON t.id = tc.teacher_id
JOIN courses c ON c.id = tc.course_id
ORDER BY tc.id`
	var sections []models.Section
	if err := r.db.SelectContext(ctx, &sections, query); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return sections, nil
}

// CreateDay inserts one teaching day. Used by the seeder.
func (r *CatalogRepository) CreateDay(ctx context.Context, name string) (int64, error) {
	var id int64
	if err := r.db.GetContext(ctx, &id, "INSERT INTO days (name) VALUES ($1) RETURNING id", name); err != nil {
		return 0, fmt.Errorf("create day: %w", err)
	}
	return id, nil
}

// CreateRoom inserts one room. Used by the seeder.
func (r *CatalogRepository) CreateRoom(ctx context.Context, name string) (int64, error) {
	var id int64
	if err := r.db.GetContext(ctx, &id, "INSERT INTO rooms (name) VALUES ($1) RETURNING id", name); err != nil {
		return 0, fmt.Errorf("create room: %w", err)
	}
	return id, nil
}

// CreateTimeBin inserts one teaching period. Used by the seeder.
func (r *CatalogRepository) CreateTimeBin(ctx context.Context, start, end string) (int64, error) {
	var id int64
	if err := r.db.GetContext(ctx, &id, "INSERT INTO time_bins (start_time, end_time) VALUES ($1, $2) RETURNING id", start, end); err != nil {
		return 0, fmt.Errorf("create time bin: %w", err)
	}
	return id, nil
}

// CreateTeacher inserts one teacher. Used by the seeder.
func (r *CatalogRepository) CreateTeacher(ctx context.Context, name string) (int64, error) {
	var id int64
	if err := r.db.GetContext(ctx, &id, "INSERT INTO teachers (name) VALUES ($1) RETURNING id", name); err != nil {
		return 0, fmt.Errorf("create teacher: %w", err)
	}
	return id, nil
}

// CreateCourse inserts one course. Used by the seeder.
func (r *CatalogRepository) CreateCourse(ctx context.Context, course models.Course) (int64, error) {
	var id int64
	query := "INSERT INTO courses (name, semester, credits, delivery) VALUES ($1, $2, $3, $4) RETURNING id"
	if err := r.db.GetContext(ctx, &id, query, course.Name, course.Semester, course.Credits, course.Delivery); err != nil {
		return 0, fmt.Errorf("create course: %w", err)
	}
	return id, nil
}

// CreateSection links a teacher, a course and a class group. Used by
// the seeder.
func (r *CatalogRepository) CreateSection(ctx context.Context, teacherID, courseID int64, classGroup string) (int64, error) {
	var id int64
	query := "INSERT INTO teacher_courses (teacher_id, course_id, class_group) VALUES ($1, $2, $3) RETURNING id"
	if err := r.db.GetContext(ctx, &id, query, teacherID, courseID, classGroup); err != nil {
		return 0, fmt.Errorf("create section: %w", err)
	}
	return id, nil
}
