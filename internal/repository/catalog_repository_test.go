package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naufalhakm/timetable-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCatalogRepositoryListDays(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM days ORDER BY id")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(1, "Monday").
			AddRow(2, "Tuesday"))

	days, err := repo.ListDays(context.Background())
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "Monday", days[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepositoryListSections(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	rows := sqlmock.NewRows([]string{
		"teacher_id", "teacher_name", "course_id", "course_name",
		"class_group", "semester", "credits", "delivery",
	}).AddRow(10, "Dr. Aksoy", 1, "Algebra", "A", 1, 3, "in_person")
	mock.ExpectQuery("SELECT tc.teacher_id, t.name AS teacher_name").WillReturnRows(rows)

	sections, err := repo.ListSections(context.Background())
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "Dr. Aksoy", sections[0].TeacherName)
	assert.Equal(t, 3, sections[0].Credits)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepositoryCreateCourse(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	mock.ExpectQuery("INSERT INTO courses").
		WithArgs("Algebra", 1, 3, "in_person").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	id, err := repo.CreateCourse(context.Background(), models.Course{
		Name:     "Algebra",
		Semester: 1,
		Credits:  3,
		Delivery: "in_person",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}
