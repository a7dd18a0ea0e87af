package csvio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeedFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func seedFiles(t *testing.T, sections string) CatalogFiles {
	dir := t.TempDir()
	return CatalogFiles{
		Teachers: writeSeedFile(t, dir, "teachers.csv", "name\nDr. Aksoy\nDr. Birand\n"),
		Courses:  writeSeedFile(t, dir, "courses.csv", "name,semester,credits,delivery\nAlgebra,1,3,in_person\nBiology,1,2,online\n"),
		Rooms:    writeSeedFile(t, dir, "rooms.csv", "name\nR101\n"),
		TimeBins: writeSeedFile(t, dir, "time_bins.csv", "start,end\n08:00,08:45\n08:45,09:30\n"),
		Sections: writeSeedFile(t, dir, "sections.csv", sections),
	}
}

func TestLoadCatalog(t *testing.T) {
	files := seedFiles(t, "teacher,course,class_group\nDr. Aksoy,Algebra,A\nDr. Birand,Biology,A\n")

	catalog, err := LoadCatalog(files)
	require.NoError(t, err)

	assert.Len(t, catalog.Teachers, 2)
	assert.Len(t, catalog.Courses, 2)
	assert.Len(t, catalog.Sections, 2)
	assert.Equal(t, DefaultDays, catalog.Days)
	assert.Equal(t, 3, catalog.Courses[0].Credits)
	assert.Equal(t, "online", catalog.Courses[1].Delivery)
}

func TestLoadCatalogRejectsUnknownTeacher(t *testing.T) {
	files := seedFiles(t, "teacher,course,class_group\nDr. Unknown,Algebra,A\n")

	_, err := LoadCatalog(files)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown teacher")
}

func TestLoadCatalogMissingFile(t *testing.T) {
	files := seedFiles(t, "teacher,course,class_group\n")
	files.Rooms = filepath.Join(t.TempDir(), "missing.csv")

	_, err := LoadCatalog(files)
	require.Error(t, err)
}
