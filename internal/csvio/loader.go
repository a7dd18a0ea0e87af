// Package csvio loads the seed catalog from CSV files.
package csvio

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
)

// TeacherRow is one teachers.csv record.
type TeacherRow struct {
	Name string `csv:"name"`
}

// CourseRow is one courses.csv record.
type CourseRow struct {
	Name     string `csv:"name"`
	Semester int    `csv:"semester"`
	Credits  int    `csv:"credits"`
	Delivery string `csv:"delivery"`
}

// RoomRow is one rooms.csv record.
type RoomRow struct {
	Name string `csv:"name"`
}

// TimeBinRow is one time_bins.csv record.
type TimeBinRow struct {
	Start string `csv:"start"`
	End   string `csv:"end"`
}

// SectionRow is one sections.csv record linking a teacher and a course
// to a class group by name.
type SectionRow struct {
	Teacher    string `csv:"teacher"`
	Course     string `csv:"course"`
	ClassGroup string `csv:"class_group"`
}

// Catalog bundles every seed file of one data set.
type Catalog struct {
	Days     []string
	Teachers []*TeacherRow
	Courses  []*CourseRow
	Rooms    []*RoomRow
	TimeBins []*TimeBinRow
	Sections []*SectionRow
}

// CatalogFiles names the CSV files of one seed data set.
type CatalogFiles struct {
	Teachers string
	Courses  string
	Rooms    string
	TimeBins string
	Sections string
}

// DefaultDays is the teaching week seeded when no day file is given.
var DefaultDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// LoadCatalog parses every seed file. Any missing or malformed file
// fails the whole load; partial seeds are worse than none.
func LoadCatalog(files CatalogFiles) (*Catalog, error) {
	catalog := &Catalog{Days: DefaultDays}

	if err := loadFile(files.Teachers, &catalog.Teachers); err != nil {
		return nil, err
	}
	if err := loadFile(files.Courses, &catalog.Courses); err != nil {
		return nil, err
	}
	if err := loadFile(files.Rooms, &catalog.Rooms); err != nil {
		return nil, err
	}
	if err := loadFile(files.TimeBins, &catalog.TimeBins); err != nil {
		return nil, err
	}
	if err := loadFile(files.Sections, &catalog.Sections); err != nil {
		return nil, err
	}

	if err := catalog.validate(); err != nil {
		return nil, err
	}
	return catalog, nil
}

func loadFile[T any](path string, out *[]*T) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.UnmarshalFile(f, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (c *Catalog) validate() error {
	teachers := make(map[string]struct{}, len(c.Teachers))
	for _, t := range c.Teachers {
		if t.Name == "" {
			return fmt.Errorf("teachers: empty name")
		}
		teachers[t.Name] = struct{}{}
	}
	courses := make(map[string]struct{}, len(c.Courses))
	for _, course := range c.Courses {
		if course.Credits < 1 {
			return fmt.Errorf("course %q: credits must be at least 1", course.Name)
		}
		courses[course.Name] = struct{}{}
	}
	for _, sec := range c.Sections {
		if _, ok := teachers[sec.Teacher]; !ok {
			return fmt.Errorf("section %q/%q: unknown teacher %q", sec.Course, sec.ClassGroup, sec.Teacher)
		}
		if _, ok := courses[sec.Course]; !ok {
			return fmt.Errorf("section %q/%q: unknown course %q", sec.Course, sec.ClassGroup, sec.Course)
		}
	}
	return nil
}
