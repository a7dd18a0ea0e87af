package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type conflictFixture struct {
	inputs *ScheduleInputs
	grid   *Grid
	engine *Engine
}

// newConflictFixture builds a two-day, two-room grid with three bins
// per day and snapshots the given sections and preferences.
func newConflictFixture(t *testing.T, sections []Section, teacherPrefs []TeacherPreference, program ProgramPreference) conflictFixture {
	t.Helper()

	days := []string{"Monday", "Tuesday"}
	rooms := []string{"R101", "R102"}
	bins := []TimeBin{
		{Start: "08:00", End: "08:45"},
		{Start: "08:45", End: "09:30"},
		{Start: "09:30", End: "10:15"},
	}

	inputs, err := NewScheduleInputs(days, rooms, bins, sections, teacherPrefs, program)
	require.NoError(t, err)
	grid, err := BuildGrid(days, rooms, bins)
	require.NoError(t, err)

	return conflictFixture{inputs: inputs, grid: grid, engine: NewEngine(inputs)}
}

func TestConflictEngineCleanAssignment(t *testing.T) {
	f := newConflictFixture(t, []Section{
		{CourseID: 1, CourseName: "Algebra", TeacherID: 10, ClassGroup: "A", Semester: 1, Credits: 2},
		{CourseID: 2, CourseName: "Biology", TeacherID: 11, ClassGroup: "B", Semester: 1, Credits: 1},
	}, nil, ProgramPreference{})

	a := NewAssignment(f.grid)
	a.placeBlock(0, 2, 1) // Monday R101 bins 1-2
	a.placeBlock(3, 1, 2) // Monday R102 bin 1

	report := f.engine.Collect(a)
	assert.True(t, report.Clean())
	assert.Zero(t, Fitness(report, DefaultWeights))
}

func TestConflictEngineTeacherDoubleBooking(t *testing.T) {
	f := newConflictFixture(t, []Section{
		{CourseID: 1, CourseName: "Algebra", TeacherID: 10, ClassGroup: "A", Semester: 1, Credits: 1},
		{CourseID: 2, CourseName: "Geometry", TeacherID: 10, ClassGroup: "B", Semester: 1, Credits: 1},
	}, nil, ProgramPreference{})

	a := NewAssignment(f.grid)
	a.placeBlock(0, 1, 1) // Monday R101 08:00
	a.placeBlock(3, 1, 2) // Monday R102 08:00, same teacher, other course

	report := f.engine.Collect(a)
	assert.True(t, report.TeacherClashTags.Contains(1))
	assert.True(t, report.TeacherClashTags.Contains(2))
	require.Len(t, report.TeacherClashPairs, 1)
	assert.Equal(t, SlotPair{A: 1, B: 4}, report.TeacherClashPairs[0])
	assert.GreaterOrEqual(t, Fitness(report, DefaultWeights), 1.0)
}

func TestConflictEngineSameCourseTeacherIsNotAClash(t *testing.T) {
	// One teacher covering the same course for two groups at once is
	// treated as co-teaching, not double-booking.
	f := newConflictFixture(t, []Section{
		{CourseID: 1, CourseName: "Algebra", TeacherID: 10, ClassGroup: "A", Semester: 1, Credits: 1},
		{CourseID: 1, CourseName: "Algebra", TeacherID: 10, ClassGroup: "B", Semester: 1, Credits: 1},
	}, nil, ProgramPreference{})

	a := NewAssignment(f.grid)
	a.placeBlock(0, 1, 1)
	a.placeBlock(3, 1, 2)

	report := f.engine.Collect(a)
	assert.Empty(t, report.TeacherClashTags)
}

func TestConflictEngineRoomDoubleBookingExemptsOnline(t *testing.T) {
	days := []string{"Monday"}
	rooms := []string{"R101"}
	bins := []TimeBin{
		{Start: "08:00", End: "09:00"},
		{Start: "08:30", End: "09:30"},
	}
	inputs, err := NewScheduleInputs(days, rooms, bins, []Section{
		{CourseID: 1, CourseName: "Algebra", TeacherID: 10, ClassGroup: "A", Semester: 1, Credits: 1},
		{CourseID: 2, CourseName: "Biology", TeacherID: 11, ClassGroup: "B", Semester: 1, Credits: 1, Delivery: "online"},
	}, nil, ProgramPreference{})
	require.NoError(t, err)
	grid, err := BuildGrid(days, rooms, bins)
	require.NoError(t, err)

	a := NewAssignment(grid)
	a.placeBlock(0, 1, 1)
	a.placeBlock(1, 1, 2) // overlapping bins, but the occupant is online

	report := NewEngine(inputs).Collect(a)
	assert.Empty(t, report.RoomClashTags)
}

func TestConflictEngineRoomDoubleBookingPhysicalSections(t *testing.T) {
	// Two physical sections cannot share one cell of the grid, so a
	// room clash only arises from overlapping bins across stripes of
	// the same room. This fixture uses overlapping bins directly.
	days := []string{"Monday"}
	rooms := []string{"R101"}
	bins := []TimeBin{
		{Start: "08:00", End: "09:00"},
		{Start: "08:30", End: "09:30"},
	}
	inputs, err := NewScheduleInputs(days, rooms, bins, []Section{
		{CourseID: 1, CourseName: "Algebra", TeacherID: 10, ClassGroup: "A", Semester: 1, Credits: 1},
		{CourseID: 2, CourseName: "Biology", TeacherID: 11, ClassGroup: "B", Semester: 1, Credits: 1},
	}, nil, ProgramPreference{})
	require.NoError(t, err)
	grid, err := BuildGrid(days, rooms, bins)
	require.NoError(t, err)

	a := NewAssignment(grid)
	a.placeBlock(0, 1, 1)
	a.placeBlock(1, 1, 2)

	report := NewEngine(inputs).Collect(a)
	assert.True(t, report.RoomClashTags.Contains(1))
	assert.True(t, report.RoomClashTags.Contains(2))
}

func TestConflictEngineGroupDoubleBooking(t *testing.T) {
	f := newConflictFixture(t, []Section{
		{CourseID: 1, CourseName: "Algebra", TeacherID: 10, ClassGroup: "A", Semester: 1, Credits: 1},
		{CourseID: 2, CourseName: "Biology", TeacherID: 11, ClassGroup: "A", Semester: 1, Credits: 1},
	}, nil, ProgramPreference{})

	a := NewAssignment(f.grid)
	a.placeBlock(0, 1, 1) // Monday R101 08:00
	a.placeBlock(3, 1, 2) // Monday R102 08:00, same class group

	report := f.engine.Collect(a)
	assert.True(t, report.GroupClashTags.Contains(1))
	assert.True(t, report.GroupClashTags.Contains(2))
}

func TestConflictEngineGroupClashSplitBySemester(t *testing.T) {
	f := newConflictFixture(t, []Section{
		{CourseID: 1, CourseName: "Algebra", TeacherID: 10, ClassGroup: "A", Semester: 1, Credits: 1},
		{CourseID: 2, CourseName: "Biology", TeacherID: 11, ClassGroup: "A", Semester: 3, Credits: 1},
	}, nil, ProgramPreference{})

	a := NewAssignment(f.grid)
	a.placeBlock(0, 1, 1)
	a.placeBlock(3, 1, 2)

	report := f.engine.Collect(a)
	assert.Empty(t, report.GroupClashTags)
}

func TestConflictEngineRoomConsistency(t *testing.T) {
	f := newConflictFixture(t, []Section{
		{CourseID: 1, CourseName: "Algebra", TeacherID: 10, ClassGroup: "A", Semester: 1, Credits: 2},
	}, nil, ProgramPreference{})

	a := NewAssignment(f.grid)
	a.placeBlock(0, 1, 1) // Monday R101
	a.placeBlock(3, 1, 1) // Monday R102, same tag split across rooms

	report := f.engine.Collect(a)
	assert.True(t, report.RoomConsistency.Contains(1))
	require.Len(t, report.RoomSplits, 1)
	assert.Equal(t, 1, report.RoomSplits[0].Tag)
	assert.ElementsMatch(t, []string{"R101", "R102"}, report.RoomSplits[0].Rooms)
}

func TestConflictEngineTeacherPreference(t *testing.T) {
	f := newConflictFixture(t, []Section{
		{CourseID: 1, CourseName: "Algebra", TeacherID: 10, ClassGroup: "A", Semester: 1, Credits: 1},
		{CourseID: 2, CourseName: "Biology", TeacherID: 10, ClassGroup: "B", Semester: 1, Credits: 1},
	}, []TeacherPreference{
		{TeacherID: 10, RestrictedDays: []string{"monday"}, AllowedStart: "08:00", AllowedEnd: "09:30"},
	}, ProgramPreference{})

	a := NewAssignment(f.grid)
	a.placeBlock(0, 1, 1) // Monday, restricted day
	a.placeBlock(8, 1, 2) // Tuesday 09:30, outside the allowed window

	report := f.engine.Collect(a)
	assert.True(t, report.TeacherPrefTags.Contains(1))
	assert.True(t, report.TeacherPrefTags.Contains(2))
	assert.Empty(t, report.Hard())
	assert.InDelta(t, 1.0, Fitness(report, DefaultWeights), 1e-9)
}

func TestConflictEngineProgramPreference(t *testing.T) {
	f := newConflictFixture(t, []Section{
		{CourseID: 1, CourseName: "Algebra", TeacherID: 10, ClassGroup: "A", Semester: 1, Credits: 1},
		{CourseID: 2, CourseName: "Biology", TeacherID: 11, ClassGroup: "B", Semester: 1, Credits: 1},
	}, nil, ProgramPreference{
		RestrictedDays: []string{"Tuesday"},
		Windows:        []TimeBin{{Start: "08:00", End: "09:00"}},
	})

	a := NewAssignment(f.grid)
	a.placeBlock(6, 1, 1) // Tuesday 08:00, inside the window
	a.placeBlock(8, 1, 2) // Tuesday 09:30, outside the window

	report := f.engine.Collect(a)
	assert.True(t, report.ProgramPrefTags.Contains(1))
	assert.False(t, report.ProgramPrefTags.Contains(2))
}

func TestConflictEngineCollectIsDeterministic(t *testing.T) {
	f := newConflictFixture(t, []Section{
		{CourseID: 1, CourseName: "Algebra", TeacherID: 10, ClassGroup: "A", Semester: 1, Credits: 1},
		{CourseID: 2, CourseName: "Geometry", TeacherID: 10, ClassGroup: "A", Semester: 1, Credits: 1},
	}, nil, ProgramPreference{})

	a := NewAssignment(f.grid)
	a.placeBlock(0, 1, 1)
	a.placeBlock(3, 1, 2)

	first := f.engine.Collect(a)
	second := f.engine.Collect(a)
	assert.Equal(t, first, second)
	assert.Equal(t, Fitness(first, DefaultWeights), Fitness(second, DefaultWeights))
}

func TestFitnessCountsDistinctTagsOnce(t *testing.T) {
	report := newConflictReport()
	report.TeacherClashTags.add(1)
	report.GroupClashTags.add(1)
	report.RoomClashTags.add(2)
	report.TeacherPrefTags.add(1)
	report.ProgramPrefTags.add(3)

	// Tag 1 appears in two hard categories and one soft, tag 2 in one
	// hard, tag 3 in one soft: 2 hard tags + 2 soft tags.
	assert.InDelta(t, 2*1.0+2*0.5, Fitness(report, DefaultWeights), 1e-9)

	assert.InDelta(t, 2*2.0+2*0.25, Fitness(report, Weights{Hard: 2.0, Soft: 0.25}), 1e-9)
}
