package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		raw     string
		minutes int
		wantErr bool
	}{
		{raw: "08:00", minutes: 480},
		{raw: "08:45:00", minutes: 525},
		{raw: " 13:30 ", minutes: 810},
		{raw: "24:00", wantErr: true},
		{raw: "08:60", wantErr: true},
		{raw: "0800", wantErr: true},
		{raw: "eight", wantErr: true},
		{raw: "", wantErr: true},
	}
	for _, tc := range cases {
		minutes, err := parseClock(tc.raw)
		if tc.wantErr {
			require.Error(t, err, tc.raw)
			assert.Contains(t, err.Error(), "invalid time format")
			continue
		}
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.minutes, minutes, tc.raw)
	}
}

func TestOverlapsIsSymmetricAndHalfOpen(t *testing.T) {
	assert.True(t, overlaps(480, 525, 500, 560))
	assert.True(t, overlaps(500, 560, 480, 525))

	// Touching intervals do not overlap.
	assert.False(t, overlaps(480, 525, 525, 570))
	assert.False(t, overlaps(525, 570, 480, 525))

	// Containment counts.
	assert.True(t, overlaps(480, 600, 500, 520))
}

func TestNewScheduleInputsRetagsSections(t *testing.T) {
	in, err := NewScheduleInputs(
		[]string{"Monday"},
		[]string{"R101"},
		[]TimeBin{{Start: "08:00", End: "08:45"}},
		[]Section{
			{Tag: 99, CourseName: "Algebra", ClassGroup: "A", Credits: 1},
			{Tag: 99, CourseName: "Biology", ClassGroup: "B", Credits: 2},
		},
		nil,
		ProgramPreference{},
	)
	require.NoError(t, err)

	require.Len(t, in.Sections, 2)
	assert.Equal(t, 1, in.Sections[0].Tag)
	assert.Equal(t, 2, in.Sections[1].Tag)

	sec, ok := in.SectionByTag(2)
	require.True(t, ok)
	assert.Equal(t, "Biology", sec.CourseName)

	_, ok = in.SectionByTag(3)
	assert.False(t, ok)
}

func TestNewScheduleInputsRejectsBadData(t *testing.T) {
	_, err := NewScheduleInputs(
		[]string{"Monday"},
		[]string{"R101"},
		[]TimeBin{{Start: "8am", End: "08:45"}},
		nil, nil, ProgramPreference{},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid time format")

	_, err = NewScheduleInputs(
		[]string{"Monday"},
		[]string{"R101"},
		[]TimeBin{{Start: "08:00", End: "08:45"}},
		[]Section{{CourseName: "Algebra", ClassGroup: "A", Credits: 0}},
		nil, ProgramPreference{},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credits")
}

func TestSectionOnline(t *testing.T) {
	assert.True(t, Section{Delivery: "online"}.Online())
	assert.True(t, Section{Delivery: " Online "}.Online())
	assert.False(t, Section{Delivery: "offline"}.Online())
	assert.False(t, Section{}.Online())
}

func TestBuildGridOrderingAndAdjacency(t *testing.T) {
	grid, err := BuildGrid(
		[]string{"Monday", "Tuesday"},
		[]string{"R101", "R102"},
		[]TimeBin{{Start: "08:00", End: "08:45"}, {Start: "08:45", End: "09:30"}},
	)
	require.NoError(t, err)
	require.Equal(t, 8, grid.Len())

	// Day -> room -> bin nesting, 1-based indices.
	first := grid.Slot(0)
	assert.Equal(t, 1, first.Index)
	assert.Equal(t, "Monday", first.Day)
	assert.Equal(t, "R101", first.Room)
	assert.Equal(t, 480, first.StartMin)

	second := grid.Slot(1)
	assert.Equal(t, "R101", second.Room)
	assert.Equal(t, first.EndMin, second.StartMin)

	// The next stripe switches rooms before days.
	third := grid.Slot(2)
	assert.Equal(t, "Monday", third.Day)
	assert.Equal(t, "R102", third.Room)

	last := grid.Slot(7)
	assert.Equal(t, "Tuesday", last.Day)
	assert.Equal(t, "R102", last.Room)
}

func TestAssignmentCloneIsIndependent(t *testing.T) {
	grid, err := BuildGrid([]string{"Monday"}, []string{"R101"}, []TimeBin{
		{Start: "08:00", End: "08:45"},
		{Start: "08:45", End: "09:30"},
	})
	require.NoError(t, err)

	original := NewAssignment(grid)
	original.placeBlock(0, 2, 7)

	clone := original.Clone()
	clone.clearTag(7)
	clone.placeBlock(1, 1, 7)

	assert.Equal(t, []int{0, 1}, original.BlockOf(7))
	assert.Equal(t, []int{1}, clone.BlockOf(7))
	assert.Equal(t, 2, original.OccupiedCount())
	assert.Equal(t, 1, clone.OccupiedCount())
}
