package scheduler

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGeneratorPlacesContiguousBlock(t *testing.T) {
	inputs, err := NewScheduleInputs(
		[]string{"Monday"},
		[]string{"R101"},
		[]TimeBin{
			{Start: "08:00", End: "08:45"},
			{Start: "08:45", End: "09:30"},
			{Start: "09:30", End: "10:15"},
		},
		[]Section{{CourseID: 1, CourseName: "Algebra", TeacherID: 10, ClassGroup: "A", Semester: 1, Credits: 2}},
		nil, ProgramPreference{},
	)
	require.NoError(t, err)
	grid, err := BuildGrid(inputs.Days, inputs.Rooms, inputs.Bins)
	require.NoError(t, err)

	gen := NewGenerator(inputs, grid, rand.New(rand.NewSource(1)), zap.NewNop())
	for i := 0; i < 20; i++ {
		a := gen.Build()
		block := a.BlockOf(1)
		require.Len(t, block, 2)
		assert.Equal(t, block[0]+1, block[1])
		assert.True(t, block[0] == 0 || block[0] == 1)
	}
}

func TestGeneratorLeavesOversizedSectionUnplaced(t *testing.T) {
	inputs, err := NewScheduleInputs(
		[]string{"Monday"},
		[]string{"R101"},
		[]TimeBin{{Start: "08:00", End: "08:45"}},
		[]Section{{CourseID: 1, CourseName: "Algebra", TeacherID: 10, ClassGroup: "A", Semester: 1, Credits: 3}},
		nil, ProgramPreference{},
	)
	require.NoError(t, err)
	grid, err := BuildGrid(inputs.Days, inputs.Rooms, inputs.Bins)
	require.NoError(t, err)

	gen := NewGenerator(inputs, grid, rand.New(rand.NewSource(1)), zap.NewNop())
	a := gen.Build()
	assert.Empty(t, a.BlockOf(1))
	assert.Zero(t, a.OccupiedCount())
}

func TestRepairKeepsEverySectionPlaced(t *testing.T) {
	f := newConflictFixture(t, []Section{
		{CourseID: 1, CourseName: "Algebra", TeacherID: 10, ClassGroup: "A", Semester: 1, Credits: 2},
		{CourseID: 2, CourseName: "Geometry", TeacherID: 10, ClassGroup: "A", Semester: 1, Credits: 1},
		{CourseID: 3, CourseName: "Biology", TeacherID: 11, ClassGroup: "B", Semester: 1, Credits: 1},
	}, nil, ProgramPreference{})

	rng := rand.New(rand.NewSource(7))
	gen := NewGenerator(f.inputs, f.grid, rng, zap.NewNop())
	rep := newRepairer(f.inputs, f.engine, rng, 5)

	current := gen.Build()
	leaders := Leaders{gen.Build(), gen.Build(), gen.Build()}

	next := rep.Repair(current, leaders, 1.0)
	for _, sec := range f.inputs.Sections {
		block := next.BlockOf(sec.Tag)
		require.Len(t, block, sec.Credits, "section %d", sec.Tag)
	}

	// The input assignment is untouched.
	assert.Equal(t, current.OccupiedCount(), 4)
}

func TestRepairDoesNotMutateLeaders(t *testing.T) {
	f := newConflictFixture(t, []Section{
		{CourseID: 1, CourseName: "Algebra", TeacherID: 10, ClassGroup: "A", Semester: 1, Credits: 1},
		{CourseID: 2, CourseName: "Geometry", TeacherID: 10, ClassGroup: "A", Semester: 1, Credits: 1},
	}, nil, ProgramPreference{})

	rng := rand.New(rand.NewSource(3))
	gen := NewGenerator(f.inputs, f.grid, rng, zap.NewNop())
	rep := newRepairer(f.inputs, f.engine, rng, 5)

	alpha := gen.Build()
	alphaTags := alpha.Clone()
	current := gen.Build()

	for i := 0; i < 10; i++ {
		current = rep.Repair(current, Leaders{alpha, alpha, alpha}, 0.5)
	}
	assert.Equal(t, alphaTags, alpha)
}

func TestSearchConfigValidate(t *testing.T) {
	base := SearchConfig{PopulationSize: 10, MaxIterations: 20}
	require.NoError(t, base.Validate())

	low := base
	low.PopulationSize = 3
	assert.Error(t, low.Validate())

	high := base
	high.MaxIterations = 101
	assert.Error(t, high.Validate())
}

func TestOptimizerConvergesOnSolvableInstance(t *testing.T) {
	inputs, err := NewScheduleInputs(
		[]string{"Monday", "Tuesday"},
		[]string{"R101", "R102"},
		[]TimeBin{
			{Start: "08:00", End: "08:45"},
			{Start: "08:45", End: "09:30"},
			{Start: "09:30", End: "10:15"},
		},
		[]Section{
			{CourseID: 1, CourseName: "Algebra", TeacherID: 10, ClassGroup: "A", Semester: 1, Credits: 2},
			{CourseID: 2, CourseName: "Biology", TeacherID: 11, ClassGroup: "B", Semester: 1, Credits: 2},
			{CourseID: 3, CourseName: "Physics", TeacherID: 12, ClassGroup: "A", Semester: 1, Credits: 1},
		},
		nil, ProgramPreference{},
	)
	require.NoError(t, err)

	opt, err := New(inputs, SearchConfig{
		PopulationSize: 8,
		MaxIterations:  30,
		Seed:           42,
	}, zap.NewNop())
	require.NoError(t, err)

	var progress []string
	opt.OnProgress(func(msg string) { progress = append(progress, msg) })

	result, err := opt.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result.Best)

	assert.Equal(t, StateConverged, result.State)
	assert.Zero(t, result.Fitness)
	assert.Empty(t, result.Statuses)
	assert.Empty(t, result.Unplaced)
	assert.True(t, result.Generations < 30)

	require.NotEmpty(t, progress)
	assert.Contains(t, progress[0], "generation 1/30")

	for _, sec := range inputs.Sections {
		require.Len(t, result.Best.BlockOf(sec.Tag), sec.Credits)
	}
}

func TestOptimizerExhaustsOnInfeasibleInstance(t *testing.T) {
	// Two sections of the same class group compete for a single
	// one-bin day, so one of them can never be placed.
	inputs, err := NewScheduleInputs(
		[]string{"Monday"},
		[]string{"R101"},
		[]TimeBin{{Start: "08:00", End: "08:45"}},
		[]Section{
			{CourseID: 1, CourseName: "Algebra", TeacherID: 10, ClassGroup: "A", Semester: 1, Credits: 1},
			{CourseID: 2, CourseName: "Biology", TeacherID: 11, ClassGroup: "A", Semester: 1, Credits: 1},
		},
		nil, ProgramPreference{},
	)
	require.NoError(t, err)

	opt, err := New(inputs, SearchConfig{
		PopulationSize: 4,
		MaxIterations:  5,
		Seed:           7,
	}, zap.NewNop())
	require.NoError(t, err)

	result, err := opt.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateExhausted, result.State)
	assert.Equal(t, 5, result.Generations)
	assert.Len(t, result.Unplaced, 1)
}

func TestOptimizerStatusAnnotations(t *testing.T) {
	// One teacher, two courses, a single slot per day: every run ends
	// with a teacher clash or an unplaced section, and the restricted
	// day guarantees at least a preference hit is possible. Verify the
	// status colors map to the violation classes of the final report.
	inputs, err := NewScheduleInputs(
		[]string{"Monday", "Tuesday"},
		[]string{"R101", "R102"},
		[]TimeBin{{Start: "08:00", End: "08:45"}},
		[]Section{
			{CourseID: 1, CourseName: "Algebra", TeacherID: 10, ClassGroup: "A", Semester: 1, Credits: 1},
			{CourseID: 2, CourseName: "Geometry", TeacherID: 10, ClassGroup: "B", Semester: 1, Credits: 1},
		},
		[]TeacherPreference{{TeacherID: 10, RestrictedDays: []string{"Monday", "Tuesday"}}},
		ProgramPreference{},
	)
	require.NoError(t, err)

	opt, err := New(inputs, SearchConfig{
		PopulationSize: 4,
		MaxIterations:  4,
		Seed:           11,
	}, zap.NewNop())
	require.NoError(t, err)

	result, err := opt.Run(context.Background())
	require.NoError(t, err)

	// Every placed section sits on a restricted day.
	assert.Equal(t, StateExhausted, result.State)
	require.NotEmpty(t, result.Statuses)
	for tag, status := range result.Statuses {
		assert.Contains(t, []string{"red", "yellow"}, status, "tag %d", tag)
	}

	report := NewEngine(inputs).Collect(result.Best)
	for tag := range report.Hard() {
		assert.Equal(t, "red", result.Statuses[tag])
	}
	for tag := range report.Soft() {
		if !report.Hard().Contains(tag) {
			assert.Equal(t, "yellow", result.Statuses[tag])
		}
	}
}

func TestOptimizerHonoursCancellation(t *testing.T) {
	inputs, err := NewScheduleInputs(
		[]string{"Monday"},
		[]string{"R101"},
		[]TimeBin{{Start: "08:00", End: "08:45"}},
		[]Section{
			{CourseID: 1, CourseName: "Algebra", TeacherID: 10, ClassGroup: "A", Semester: 1, Credits: 1},
			{CourseID: 2, CourseName: "Biology", TeacherID: 11, ClassGroup: "A", Semester: 1, Credits: 1},
		},
		nil, ProgramPreference{},
	)
	require.NoError(t, err)

	opt, err := New(inputs, SearchConfig{
		PopulationSize: 4,
		MaxIterations:  100,
		Seed:           5,
	}, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := opt.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}

func TestOptimizerProgressFormat(t *testing.T) {
	inputs, err := NewScheduleInputs(
		[]string{"Monday"},
		[]string{"R101"},
		[]TimeBin{
			{Start: "08:00", End: "08:45"},
			{Start: "08:45", End: "09:30"},
		},
		[]Section{{CourseID: 1, CourseName: "Algebra", TeacherID: 10, ClassGroup: "A", Semester: 1, Credits: 1}},
		nil, ProgramPreference{},
	)
	require.NoError(t, err)

	opt, err := New(inputs, SearchConfig{PopulationSize: 4, MaxIterations: 4, Seed: 1}, zap.NewNop())
	require.NoError(t, err)

	var lines []string
	opt.OnProgress(func(msg string) { lines = append(lines, msg) })

	_, err = opt.Run(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, lines)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "generation "), line)
		assert.Contains(t, line, "best fitness")
	}
}
