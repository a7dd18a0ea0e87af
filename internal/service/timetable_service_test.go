package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/naufalhakm/timetable-api/internal/models"
	appErrors "github.com/naufalhakm/timetable-api/pkg/errors"
)

type fakeTimetableRepo struct {
	latest    *models.Timetable
	byID      map[string]*models.Timetable
	slots     map[string][]models.TimetableSlot
	published []string
}

func (f *fakeTimetableRepo) GetByID(_ context.Context, id string) (*models.Timetable, error) {
	tt, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return tt, nil
}

func (f *fakeTimetableRepo) GetLatest(context.Context) (*models.Timetable, error) {
	return f.latest, nil
}

func (f *fakeTimetableRepo) ListVersions(context.Context) ([]models.Timetable, error) {
	var list []models.Timetable
	for _, tt := range f.byID {
		list = append(list, *tt)
	}
	return list, nil
}

func (f *fakeTimetableRepo) ListSlots(_ context.Context, timetableID string) ([]models.TimetableSlot, error) {
	return f.slots[timetableID], nil
}

func (f *fakeTimetableRepo) UpdateStatus(_ context.Context, id string, _ models.TimetableStatus) error {
	if _, ok := f.byID[id]; !ok {
		return sql.ErrNoRows
	}
	f.published = append(f.published, id)
	return nil
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func newTimetableFixture() *fakeTimetableRepo {
	header := &models.Timetable{
		ID:          "tt-1",
		RunID:       "run-1",
		Version:     2,
		Status:      models.TimetableStatusDraft,
		Fitness:     0.5,
		Generations: 12,
		CreatedAt:   time.Now().UTC(),
	}
	slots := []models.TimetableSlot{
		{
			SlotIndex: 1, Day: "Monday", Room: "R101", StartTime: "08:00", EndTime: "08:45",
			SectionTag: intPtr(1), CourseName: strPtr("Algebra"), TeacherName: strPtr("Dr. Aksoy"),
			ClassGroup: strPtr("A"), Semester: intPtr(1), Credits: intPtr(1), Delivery: strPtr("in_person"),
			Status: "yellow",
		},
		{SlotIndex: 2, Day: "Monday", Room: "R101", StartTime: "08:45", EndTime: "09:30"},
	}
	return &fakeTimetableRepo{
		latest: header,
		byID:   map[string]*models.Timetable{"tt-1": header},
		slots:  map[string][]models.TimetableSlot{"tt-1": slots},
	}
}

func TestTimetableServiceLatest(t *testing.T) {
	repo := newTimetableFixture()
	svc := NewTimetableService(repo, nil, nil, zap.NewNop(), time.Minute)

	resp, err := svc.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Version)
	require.Len(t, resp.Slots, 2)
	assert.Equal(t, "Algebra", *resp.Slots[0].CourseName)
	assert.Nil(t, resp.Slots[1].SectionTag)
}

func TestTimetableServiceLatestEmpty(t *testing.T) {
	svc := NewTimetableService(&fakeTimetableRepo{}, nil, nil, zap.NewNop(), time.Minute)

	_, err := svc.Latest(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceStats(t *testing.T) {
	repo := newTimetableFixture()
	svc := NewTimetableService(repo, nil, nil, zap.NewNop(), time.Minute)

	stats, err := svc.Stats(context.Background(), "tt-1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalSlots)
	assert.Equal(t, 1, stats.OccupiedSlots)
	assert.Equal(t, 1, stats.EmptySlots)
	assert.Equal(t, 0, stats.HardConflicts)
	assert.Equal(t, 1, stats.SoftConflicts)
	assert.InDelta(t, 0.5, stats.Fitness, 1e-9)
}

func TestTimetableServicePublish(t *testing.T) {
	repo := newTimetableFixture()
	svc := NewTimetableService(repo, nil, nil, zap.NewNop(), time.Minute)

	require.NoError(t, svc.Publish(context.Background(), "tt-1"))
	assert.Equal(t, []string{"tt-1"}, repo.published)

	err := svc.Publish(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceExportCSV(t *testing.T) {
	repo := newTimetableFixture()
	svc := NewTimetableService(repo, nil, nil, zap.NewNop(), time.Minute)

	payload, filename, err := svc.ExportCSV(context.Background(), "tt-1")
	require.NoError(t, err)
	assert.Equal(t, "timetable-v2.csv", filename)

	content := string(payload)
	assert.Contains(t, content, "Day,Room,Start,End,Course")
	assert.Contains(t, content, "Algebra")
	// Empty cells are not exported.
	assert.Equal(t, 2, strings.Count(strings.TrimSpace(content), "\n")+1)
}

func TestTimetableServiceExportPDF(t *testing.T) {
	repo := newTimetableFixture()
	svc := NewTimetableService(repo, nil, nil, zap.NewNop(), time.Minute)

	payload, filename, err := svc.ExportPDF(context.Background(), "tt-1")
	require.NoError(t, err)
	assert.Equal(t, "timetable-v2.pdf", filename)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}
