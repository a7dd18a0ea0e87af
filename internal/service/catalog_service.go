package service

import (
	"context"

	"github.com/naufalhakm/timetable-api/internal/models"
	appErrors "github.com/naufalhakm/timetable-api/pkg/errors"
)

type catalogReader interface {
	catalogFetcher
	ListTeachers(ctx context.Context) ([]models.Teacher, error)
	ListCourses(ctx context.Context) ([]models.Course, error)
}

// CatalogService exposes the scheduling catalog for the read-only data
// endpoints.
type CatalogService struct {
	repo catalogReader
}

// NewCatalogService wires the catalog reader.
func NewCatalogService(repo catalogReader) *CatalogService {
	return &CatalogService{repo: repo}
}

func (s *CatalogService) Teachers(ctx context.Context) ([]models.Teacher, error) {
	teachers, err := s.repo.ListTeachers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	return teachers, nil
}

func (s *CatalogService) Courses(ctx context.Context) ([]models.Course, error) {
	courses, err := s.repo.ListCourses(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

func (s *CatalogService) Days(ctx context.Context) ([]models.Day, error) {
	days, err := s.repo.ListDays(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list days")
	}
	return days, nil
}

func (s *CatalogService) Rooms(ctx context.Context) ([]models.Room, error) {
	rooms, err := s.repo.ListRooms(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	return rooms, nil
}

func (s *CatalogService) TimeBins(ctx context.Context) ([]models.TimeBin, error) {
	bins, err := s.repo.ListTimeBins(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list time bins")
	}
	return bins, nil
}

func (s *CatalogService) Sections(ctx context.Context) ([]models.Section, error) {
	sections, err := s.repo.ListSections(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}
	return sections, nil
}
