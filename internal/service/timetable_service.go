package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/naufalhakm/timetable-api/internal/dto"
	"github.com/naufalhakm/timetable-api/internal/models"
	appErrors "github.com/naufalhakm/timetable-api/pkg/errors"
	"github.com/naufalhakm/timetable-api/pkg/export"
)

const latestTimetableCacheKey = "timetable:latest"

type timetableReader interface {
	GetByID(ctx context.Context, id string) (*models.Timetable, error)
	GetLatest(ctx context.Context) (*models.Timetable, error)
	ListVersions(ctx context.Context) ([]models.Timetable, error)
	ListSlots(ctx context.Context, timetableID string) ([]models.TimetableSlot, error)
	UpdateStatus(ctx context.Context, id string, status models.TimetableStatus) error
}

type cacheMetricsRecorder interface {
	RecordCacheOperation(hit bool)
}

// TimetableService serves stored timetables: reads with a Redis
// look-aside cache on the latest version, publishing, stats and file
// export. A nil Redis client disables caching.
type TimetableService struct {
	repo     timetableReader
	redis    *redis.Client
	metrics  cacheMetricsRecorder
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
	cacheTTL time.Duration
}

// NewTimetableService wires the timetable read path.
func NewTimetableService(repo timetableReader, redisClient *redis.Client, metrics cacheMetricsRecorder, logger *zap.Logger, cacheTTL time.Duration) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &TimetableService{
		repo:     repo,
		redis:    redisClient,
		metrics:  metrics,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
		cacheTTL: cacheTTL,
	}
}

// Latest returns the newest timetable with its slots, served from
// cache when possible.
func (s *TimetableService) Latest(ctx context.Context) (*dto.TimetableResponse, error) {
	if cached := s.readCache(ctx); cached != nil {
		return cached, nil
	}

	header, err := s.repo.GetLatest(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load latest timetable")
	}
	if header == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no timetable has been generated yet")
	}

	resp, err := s.buildResponse(ctx, header)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, resp)
	return resp, nil
}

// Get returns one timetable with its slots.
func (s *TimetableService) Get(ctx context.Context, id string) (*dto.TimetableResponse, error) {
	header, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	return s.buildResponse(ctx, header)
}

// Versions lists every stored timetable header, newest first.
func (s *TimetableService) Versions(ctx context.Context) ([]dto.TimetableResponse, error) {
	headers, err := s.repo.ListVersions(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetables")
	}
	list := make([]dto.TimetableResponse, len(headers))
	for i, header := range headers {
		list[i] = headerResponse(&header)
	}
	return list, nil
}

// Publish moves a draft timetable to PUBLISHED and drops the cache.
func (s *TimetableService) Publish(ctx context.Context, id string) error {
	if err := s.repo.UpdateStatus(ctx, id, models.TimetableStatusPublished); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish timetable")
	}
	s.InvalidateLatest(ctx)
	return nil
}

// Stats summarises occupancy and conflict markers of one timetable.
func (s *TimetableService) Stats(ctx context.Context, id string) (*dto.TimetableStatsResponse, error) {
	resp, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	stats := &dto.TimetableStatsResponse{
		TimetableID: resp.ID,
		Version:     resp.Version,
		TotalSlots:  len(resp.Slots),
		Fitness:     resp.Fitness,
	}
	hardTags := make(map[int]struct{})
	softTags := make(map[int]struct{})
	for _, slot := range resp.Slots {
		if slot.SectionTag == nil {
			continue
		}
		stats.OccupiedSlots++
		switch slot.Status {
		case "red":
			hardTags[*slot.SectionTag] = struct{}{}
		case "yellow":
			softTags[*slot.SectionTag] = struct{}{}
		}
	}
	stats.EmptySlots = stats.TotalSlots - stats.OccupiedSlots
	stats.HardConflicts = len(hardTags)
	stats.SoftConflicts = len(softTags)
	return stats, nil
}

// ExportCSV renders one timetable as CSV.
func (s *TimetableService) ExportCSV(ctx context.Context, id string) ([]byte, string, error) {
	resp, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	payload, err := s.csv.Render(timetableDataset(resp))
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render CSV")
	}
	return payload, fmt.Sprintf("timetable-v%d.csv", resp.Version), nil
}

// ExportPDF renders one timetable as PDF.
func (s *TimetableService) ExportPDF(ctx context.Context, id string) ([]byte, string, error) {
	resp, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	title := fmt.Sprintf("Course Timetable v%d", resp.Version)
	payload, err := s.pdf.Render(timetableDataset(resp), title)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render PDF")
	}
	return payload, fmt.Sprintf("timetable-v%d.pdf", resp.Version), nil
}

// InvalidateLatest drops the cached latest timetable. Called after a
// run persists a new version.
func (s *TimetableService) InvalidateLatest(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, latestTimetableCacheKey).Err(); err != nil {
		s.logger.Sugar().Warnw("failed to invalidate timetable cache", "error", err)
	}
}

func (s *TimetableService) buildResponse(ctx context.Context, header *models.Timetable) (*dto.TimetableResponse, error) {
	slots, err := s.repo.ListSlots(ctx, header.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable slots")
	}

	resp := headerResponse(header)
	resp.Slots = make([]dto.TimetableSlotResponse, len(slots))
	for i, slot := range slots {
		resp.Slots[i] = dto.TimetableSlotResponse{
			SlotIndex:   slot.SlotIndex,
			Day:         slot.Day,
			Room:        slot.Room,
			StartTime:   slot.StartTime,
			EndTime:     slot.EndTime,
			SectionTag:  slot.SectionTag,
			CourseName:  slot.CourseName,
			TeacherName: slot.TeacherName,
			ClassGroup:  slot.ClassGroup,
			Semester:    slot.Semester,
			Credits:     slot.Credits,
			Delivery:    slot.Delivery,
			Status:      slot.Status,
		}
	}
	return &resp, nil
}

func (s *TimetableService) readCache(ctx context.Context) *dto.TimetableResponse {
	if s.redis == nil {
		return nil
	}
	raw, err := s.redis.Get(ctx, latestTimetableCacheKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Sugar().Warnw("timetable cache read failed", "error", err)
		}
		if s.metrics != nil {
			s.metrics.RecordCacheOperation(false)
		}
		return nil
	}
	var resp dto.TimetableResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		s.logger.Sugar().Warnw("timetable cache entry corrupt", "error", err)
		return nil
	}
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(true)
	}
	return &resp
}

func (s *TimetableService) writeCache(ctx context.Context, resp *dto.TimetableResponse) {
	if s.redis == nil {
		return
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, latestTimetableCacheKey, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Sugar().Warnw("timetable cache write failed", "error", err)
	}
}

func headerResponse(header *models.Timetable) dto.TimetableResponse {
	return dto.TimetableResponse{
		ID:          header.ID,
		RunID:       header.RunID,
		Version:     header.Version,
		Status:      string(header.Status),
		Fitness:     header.Fitness,
		Generations: header.Generations,
		CreatedAt:   header.CreatedAt,
	}
}

// timetableDataset flattens occupied slots for file export. Empty
// cells are skipped; rows keep grid order.
func timetableDataset(resp *dto.TimetableResponse) export.Dataset {
	headers := []string{"Day", "Room", "Start", "End", "Course", "Teacher", "Class Group", "Semester", "Credits", "Delivery", "Status"}
	rows := make([]map[string]string, 0, len(resp.Slots))
	for _, slot := range resp.Slots {
		if slot.SectionTag == nil {
			continue
		}
		row := map[string]string{
			"Day":      slot.Day,
			"Room":     slot.Room,
			"Start":    slot.StartTime,
			"End":      slot.EndTime,
			"Status":   slot.Status,
			"Semester": "",
			"Credits":  "",
		}
		if slot.CourseName != nil {
			row["Course"] = *slot.CourseName
		}
		if slot.TeacherName != nil {
			row["Teacher"] = *slot.TeacherName
		}
		if slot.ClassGroup != nil {
			row["Class Group"] = *slot.ClassGroup
		}
		if slot.Semester != nil {
			row["Semester"] = fmt.Sprintf("%d", *slot.Semester)
		}
		if slot.Credits != nil {
			row["Credits"] = fmt.Sprintf("%d", *slot.Credits)
		}
		if slot.Delivery != nil {
			row["Delivery"] = *slot.Delivery
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
