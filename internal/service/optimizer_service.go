package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/naufalhakm/timetable-api/internal/dto"
	"github.com/naufalhakm/timetable-api/internal/models"
	"github.com/naufalhakm/timetable-api/internal/scheduler"
	appErrors "github.com/naufalhakm/timetable-api/pkg/errors"
	"github.com/naufalhakm/timetable-api/pkg/jobs"
)

type catalogFetcher interface {
	ListDays(ctx context.Context) ([]models.Day, error)
	ListRooms(ctx context.Context) ([]models.Room, error)
	ListTimeBins(ctx context.Context) ([]models.TimeBin, error)
	ListSections(ctx context.Context) ([]models.Section, error)
}

type preferenceFetcher interface {
	ListTeacherPreferences(ctx context.Context) ([]models.TeacherSchedulingPreference, error)
	GetProgramPreference(ctx context.Context) (*models.ProgramSchedulingPreference, error)
}

type timetableWriter interface {
	Create(ctx context.Context, timetable *models.Timetable, slots []models.TimetableSlot) error
}

type latestInvalidator interface {
	InvalidateLatest(ctx context.Context)
}

type runMetricsRecorder interface {
	RecordRun(state string, generations int, fitness float64, duration time.Duration)
}

// OptimizerService owns the run lifecycle: it snapshots the catalog,
// enqueues the search on the worker pool, streams progress through the
// broker and persists the winning timetable.
type OptimizerService struct {
	catalog     catalogFetcher
	preferences preferenceFetcher
	timetables  timetableWriter
	invalidator latestInvalidator
	metrics     runMetricsRecorder
	broker      *ProgressBroker
	queue       *jobs.Queue
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         OptimizerServiceConfig

	mu   sync.RWMutex
	runs map[string]*optimizationRun
}

// OptimizerServiceConfig governs run defaults.
type OptimizerServiceConfig struct {
	Workers               int
	DefaultPopulationSize int
	DefaultIterations     int
	RestartProbability    float64
	RelaxedGapMinutes     int
	ProgressBufferSize    int
}

type optimizationRun struct {
	RunID       string
	State       string
	BestFitness *float64
	Generations int
	Unplaced    int
	TimetableID *string
	Err         string
	StartedAt   time.Time
	FinishedAt  *time.Time

	inputs *scheduler.ScheduleInputs
	req    dto.StartOptimizationRequest
}

// NewOptimizerService wires the optimizer dependencies and starts the
// worker pool. Stop must be called on shutdown.
func NewOptimizerService(
	catalog catalogFetcher,
	preferences preferenceFetcher,
	timetables timetableWriter,
	invalidator latestInvalidator,
	metrics runMetricsRecorder,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg OptimizerServiceConfig,
) *OptimizerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	s := &OptimizerService{
		catalog:     catalog,
		preferences: preferences,
		timetables:  timetables,
		invalidator: invalidator,
		metrics:     metrics,
		broker:      NewProgressBroker(cfg.ProgressBufferSize),
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
		runs:        make(map[string]*optimizationRun),
	}
	s.queue = jobs.NewQueue("optimizer", s.handleRunJob, jobs.QueueConfig{
		Workers: cfg.Workers,
		Logger:  logger,
	})
	return s
}

// Start launches the worker pool.
func (s *OptimizerService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the worker pool.
func (s *OptimizerService) Stop() {
	s.queue.Stop()
}

// Broker exposes the progress broker for streaming handlers.
func (s *OptimizerService) Broker() *ProgressBroker {
	return s.broker
}

// StartRun validates the request, snapshots the catalog and enqueues
// the search. Snapshot errors surface here so a run that cannot start
// never occupies a worker.
func (s *OptimizerService) StartRun(ctx context.Context, req dto.StartOptimizationRequest) (*dto.OptimizationRunResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid optimization request")
	}
	if req.PopulationSize == 0 {
		req.PopulationSize = s.cfg.DefaultPopulationSize
	}
	if req.MaxIterations == 0 {
		req.MaxIterations = s.cfg.DefaultIterations
	}
	if err := (scheduler.SearchConfig{PopulationSize: req.PopulationSize, MaxIterations: req.MaxIterations}).Validate(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	inputs, err := s.snapshotInputs(ctx)
	if err != nil {
		return nil, err
	}
	if len(inputs.Sections) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no course sections defined; seed the catalog first")
	}

	run := &optimizationRun{
		RunID:     uuid.NewString(),
		State:     string(scheduler.StateInit),
		StartedAt: time.Now().UTC(),
		inputs:    inputs,
		req:       req,
	}
	s.mu.Lock()
	s.runs[run.RunID] = run
	s.mu.Unlock()

	resp := run.toResponse()
	if err := s.queue.Enqueue(jobs.Job{ID: run.RunID, Type: "optimize", Payload: run.RunID}); err != nil {
		s.mu.Lock()
		delete(s.runs, run.RunID)
		s.mu.Unlock()
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue optimization run")
	}
	return &resp, nil
}

// GetRun returns the current state of one run.
func (s *OptimizerService) GetRun(runID string) (*dto.OptimizationRunResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[runID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "optimization run not found")
	}
	resp := run.toResponse()
	return &resp, nil
}

// GetResult returns the persisted timetable id of a finished run.
func (s *OptimizerService) GetResult(runID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[runID]
	if !ok {
		return "", appErrors.Clone(appErrors.ErrNotFound, "optimization run not found")
	}
	if run.FinishedAt == nil {
		return "", appErrors.Clone(appErrors.ErrRunNotFinished, "")
	}
	if run.TimetableID == nil {
		return "", appErrors.Clone(appErrors.ErrConflict, "run finished without a stored timetable: "+run.Err)
	}
	return *run.TimetableID, nil
}

// ListRuns returns every known run, newest first.
func (s *OptimizerService) ListRuns() []dto.OptimizationRunResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]dto.OptimizationRunResponse, 0, len(s.runs))
	for _, run := range s.runs {
		list = append(list, run.toResponse())
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].StartedAt.After(list[j].StartedAt)
	})
	return list
}

func (s *OptimizerService) handleRunJob(ctx context.Context, job jobs.Job) error {
	runID, _ := job.Payload.(string)
	s.mu.RLock()
	run, ok := s.runs[runID]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("run %s missing from store", runID)
	}

	opt, err := scheduler.New(run.inputs, scheduler.SearchConfig{
		PopulationSize:     run.req.PopulationSize,
		MaxIterations:      run.req.MaxIterations,
		RestartProbability: s.cfg.RestartProbability,
		RelaxedGapMinutes:  s.cfg.RelaxedGapMinutes,
		Seed:               run.req.Seed,
	}, s.logger)
	if err != nil {
		s.finishWithError(run, err)
		return err
	}

	s.setState(run, string(scheduler.StateIterating))
	opt.OnProgress(func(msg string) {
		s.broker.Publish(runID, dto.ProgressEvent{RunID: runID, Message: msg})
	})

	result, err := opt.Run(ctx)
	if err != nil {
		s.finishWithError(run, err)
		return err
	}

	timetableID, err := s.persistResult(ctx, run, result)
	if err != nil {
		s.finishWithError(run, err)
		return err
	}

	now := time.Now().UTC()
	fitness := result.Fitness
	s.mu.Lock()
	run.State = string(result.State)
	run.BestFitness = &fitness
	run.Generations = result.Generations
	run.Unplaced = len(result.Unplaced)
	run.TimetableID = &timetableID
	run.FinishedAt = &now
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordRun(string(result.State), result.Generations, result.Fitness, result.Elapsed)
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateLatest(ctx)
	}
	s.broker.CloseRun(runID)
	return nil
}

// snapshotInputs loads the catalog and preferences and freezes them
// into the optimizer's input form.
func (s *OptimizerService) snapshotInputs(ctx context.Context) (*scheduler.ScheduleInputs, error) {
	days, err := s.catalog.ListDays(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load days")
	}
	rooms, err := s.catalog.ListRooms(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	bins, err := s.catalog.ListTimeBins(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time bins")
	}
	sections, err := s.catalog.ListSections(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sections")
	}
	teacherPrefs, err := s.preferences.ListTeacherPreferences(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher preferences")
	}
	programPref, err := s.preferences.GetProgramPreference(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program preference")
	}

	dayNames := make([]string, len(days))
	for i, day := range days {
		dayNames[i] = day.Name
	}
	roomNames := make([]string, len(rooms))
	for i, room := range rooms {
		roomNames[i] = room.Name
	}
	schedBins := make([]scheduler.TimeBin, len(bins))
	for i, bin := range bins {
		schedBins[i] = scheduler.TimeBin{Start: bin.Start, End: bin.End}
	}
	schedSections := make([]scheduler.Section, len(sections))
	for i, sec := range sections {
		schedSections[i] = scheduler.Section{
			CourseID:    sec.CourseID,
			CourseName:  sec.CourseName,
			TeacherID:   sec.TeacherID,
			TeacherName: sec.TeacherName,
			ClassGroup:  sec.ClassGroup,
			Semester:    sec.Semester,
			Credits:     sec.Credits,
			Delivery:    sec.Delivery,
		}
	}

	schedPrefs := make([]scheduler.TeacherPreference, 0, len(teacherPrefs))
	for _, pref := range teacherPrefs {
		restricted, err := decodeDayList(pref.RestrictedDays)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
				fmt.Sprintf("malformed restricted days for teacher %d", pref.TeacherID))
		}
		sp := scheduler.TeacherPreference{TeacherID: pref.TeacherID, RestrictedDays: restricted}
		if pref.AllowedStart != nil {
			sp.AllowedStart = *pref.AllowedStart
		}
		if pref.AllowedEnd != nil {
			sp.AllowedEnd = *pref.AllowedEnd
		}
		schedPrefs = append(schedPrefs, sp)
	}

	var schedProgram scheduler.ProgramPreference
	if programPref != nil {
		restricted, err := decodeDayList(programPref.RestrictedDays)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "malformed program restricted days")
		}
		schedProgram.RestrictedDays = restricted
		if programPref.WindowStart != nil && programPref.WindowEnd != nil {
			schedProgram.Windows = []scheduler.TimeBin{{Start: *programPref.WindowStart, End: *programPref.WindowEnd}}
		}
	}

	inputs, err := scheduler.NewScheduleInputs(dayNames, roomNames, schedBins, schedSections, schedPrefs, schedProgram)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPreconditionFailed.Code, appErrors.ErrPreconditionFailed.Status, err.Error())
	}
	return inputs, nil
}

// persistResult stores the best assignment as a draft timetable.
func (s *OptimizerService) persistResult(ctx context.Context, run *optimizationRun, result *scheduler.Result) (string, error) {
	grid := result.Best.Grid()
	slots := make([]models.TimetableSlot, 0, grid.Len())
	for i := 0; i < grid.Len(); i++ {
		cell := grid.Slot(i)
		slot := models.TimetableSlot{
			SlotIndex: cell.Index,
			Day:       cell.Day,
			Room:      cell.Room,
			StartTime: cell.Start,
			EndTime:   cell.End,
		}
		if tag := result.Best.Tag(i); tag != 0 {
			if sec, ok := run.inputs.SectionByTag(tag); ok {
				slot.SectionTag = &tag
				slot.CourseID = &sec.CourseID
				slot.CourseName = &sec.CourseName
				slot.TeacherID = &sec.TeacherID
				slot.TeacherName = &sec.TeacherName
				slot.ClassGroup = &sec.ClassGroup
				slot.Semester = &sec.Semester
				slot.Credits = &sec.Credits
				slot.Delivery = &sec.Delivery
				slot.Status = result.Statuses[tag]
			}
		}
		slots = append(slots, slot)
	}

	meta, err := json.Marshal(map[string]any{
		"populationSize":   run.req.PopulationSize,
		"maxIterations":    run.req.MaxIterations,
		"state":            string(result.State),
		"unplacedSections": len(result.Unplaced),
		"elapsedMs":        result.Elapsed.Milliseconds(),
	})
	if err != nil {
		return "", fmt.Errorf("marshal timetable meta: %w", err)
	}

	timetable := &models.Timetable{
		RunID:       run.RunID,
		Status:      models.TimetableStatusDraft,
		Fitness:     result.Fitness,
		Generations: result.Generations,
		Meta:        meta,
	}
	if err := s.timetables.Create(ctx, timetable, slots); err != nil {
		return "", err
	}
	return timetable.ID, nil
}

func (s *OptimizerService) setState(run *optimizationRun, state string) {
	s.mu.Lock()
	run.State = state
	s.mu.Unlock()
}

func (s *OptimizerService) finishWithError(run *optimizationRun, err error) {
	now := time.Now().UTC()
	s.mu.Lock()
	run.State = "FAILED"
	run.Err = err.Error()
	run.FinishedAt = &now
	s.mu.Unlock()
	s.broker.CloseRun(run.RunID)
	s.logger.Sugar().Errorw("optimization run failed", "run_id", run.RunID, "error", err)
}

func (r *optimizationRun) toResponse() dto.OptimizationRunResponse {
	return dto.OptimizationRunResponse{
		RunID:       r.RunID,
		State:       r.State,
		BestFitness: r.BestFitness,
		Generations: r.Generations,
		Unplaced:    r.Unplaced,
		TimetableID: r.TimetableID,
		Error:       r.Err,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
	}
}

func decodeDayList(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var days []string
	if err := json.Unmarshal(raw, &days); err != nil {
		return nil, err
	}
	return days, nil
}
