package service

import (
	"context"
	"encoding/json"

	"github.com/go-playground/validator/v10"

	"github.com/naufalhakm/timetable-api/internal/dto"
	"github.com/naufalhakm/timetable-api/internal/models"
	appErrors "github.com/naufalhakm/timetable-api/pkg/errors"
)

type preferenceStore interface {
	ListTeacherPreferences(ctx context.Context) ([]models.TeacherSchedulingPreference, error)
	UpsertTeacherPreference(ctx context.Context, pref *models.TeacherSchedulingPreference) error
	GetProgramPreference(ctx context.Context) (*models.ProgramSchedulingPreference, error)
	SetProgramPreference(ctx context.Context, pref *models.ProgramSchedulingPreference) error
}

// PreferenceService manages teacher and program scheduling wishes.
type PreferenceService struct {
	repo      preferenceStore
	validator *validator.Validate
}

// NewPreferenceService wires the preference store.
func NewPreferenceService(repo preferenceStore, validate *validator.Validate) *PreferenceService {
	if validate == nil {
		validate = validator.New()
	}
	return &PreferenceService{repo: repo, validator: validate}
}

// ListTeacherPreferences returns every stored teacher preference.
func (s *PreferenceService) ListTeacherPreferences(ctx context.Context) ([]dto.TeacherPreferenceResponse, error) {
	prefs, err := s.repo.ListTeacherPreferences(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teacher preferences")
	}
	list := make([]dto.TeacherPreferenceResponse, len(prefs))
	for i, pref := range prefs {
		days, err := decodeDayList(pref.RestrictedDays)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "malformed restricted days")
		}
		list[i] = dto.TeacherPreferenceResponse{
			TeacherID:      pref.TeacherID,
			RestrictedDays: days,
			AllowedStart:   pref.AllowedStart,
			AllowedEnd:     pref.AllowedEnd,
		}
	}
	return list, nil
}

// UpsertTeacherPreference replaces the preference of one teacher. Both
// window ends must be given together.
func (s *PreferenceService) UpsertTeacherPreference(ctx context.Context, req dto.UpsertTeacherPreferenceRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher preference payload")
	}
	if (req.AllowedStart == nil) != (req.AllowedEnd == nil) {
		return appErrors.Clone(appErrors.ErrValidation, "allowedStart and allowedEnd must be set together")
	}

	days, err := json.Marshal(req.RestrictedDays)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode restricted days")
	}
	pref := &models.TeacherSchedulingPreference{
		TeacherID:      req.TeacherID,
		RestrictedDays: days,
		AllowedStart:   req.AllowedStart,
		AllowedEnd:     req.AllowedEnd,
	}
	if err := s.repo.UpsertTeacherPreference(ctx, pref); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store teacher preference")
	}
	return nil
}

// GetProgramPreference returns the program-wide restriction, empty
// when none is stored.
func (s *PreferenceService) GetProgramPreference(ctx context.Context) (*dto.ProgramPreferenceResponse, error) {
	pref, err := s.repo.GetProgramPreference(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program preference")
	}
	if pref == nil {
		return &dto.ProgramPreferenceResponse{}, nil
	}
	days, err := decodeDayList(pref.RestrictedDays)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "malformed program restricted days")
	}
	return &dto.ProgramPreferenceResponse{
		RestrictedDays: days,
		WindowStart:    pref.WindowStart,
		WindowEnd:      pref.WindowEnd,
	}, nil
}

// SetProgramPreference stores a new program-wide restriction.
func (s *PreferenceService) SetProgramPreference(ctx context.Context, req dto.SetProgramPreferenceRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid program preference payload")
	}
	if (req.WindowStart == nil) != (req.WindowEnd == nil) {
		return appErrors.Clone(appErrors.ErrValidation, "windowStart and windowEnd must be set together")
	}

	days, err := json.Marshal(req.RestrictedDays)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode restricted days")
	}
	pref := &models.ProgramSchedulingPreference{
		RestrictedDays: days,
		WindowStart:    req.WindowStart,
		WindowEnd:      req.WindowEnd,
	}
	if err := s.repo.SetProgramPreference(ctx, pref); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store program preference")
	}
	return nil
}
