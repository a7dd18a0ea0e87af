package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/naufalhakm/timetable-api/internal/dto"
	"github.com/naufalhakm/timetable-api/internal/service"
	appErrors "github.com/naufalhakm/timetable-api/pkg/errors"
	"github.com/naufalhakm/timetable-api/pkg/response"
)

type preferenceManager interface {
	ListTeacherPreferences(ctx context.Context) ([]dto.TeacherPreferenceResponse, error)
	UpsertTeacherPreference(ctx context.Context, req dto.UpsertTeacherPreferenceRequest) error
	GetProgramPreference(ctx context.Context) (*dto.ProgramPreferenceResponse, error)
	SetProgramPreference(ctx context.Context, req dto.SetProgramPreferenceRequest) error
}

// PreferenceHandler exposes scheduling preference endpoints.
type PreferenceHandler struct {
	service preferenceManager
}

// NewPreferenceHandler constructs the handler.
func NewPreferenceHandler(svc *service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{service: svc}
}

// ListTeacherPreferences returns every stored teacher preference.
func (h *PreferenceHandler) ListTeacherPreferences(c *gin.Context) {
	prefs, err := h.service.ListTeacherPreferences(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, prefs)
}

// UpsertTeacherPreference replaces one teacher's preference.
func (h *PreferenceHandler) UpsertTeacherPreference(c *gin.Context) {
	var req dto.UpsertTeacherPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid teacher preference payload"))
		return
	}
	if err := h.service.UpsertTeacherPreference(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// GetProgramPreference returns the program-wide restriction.
func (h *PreferenceHandler) GetProgramPreference(c *gin.Context) {
	pref, err := h.service.GetProgramPreference(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pref)
}

// SetProgramPreference stores a new program-wide restriction.
func (h *PreferenceHandler) SetProgramPreference(c *gin.Context) {
	var req dto.SetProgramPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid program preference payload"))
		return
	}
	if err := h.service.SetProgramPreference(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
