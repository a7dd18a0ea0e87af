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

type timetableProvider interface {
	Latest(ctx context.Context) (*dto.TimetableResponse, error)
	Get(ctx context.Context, id string) (*dto.TimetableResponse, error)
	Versions(ctx context.Context) ([]dto.TimetableResponse, error)
	Publish(ctx context.Context, id string) error
	Stats(ctx context.Context, id string) (*dto.TimetableStatsResponse, error)
	ExportCSV(ctx context.Context, id string) ([]byte, string, error)
	ExportPDF(ctx context.Context, id string) ([]byte, string, error)
}

// TimetableHandler exposes stored timetable endpoints.
type TimetableHandler struct {
	service timetableProvider
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Latest returns the newest timetable with its slots.
func (h *TimetableHandler) Latest(c *gin.Context) {
	resp, err := h.service.Latest(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// Get returns one timetable by id.
func (h *TimetableHandler) Get(c *gin.Context) {
	resp, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// Versions lists stored timetable headers, newest first.
func (h *TimetableHandler) Versions(c *gin.Context) {
	resp, err := h.service.Versions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// Publish moves a draft timetable to PUBLISHED.
func (h *TimetableHandler) Publish(c *gin.Context) {
	if err := h.service.Publish(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Stats summarises one timetable.
func (h *TimetableHandler) Stats(c *gin.Context) {
	resp, err := h.service.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// Export renders one timetable as a downloadable file. The format
// query parameter selects csv (default) or pdf.
func (h *TimetableHandler) Export(c *gin.Context) {
	var (
		payload     []byte
		filename    string
		contentType string
		err         error
	)
	switch c.DefaultQuery("format", "csv") {
	case "csv":
		payload, filename, err = h.service.ExportCSV(c.Request.Context(), c.Param("id"))
		contentType = "text/csv"
	case "pdf":
		payload, filename, err = h.service.ExportPDF(c.Request.Context(), c.Param("id"))
		contentType = "application/pdf"
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, payload)
}
