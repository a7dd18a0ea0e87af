package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/naufalhakm/timetable-api/internal/models"
	"github.com/naufalhakm/timetable-api/internal/service"
	"github.com/naufalhakm/timetable-api/pkg/response"
)

type catalogProvider interface {
	Days(ctx context.Context) ([]models.Day, error)
	Rooms(ctx context.Context) ([]models.Room, error)
	TimeBins(ctx context.Context) ([]models.TimeBin, error)
	Teachers(ctx context.Context) ([]models.Teacher, error)
	Courses(ctx context.Context) ([]models.Course, error)
	Sections(ctx context.Context) ([]models.Section, error)
}

// CatalogHandler exposes the read-only catalog endpoints the
// timetable UI renders its pickers from.
type CatalogHandler struct {
	service catalogProvider
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

func (h *CatalogHandler) Days(c *gin.Context) {
	days, err := h.service.Days(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, days)
}

func (h *CatalogHandler) Rooms(c *gin.Context) {
	rooms, err := h.service.Rooms(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rooms)
}

func (h *CatalogHandler) TimeBins(c *gin.Context) {
	bins, err := h.service.TimeBins(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bins)
}

func (h *CatalogHandler) Teachers(c *gin.Context) {
	teachers, err := h.service.Teachers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers)
}

func (h *CatalogHandler) Courses(c *gin.Context) {
	courses, err := h.service.Courses(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses)
}

func (h *CatalogHandler) Sections(c *gin.Context) {
	sections, err := h.service.Sections(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sections)
}
