package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/naufalhakm/timetable-api/internal/dto"
	"github.com/naufalhakm/timetable-api/internal/service"
	appErrors "github.com/naufalhakm/timetable-api/pkg/errors"
	"github.com/naufalhakm/timetable-api/pkg/response"
)

type optimizerRunner interface {
	StartRun(ctx context.Context, req dto.StartOptimizationRequest) (*dto.OptimizationRunResponse, error)
	GetRun(runID string) (*dto.OptimizationRunResponse, error)
	GetResult(runID string) (string, error)
	ListRuns() []dto.OptimizationRunResponse
	Broker() *service.ProgressBroker
}

// OptimizerHandler exposes the optimization run endpoints.
type OptimizerHandler struct {
	service optimizerRunner
}

// NewOptimizerHandler constructs the handler.
func NewOptimizerHandler(svc *service.OptimizerService) *OptimizerHandler {
	return &OptimizerHandler{service: svc}
}

// StartRun launches an optimization run and returns 202 with the run
// id; the search itself happens on the worker pool.
func (h *OptimizerHandler) StartRun(c *gin.Context) {
	var req dto.StartOptimizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid optimization payload"))
		return
	}
	run, err := h.service.StartRun(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, run)
}

// GetRun reports the state of one run.
func (h *OptimizerHandler) GetRun(c *gin.Context) {
	run, err := h.service.GetRun(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, run)
}

// GetResult resolves a finished run to its stored timetable id. While
// the run is still iterating it answers 409.
func (h *OptimizerHandler) GetResult(c *gin.Context) {
	timetableID, err := h.service.GetResult(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"timetableId": timetableID})
}

// ListRuns reports every known run, newest first.
func (h *OptimizerHandler) ListRuns(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.ListRuns())
}

// Progress streams per-generation updates for one run as server-sent
// events. The stream replays earlier generations, then follows the
// run live until it finishes or the client disconnects.
func (h *OptimizerHandler) Progress(c *gin.Context) {
	runID := c.Param("id")
	if _, err := h.service.GetRun(runID); err != nil {
		response.Error(c, err)
		return
	}

	events, cancel := h.service.Broker().Subscribe(runID)
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case event, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("progress", event)
			return true
		}
	})
}
