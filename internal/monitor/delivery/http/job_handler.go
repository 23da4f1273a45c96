package http

import (
	"errors"
	"net/http"

	"golang-market-alert/internal/monitor/dto"
	"golang-market-alert/internal/monitor/scheduler"
	"golang-market-alert/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RunJobRequest optionally overrides the configured job params.
type RunJobRequest struct {
	Params map[string]any `json:"params"`
}

// JobHandler handles HTTP requests for jobs.
type JobHandler struct {
	scheduler scheduler.SchedulerService
	logger    *logger.Logger
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(s scheduler.SchedulerService, logger *logger.Logger) *JobHandler {
	return &JobHandler{scheduler: s, logger: logger}
}

// RegisterRoutes registers the job routes to the Echo group.
func (h *JobHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListJobs)
	g.POST("/:name/run", h.RunJob)
}

// ListJobs returns every configured job with its next run.
func (h *JobHandler) ListJobs(c echo.Context) error {
	return c.JSON(http.StatusOK, h.scheduler.Jobs())
}

// RunJob runs a job immediately and returns its result.
func (h *JobHandler) RunJob(c echo.Context) error {
	var req RunJobRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
		}
	}

	exec, err := h.scheduler.RunJob(c.Request().Context(), c.Param("name"), req.Params)
	switch {
	case errors.Is(err, scheduler.ErrJobNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, scheduler.ErrJobRunning):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case exec == nil:
		h.logger.Error("Failed to run job", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to run job"})
	}

	resp := dto.RunJobResponse{
		RunID:  exec.RunID,
		Job:    exec.JobName,
		Status: exec.Status,
		Result: exec.Result,
		Error:  exec.Error,
	}
	if err != nil {
		return c.JSON(http.StatusBadGateway, resp)
	}
	return c.JSON(http.StatusOK, resp)
}
