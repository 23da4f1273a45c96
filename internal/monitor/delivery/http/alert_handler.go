package http

import (
	"net/http"
	"strconv"

	"golang-market-alert/internal/monitor/dto"
	"golang-market-alert/internal/monitor/repository"
	"golang-market-alert/pkg/logger"

	"github.com/labstack/echo/v4"
)

const (
	defaultAlertLimit = 20
	maxAlertLimit     = 200
)

// AlertHandler lists delivered alerts.
type AlertHandler struct {
	alerts repository.NewsAlertRepository
	logger *logger.Logger
}

func NewAlertHandler(alerts repository.NewsAlertRepository, logger *logger.Logger) *AlertHandler {
	return &AlertHandler{alerts: alerts, logger: logger}
}

func (h *AlertHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListAlerts)
}

// ListAlerts returns the most recent alerts, newest first.
func (h *AlertHandler) ListAlerts(c echo.Context) error {
	limit := defaultAlertLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid limit"})
		}
		limit = min(n, maxAlertLimit)
	}

	alerts, err := h.alerts.ListRecent(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list alerts", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to list alerts"})
	}

	resp := make([]dto.AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		resp = append(resp, dto.NewAlertResponse(a))
	}
	return c.JSON(http.StatusOK, resp)
}
