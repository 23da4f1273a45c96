package http

import (
	"net/http"
	"time"

	"golang-market-alert/internal/monitor/dto"
	"golang-market-alert/pkg/config"

	"github.com/labstack/echo/v4"
)

type HealthHandler struct {
	app config.App
	now func() time.Time
}

func NewHealthHandler(app config.App) *HealthHandler {
	return &HealthHandler{app: app, now: time.Now}
}

func (h *HealthHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.Health)
}

func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.HealthResponse{
		Status:  "ok",
		App:     h.app.Name,
		Version: h.app.Version,
		Time:    h.now().UTC(),
	})
}
