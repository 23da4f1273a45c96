package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Handlers groups every route handler of the API.
type Handlers struct {
	Health   *HealthHandler
	Analysis *AnalysisHandler
	Jobs     *JobHandler
	Alerts   *AlertHandler
}

// NewRouter builds the Echo server with the /api/v1 routes.
func NewRouter(h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	api := e.Group("/api/v1")
	h.Health.RegisterRoutes(api.Group("/health"))
	h.Analysis.RegisterRoutes(api.Group("/analysis"))
	h.Jobs.RegisterRoutes(api.Group("/jobs"))
	h.Alerts.RegisterRoutes(api.Group("/alerts"))
	return e
}
