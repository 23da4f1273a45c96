package http

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"golang-market-alert/internal/monitor/repository"
	"golang-market-alert/internal/monitor/service"
	"golang-market-alert/pkg/logger"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

var symbolPattern = regexp.MustCompile(`^[A-Z][A-Z0-9.\-]{0,9}$`)

// AnalysisHandler serves on-demand stock analysis.
type AnalysisHandler struct {
	analyzer service.StockAnalyzerService
	history  repository.StockRecommendationRepository
	logger   *logger.Logger
}

func NewAnalysisHandler(analyzer service.StockAnalyzerService, history repository.StockRecommendationRepository, logger *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{analyzer: analyzer, history: history, logger: logger}
}

func (h *AnalysisHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/:symbol", h.Analyze)
	g.GET("/:symbol/latest", h.Latest)
}

// Analyze returns the recommendation for a symbol.
func (h *AnalysisHandler) Analyze(c echo.Context) error {
	symbol := strings.ToUpper(c.Param("symbol"))
	if !symbolPattern.MatchString(symbol) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid symbol"})
	}

	result, err := h.analyzer.Analyze(c.Request().Context(), symbol)
	if err != nil {
		var statusErr *repository.StatusError
		if errors.Is(err, repository.ErrNoData) || (errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "No market data for " + symbol})
		}
		h.logger.Error("Failed to analyze stock", logger.StringField("symbol", symbol), logger.ErrorField(err))
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "Failed to analyze stock"})
	}
	return c.JSON(http.StatusOK, result)
}

// Latest returns the most recent stored recommendation without fetching market data.
func (h *AnalysisHandler) Latest(c echo.Context) error {
	symbol := strings.ToUpper(c.Param("symbol"))
	if !symbolPattern.MatchString(symbol) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid symbol"})
	}

	rec, err := h.history.LatestBySymbol(c.Request().Context(), symbol)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "No stored recommendation for " + symbol})
		}
		h.logger.Error("Failed to load recommendation", logger.StringField("symbol", symbol), logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to load recommendation"})
	}
	return c.JSON(http.StatusOK, rec)
}
