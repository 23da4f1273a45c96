package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang-market-alert/internal/entity"
	"golang-market-alert/internal/monitor/config"
	"golang-market-alert/internal/monitor/dto"
	"golang-market-alert/pkg/logger"
	"golang-market-alert/pkg/utils"
)

// EarningsRepository reads the earnings calendar.
type EarningsRepository interface {
	Enabled() bool
	Calendar(ctx context.Context, from, to time.Time) ([]entity.EarningsEvent, error)
}

type earningsRepository struct {
	cfg  config.Earnings
	log  *logger.Logger
	http *httpGetter
}

// NewEarningsRepository creates a Financial Modeling Prep calendar repository.
func NewEarningsRepository(cfg config.Earnings, log *logger.Logger) EarningsRepository {
	return &earningsRepository{
		cfg: cfg,
		log: log,
		http: &httpGetter{
			log:        log,
			httpClient: &http.Client{Timeout: 10 * time.Second},
			limiter:    newLimiter(60),
			source:     "earnings",
		},
	}
}

func (r *earningsRepository) Enabled() bool {
	return r.cfg.APIKey != ""
}

// Calendar returns every event between from and to. DaysUntil is counted from from.
func (r *earningsRepository) Calendar(ctx context.Context, from, to time.Time) ([]entity.EarningsEvent, error) {
	if !r.Enabled() {
		return nil, nil
	}

	q := url.Values{}
	q.Set("from", from.Format(utils.DateLayout))
	q.Set("to", to.Format(utils.DateLayout))
	q.Set("apikey", r.cfg.APIKey)

	body, err := r.http.get(ctx, r.cfg.BaseURL+"/api/v3/earning_calendar?"+q.Encode(), "application/json")
	if err != nil {
		return nil, err
	}

	var rows []dto.EarningsCalendarItem
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse earnings calendar: %w", err)
	}

	events := make([]entity.EarningsEvent, 0, len(rows))
	for _, row := range rows {
		date, err := time.ParseInLocation(utils.DateLayout, row.Date, from.Location())
		if err != nil {
			r.log.DebugContext(ctx, "Skipping earnings row", logger.StringField("symbol", row.Symbol), logger.ErrorField(err))
			continue
		}
		events = append(events, entity.EarningsEvent{
			Symbol:       strings.ToUpper(row.Symbol),
			Date:         date,
			DaysUntil:    utils.DaysBetween(from, date),
			Time:         row.Time,
			EPSEstimated: row.EPSEstimated,
		})
	}
	return events, nil
}
