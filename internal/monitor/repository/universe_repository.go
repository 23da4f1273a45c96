package repository

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang-market-alert/internal/entity"
	"golang-market-alert/internal/monitor/config"
	"golang-market-alert/pkg/logger"

	"github.com/PuerkitoBio/goquery"
)

// UniverseRepository lists the symbols covered by the market report.
type UniverseRepository interface {
	Constituents(ctx context.Context) ([]entity.Constituent, error)
}

type universeRepository struct {
	cfg  config.Report
	log  *logger.Logger
	http *httpGetter
}

// NewUniverseRepository creates a repository that scrapes the S&P 500 constituents table.
func NewUniverseRepository(cfg config.Report, log *logger.Logger) UniverseRepository {
	return &universeRepository{
		cfg: cfg,
		log: log,
		http: &httpGetter{
			log:        log,
			httpClient: &http.Client{Timeout: 15 * time.Second},
			limiter:    newLimiter(0),
			source:     "universe",
		},
	}
}

// Constituents returns the scraped table, or the configured fallback symbols when the page
// cannot be read.
func (r *universeRepository) Constituents(ctx context.Context) ([]entity.Constituent, error) {
	list, err := r.scrape(ctx)
	if err != nil || len(list) == 0 {
		r.log.WarnContext(ctx, "Using fallback symbol universe", logger.ErrorField(err), logger.IntField("fallback", len(r.cfg.FallbackSymbols)))
		return r.fallback(), nil
	}
	return list, nil
}

func (r *universeRepository) scrape(ctx context.Context) ([]entity.Constituent, error) {
	if r.cfg.UniverseURL == "" {
		return nil, ErrNoData
	}
	body, err := r.http.get(ctx, r.cfg.UniverseURL, "text/html")
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse universe page: %w", err)
	}

	var list []entity.Constituent
	doc.Find("table#constituents tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}
		symbol := strings.TrimSpace(cells.Eq(0).Text())
		if symbol == "" {
			return
		}
		list = append(list, entity.Constituent{
			Symbol:  strings.ReplaceAll(strings.ToUpper(symbol), ".", "-"),
			Company: strings.TrimSpace(cells.Eq(1).Text()),
			Sector:  strings.TrimSpace(cells.Eq(2).Text()),
		})
	})
	return list, nil
}

func (r *universeRepository) fallback() []entity.Constituent {
	list := make([]entity.Constituent, 0, len(r.cfg.FallbackSymbols))
	for _, s := range r.cfg.FallbackSymbols {
		list = append(list, entity.Constituent{Symbol: strings.ToUpper(s)})
	}
	return list
}
