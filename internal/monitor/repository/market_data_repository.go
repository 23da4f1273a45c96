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

	"github.com/patrickmn/go-cache"
)

// MarketDataRepository reads price history and company data from Yahoo Finance.
type MarketDataRepository interface {
	GetChart(ctx context.Context, symbol, rng, interval string) (*entity.Series, error)
	GetFundamentals(ctx context.Context, symbol string) (*entity.Fundamentals, error)
}

type marketDataRepository struct {
	cfg   config.MarketData
	http  *httpGetter
	cache *cache.Cache
}

// NewMarketDataRepository creates a Yahoo Finance repository. Responses are cached for
// cfg.CacheDuration.
func NewMarketDataRepository(cfg config.MarketData, log *logger.Logger) MarketDataRepository {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &marketDataRepository{
		cfg: cfg,
		http: &httpGetter{
			log:        log,
			httpClient: &http.Client{Timeout: timeout},
			limiter:    newLimiter(cfg.MaxRequestPerMinute),
			source:     "yahoo_finance",
		},
		cache: cache.New(cfg.CacheDuration, 2*cfg.CacheDuration),
	}
}

func (r *marketDataRepository) GetChart(ctx context.Context, symbol, rng, interval string) (*entity.Series, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	key := fmt.Sprintf("chart:%s:%s:%s", symbol, rng, interval)
	if v, ok := r.cache.Get(key); ok {
		return v.(*entity.Series), nil
	}

	q := url.Values{}
	q.Set("range", rng)
	q.Set("interval", interval)
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", r.cfg.BaseURL, url.PathEscape(symbol), q.Encode())

	body, err := r.http.get(ctx, u, "application/json")
	if err != nil {
		return nil, err
	}

	var resp dto.ChartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse chart for %s: %w", symbol, err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("chart for %s: %s", symbol, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("chart for %s: %w", symbol, ErrNoData)
	}

	series := toSeries(symbol, resp.Chart.Result[0])
	if len(series.Bars) == 0 {
		return nil, fmt.Errorf("chart for %s: %w", symbol, ErrNoData)
	}

	r.cache.SetDefault(key, series)
	return series, nil
}

func toSeries(symbol string, res dto.ChartResult) *entity.Series {
	series := &entity.Series{
		Symbol:      symbol,
		Currency:    res.Meta.Currency,
		CompanyName: res.Meta.LongName,
	}
	if series.CompanyName == "" {
		series.CompanyName = res.Meta.ShortName
	}
	if len(res.Indicators.Quote) == 0 {
		return series
	}

	q := res.Indicators.Quote[0]
	for i, ts := range res.Timestamp {
		closePrice := at(q.Close, i)
		if closePrice == nil {
			continue
		}
		bar := entity.PriceBar{
			Timestamp: time.Unix(ts, 0).UTC(),
			Close:     *closePrice,
		}
		if v := at(q.Open, i); v != nil {
			bar.Open = *v
		}
		if v := at(q.High, i); v != nil {
			bar.High = *v
		}
		if v := at(q.Low, i); v != nil {
			bar.Low = *v
		}
		if v := at(q.Volume, i); v != nil {
			bar.Volume = *v
		}
		series.Bars = append(series.Bars, bar)
	}

	series.CurrentPrice = res.Meta.RegularMarketPrice
	if series.CurrentPrice == 0 && len(series.Bars) > 0 {
		series.CurrentPrice = series.Bars[len(series.Bars)-1].Close
	}
	return series
}

func at(vals []*float64, i int) *float64 {
	if i < len(vals) {
		return vals[i]
	}
	return nil
}

func (r *marketDataRepository) GetFundamentals(ctx context.Context, symbol string) (*entity.Fundamentals, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	key := "fundamentals:" + symbol
	if v, ok := r.cache.Get(key); ok {
		return v.(*entity.Fundamentals), nil
	}

	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=assetProfile,summaryDetail,price",
		r.cfg.BaseURL, url.PathEscape(symbol))

	body, err := r.http.get(ctx, u, "application/json")
	if err != nil {
		return nil, err
	}

	var resp dto.QuoteSummaryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse quote summary for %s: %w", symbol, err)
	}
	if resp.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("quote summary for %s: %s", symbol, resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("quote summary for %s: %w", symbol, ErrNoData)
	}

	res := resp.QuoteSummary.Result[0]
	f := &entity.Fundamentals{}
	if p := res.Price; p != nil {
		f.CompanyName = p.LongName
		if f.CompanyName == "" {
			f.CompanyName = p.ShortName
		}
		f.Currency = p.Currency
		f.MarketCap = p.MarketCap.Raw
	}
	if a := res.AssetProfile; a != nil {
		f.Sector = a.Sector
		f.Industry = a.Industry
	}
	if s := res.SummaryDetail; s != nil {
		if s.MarketCap.Raw > 0 {
			f.MarketCap = s.MarketCap.Raw
		}
		f.PERatio = s.TrailingPE.Raw
	}

	r.cache.SetDefault(key, f)
	return f, nil
}
