package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang-market-alert/internal/entity"
	"golang-market-alert/internal/monitor/repository"
)

var fixedNow = time.Date(2024, 3, 4, 14, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type fakeFeeds struct {
	items       []entity.NewsItem
	err         error
	symbolItems map[string][]entity.NewsItem
	articles    map[string]string
}

func (f *fakeFeeds) FetchFeeds(context.Context) ([]entity.NewsItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]entity.NewsItem(nil), f.items...), nil
}

func (f *fakeFeeds) FetchSymbolFeed(_ context.Context, symbol string) ([]entity.NewsItem, error) {
	return f.symbolItems[symbol], nil
}

func (f *fakeFeeds) FetchArticleText(_ context.Context, url string) (string, error) {
	text, ok := f.articles[url]
	if !ok {
		return "", errors.New("not found")
	}
	return text, nil
}

type fakeNewsAPI struct {
	enabled bool
	items   []entity.NewsItem
	err     error
	queries []string
}

func (f *fakeNewsAPI) Enabled() bool { return f.enabled }

func (f *fakeNewsAPI) Search(_ context.Context, query string, _ time.Time) ([]entity.NewsItem, error) {
	f.queries = append(f.queries, query)
	return f.items, f.err
}

type fakeAlerts struct {
	mu     sync.Mutex
	alerts []entity.NewsAlert
}

func (f *fakeAlerts) Create(_ context.Context, alert *entity.NewsAlert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, *alert)
	return nil
}

func (f *fakeAlerts) ListRecent(_ context.Context, limit int) ([]entity.NewsAlert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit > len(f.alerts) {
		limit = len(f.alerts)
	}
	return f.alerts[:limit], nil
}

type fakeRecommendations struct {
	saved []entity.StockRecommendation
}

func (f *fakeRecommendations) Create(_ context.Context, rec *entity.StockRecommendation) error {
	f.saved = append(f.saved, *rec)
	return nil
}

func (f *fakeRecommendations) LatestBySymbol(_ context.Context, symbol string) (*entity.StockRecommendation, error) {
	for i := len(f.saved) - 1; i >= 0; i-- {
		if f.saved[i].Symbol == symbol {
			return &f.saved[i], nil
		}
	}
	return nil, repository.ErrNoData
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (f *fakeNotifier) SendMessage(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, text)
	return nil
}

type fakeMarketData struct {
	charts       map[string]*entity.Series
	fundamentals map[string]*entity.Fundamentals
	chartCalls   []string
}

func (f *fakeMarketData) GetChart(_ context.Context, symbol, rng, _ string) (*entity.Series, error) {
	f.chartCalls = append(f.chartCalls, symbol+":"+rng)
	s, ok := f.charts[symbol]
	if !ok {
		return nil, &repository.StatusError{URL: "chart/" + symbol, StatusCode: 404}
	}
	return s, nil
}

func (f *fakeMarketData) GetFundamentals(_ context.Context, symbol string) (*entity.Fundamentals, error) {
	fd, ok := f.fundamentals[symbol]
	if !ok {
		return nil, repository.ErrNoData
	}
	return fd, nil
}

type fakeUniverse struct {
	list []entity.Constituent
	err  error
}

func (f *fakeUniverse) Constituents(context.Context) ([]entity.Constituent, error) {
	return f.list, f.err
}

type fakeEarnings struct {
	enabled bool
	events  []entity.EarningsEvent
}

func (f *fakeEarnings) Enabled() bool { return f.enabled }

func (f *fakeEarnings) Calendar(context.Context, time.Time, time.Time) ([]entity.EarningsEvent, error) {
	return f.events, nil
}

// linearSeries builds n daily bars whose close moves by step from start.
func linearSeries(symbol string, n int, start, step, volume float64) *entity.Series {
	s := &entity.Series{Symbol: symbol, Currency: "USD", CompanyName: strings.ToUpper(symbol) + " Inc."}
	day := fixedNow.AddDate(0, 0, -n)
	for i := 0; i < n; i++ {
		c := start + step*float64(i)
		s.Bars = append(s.Bars, entity.PriceBar{
			Timestamp: day.AddDate(0, 0, i),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    volume,
		})
	}
	s.CurrentPrice = s.Bars[n-1].Close
	return s
}
