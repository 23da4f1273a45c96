package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang-market-alert/internal/entity"
	"golang-market-alert/internal/extractor"
	"golang-market-alert/internal/monitor/config"
	"golang-market-alert/internal/monitor/dto"
	"golang-market-alert/pkg/logger"
)

// NewsAPIRepository searches newsapi.org.
type NewsAPIRepository interface {
	// Enabled reports whether an API key is configured.
	Enabled() bool
	Search(ctx context.Context, query string, since time.Time) ([]entity.NewsItem, error)
}

type newsAPIRepository struct {
	cfg  config.NewsAPI
	http *httpGetter
}

// NewNewsAPIRepository creates a NewsAPI repository. Without an API key every search returns nothing.
func NewNewsAPIRepository(cfg config.NewsAPI, log *logger.Logger) NewsAPIRepository {
	return &newsAPIRepository{
		cfg: cfg,
		http: &httpGetter{
			log:        log,
			httpClient: &http.Client{Timeout: 10 * time.Second},
			limiter:    newLimiter(60),
			source:     "newsapi",
		},
	}
}

func (r *newsAPIRepository) Enabled() bool {
	return r.cfg.APIKey != ""
}

func (r *newsAPIRepository) Search(ctx context.Context, query string, since time.Time) ([]entity.NewsItem, error) {
	if !r.Enabled() {
		return nil, nil
	}
	if query == "" {
		query = r.cfg.Query
	}
	pageSize := r.cfg.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("sortBy", "publishedAt")
	q.Set("language", "en")
	q.Set("pageSize", strconv.Itoa(pageSize))
	if !since.IsZero() {
		q.Set("from", since.UTC().Format(time.RFC3339))
	}
	q.Set("apiKey", r.cfg.APIKey)

	body, err := r.http.get(ctx, r.cfg.BaseURL+"/v2/everything?"+q.Encode(), "application/json")
	if err != nil {
		return nil, err
	}

	var resp dto.NewsAPIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse newsapi response: %w", err)
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("newsapi error %s: %s", resp.Code, resp.Message)
	}

	items := make([]entity.NewsItem, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		title := strings.TrimSpace(a.Title)
		if title == "" || title == "[Removed]" {
			continue
		}
		items = append(items, entity.NewsItem{
			Title:       title,
			Body:        extractor.CleanHTML(a.Description),
			URL:         a.URL,
			Source:      a.Source.Name,
			PublishedAt: a.PublishedAt,
		})
	}
	return items, nil
}
