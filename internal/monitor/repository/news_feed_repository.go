package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang-market-alert/internal/entity"
	"golang-market-alert/internal/extractor"
	"golang-market-alert/internal/monitor/config"
	"golang-market-alert/pkg/logger"

	"github.com/PuerkitoBio/goquery"
	"github.com/mauidude/go-readability"
	"github.com/mmcdole/gofeed"
)

// NewsFeedRepository reads headlines from RSS feeds.
type NewsFeedRepository interface {
	FetchFeeds(ctx context.Context) ([]entity.NewsItem, error)
	FetchSymbolFeed(ctx context.Context, symbol string) ([]entity.NewsItem, error)
	FetchArticleText(ctx context.Context, articleURL string) (string, error)
}

type newsFeedRepository struct {
	cfg    config.News
	log    *logger.Logger
	parser *gofeed.Parser
	http   *httpGetter
}

// NewNewsFeedRepository creates a feed repository for the configured feeds.
func NewNewsFeedRepository(cfg config.News, log *logger.Logger) NewsFeedRepository {
	httpClient := &http.Client{Timeout: 15 * time.Second}
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	parser.Client = httpClient
	return &newsFeedRepository{
		cfg:    cfg,
		log:    log,
		parser: parser,
		http: &httpGetter{
			log:        log,
			httpClient: httpClient,
			limiter:    newLimiter(0),
			source:     "article",
		},
	}
}

// FetchFeeds parses every configured feed, waiting FeedDelay between feeds. A failing
// feed is logged and skipped; an error is returned only when every feed failed.
func (r *newsFeedRepository) FetchFeeds(ctx context.Context) ([]entity.NewsItem, error) {
	var (
		items []entity.NewsItem
		errs  []error
	)
	for i, feedURL := range r.cfg.RSSFeeds {
		if i > 0 && r.cfg.FeedDelay > 0 {
			if err := sleep(ctx, r.cfg.FeedDelay); err != nil {
				return items, err
			}
		}

		feedItems, err := r.parse(ctx, feedURL, r.cfg.MaxItemsPerFeed)
		if err != nil {
			r.log.WarnContext(ctx, "Failed to parse RSS feed", logger.StringField("feed", feedURL), logger.ErrorField(err))
			errs = append(errs, err)
			continue
		}
		items = append(items, feedItems...)
	}

	if len(errs) > 0 && len(errs) == len(r.cfg.RSSFeeds) {
		return nil, errors.Join(errs...)
	}
	return items, nil
}

// FetchSymbolFeed parses the per-symbol headline feed.
func (r *newsFeedRepository) FetchSymbolFeed(ctx context.Context, symbol string) ([]entity.NewsItem, error) {
	if r.cfg.SymbolFeedURL == "" {
		return nil, nil
	}
	feedURL := fmt.Sprintf(r.cfg.SymbolFeedURL, url.QueryEscape(strings.ToUpper(symbol)))
	return r.parse(ctx, feedURL, r.cfg.MaxSymbolArticles)
}

func (r *newsFeedRepository) parse(ctx context.Context, feedURL string, limit int) ([]entity.NewsItem, error) {
	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", feedURL, err)
	}

	source := strings.TrimSpace(feed.Title)
	if source == "" {
		source = hostOf(feedURL)
	}

	var items []entity.NewsItem
	for _, it := range feed.Items {
		if limit > 0 && len(items) >= limit {
			break
		}
		title := strings.TrimSpace(it.Title)
		if title == "" {
			continue
		}
		body := it.Description
		if body == "" {
			body = it.Content
		}
		item := entity.NewsItem{
			Title:  extractor.CleanHTML(title),
			Body:   extractor.CleanHTML(body),
			URL:    strings.TrimSpace(it.Link),
			Source: source,
		}
		switch {
		case it.PublishedParsed != nil:
			item.PublishedAt = *it.PublishedParsed
		case it.UpdatedParsed != nil:
			item.PublishedAt = *it.UpdatedParsed
		}
		items = append(items, item)
	}

	r.log.DebugContext(ctx, "Parsed RSS feed", logger.StringField("feed", feedURL), logger.IntField("items", len(items)))
	return items, nil
}

// FetchArticleText downloads an article and returns its readable text.
func (r *newsFeedRepository) FetchArticleText(ctx context.Context, articleURL string) (string, error) {
	body, err := r.http.get(ctx, articleURL, "text/html,application/xhtml+xml")
	if err != nil {
		return "", err
	}

	doc, err := readability.NewDocument(string(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse article content: %w", err)
	}
	docHTML, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(doc.Content())))
	if err != nil {
		return "", fmt.Errorf("failed to parse article content: %w", err)
	}
	return strings.Join(strings.Fields(docHTML.Text()), " "), nil
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return strings.TrimPrefix(u.Host, "www.")
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
