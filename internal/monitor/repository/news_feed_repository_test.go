package repository_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang-market-alert/internal/monitor/config"
	"golang-market-alert/internal/monitor/repository"
	"golang-market-alert/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rssXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Test Feed</title>
<item><title>Apple beats &lt;b&gt;estimates&lt;/b&gt;</title><link>https://news.test/1</link>
<description>&lt;p&gt;Strong   quarter&lt;/p&gt;</description><pubDate>Mon, 04 Mar 2024 10:00:00 GMT</pubDate></item>
<item><title>Tesla recalls vehicles</title><link>https://news.test/2</link><description>Recall news</description></item>
<item><title></title><link>https://news.test/3</link></item>
<item><title>Third headline</title><link>https://news.test/4</link></item>
</channel></rss>`

const articleHTML = `<html><head><title>Article</title></head><body>
<div class="nav"><a href="/">Home</a></div>
<div class="article">
<p>Apple reported record quarterly revenue, driven by strong demand for the iPhone, services, and wearables across every region.</p>
<p>Analysts said the results, which beat consensus estimates by a wide margin, signal resilient consumer spending heading into the holiday season.</p>
<p>Shares rose in extended trading, as investors welcomed the upbeat guidance, higher buyback authorization, and an increased dividend.</p>
</div></body></html>`

func newFeedServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/feed", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssXML))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/symbol", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "TSLA", r.URL.Query().Get("s"))
		_, _ = w.Write([]byte(rssXML))
	})
	mux.HandleFunc("/article", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(articleHTML))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchFeeds(t *testing.T) {
	srv := newFeedServer(t)
	repo := repository.NewNewsFeedRepository(config.News{
		RSSFeeds:        []string{srv.URL + "/feed", srv.URL + "/broken"},
		MaxItemsPerFeed: 2,
	}, logger.NewNop())

	items, err := repo.FetchFeeds(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Apple beats estimates", items[0].Title)
	assert.Equal(t, "Strong quarter", items[0].Body)
	assert.Equal(t, "https://news.test/1", items[0].URL)
	assert.Equal(t, "Test Feed", items[0].Source)
	assert.Equal(t, time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC), items[0].PublishedAt.UTC())

	assert.Equal(t, "Tesla recalls vehicles", items[1].Title)
	assert.True(t, items[1].PublishedAt.IsZero())
}

func TestFetchFeeds_AllFailed(t *testing.T) {
	srv := newFeedServer(t)
	repo := repository.NewNewsFeedRepository(config.News{
		RSSFeeds: []string{srv.URL + "/broken", srv.URL + "/broken"},
	}, logger.NewNop())

	_, err := repo.FetchFeeds(context.Background())
	assert.Error(t, err)
}

func TestFetchFeeds_DelayHonoursContext(t *testing.T) {
	srv := newFeedServer(t)
	repo := repository.NewNewsFeedRepository(config.News{
		RSSFeeds:  []string{srv.URL + "/feed", srv.URL + "/feed"},
		FeedDelay: time.Hour,
	}, logger.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	items, err := repo.FetchFeeds(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, items, 3)
}

func TestFetchSymbolFeed(t *testing.T) {
	srv := newFeedServer(t)
	repo := repository.NewNewsFeedRepository(config.News{
		SymbolFeedURL:     srv.URL + "/symbol?s=%s",
		MaxSymbolArticles: 1,
	}, logger.NewNop())

	items, err := repo.FetchSymbolFeed(context.Background(), "tsla")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	empty := repository.NewNewsFeedRepository(config.News{}, logger.NewNop())
	items, err = empty.FetchSymbolFeed(context.Background(), "TSLA")
	assert.NoError(t, err)
	assert.Empty(t, items)
}

func TestFetchArticleText(t *testing.T) {
	srv := newFeedServer(t)
	repo := repository.NewNewsFeedRepository(config.News{}, logger.NewNop())

	text, err := repo.FetchArticleText(context.Background(), srv.URL+"/article")
	require.NoError(t, err)
	assert.Contains(t, text, "record quarterly revenue")
	assert.False(t, strings.Contains(text, "\n"), fmt.Sprintf("whitespace collapsed: %q", text))

	_, err = repo.FetchArticleText(context.Background(), srv.URL+"/missing")
	assert.Error(t, err)
}
