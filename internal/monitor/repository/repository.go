package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang-market-alert/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// ErrNoData is returned when a source answers without usable records.
var ErrNoData = errors.New("no data returned")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request to %s failed with status %d", e.URL, e.StatusCode)
}

// newLimiter paces requests to maxPerMinute with no burst.
func newLimiter(maxPerMinute int) *rate.Limiter {
	if maxPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(maxPerMinute)), 1)
}

// httpGetter is the request plumbing shared by the HTTP repositories.
type httpGetter struct {
	log        *logger.Logger
	httpClient *http.Client
	limiter    *rate.Limiter
	source     string
}

func (g *httpGetter) get(ctx context.Context, url string, accept string) ([]byte, error) {
	fields := []zap.Field{
		zap.String("source", g.source),
		zap.String("url", redact(url)),
	}

	if err := g.limiter.Wait(ctx); err != nil {
		fields = append(fields, zap.Error(err))
		g.log.ErrorContext(ctx, "Failed to wait for request limit", fields...)
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		fields = append(fields, zap.Error(err))
		g.log.ErrorContext(ctx, "Failed to create new http request", fields...)
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", accept)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		fields = append(fields, zap.Error(err))
		g.log.ErrorContext(ctx, "Failed to send request", fields...)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fields = append(fields, zap.Error(err))
		g.log.ErrorContext(ctx, "Failed to read response body", fields...)
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := &StatusError{URL: redact(url), StatusCode: resp.StatusCode}
		fields = append(fields, zap.Int("status_code", resp.StatusCode), zap.String("body", truncateBody(body)))
		g.log.WarnContext(ctx, "Unexpected response status", fields...)
		return nil, err
	}

	g.log.DebugContext(ctx, "Request completed", append(fields, zap.Int("bytes", len(body)))...)
	return body, nil
}

func truncateBody(b []byte) string {
	const limit = 200
	if len(b) > limit {
		return string(b[:limit])
	}
	return string(b)
}
