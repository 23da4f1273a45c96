package repository_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang-market-alert/internal/monitor/config"
	"golang-market-alert/internal/monitor/repository"
	"golang-market-alert/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEarningsCalendar(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/earning_calendar", r.URL.Path)
		assert.Equal(t, "2024-03-04", r.URL.Query().Get("from"))
		assert.Equal(t, "2024-03-18", r.URL.Query().Get("to"))
		assert.Equal(t, "key", r.URL.Query().Get("apikey"))
		_, _ = w.Write([]byte(`[
{"date":"2024-03-06","symbol":"aapl","eps":null,"epsEstimated":1.5,"time":"amc"},
{"date":"not-a-date","symbol":"BAD"},
{"date":"2024-03-14","symbol":"MSFT","epsEstimated":null,"time":"bmo"}]`))
	}))
	defer srv.Close()

	repo := repository.NewEarningsRepository(config.Earnings{BaseURL: srv.URL, APIKey: "key"}, logger.NewNop())
	from := time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC)

	events, err := repo.Calendar(context.Background(), from, from.AddDate(0, 0, 14))
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "AAPL", events[0].Symbol)
	assert.Equal(t, 2, events[0].DaysUntil)
	require.NotNil(t, events[0].EPSEstimated)
	assert.Equal(t, 1.5, *events[0].EPSEstimated)
	assert.Equal(t, "amc", events[0].Time)

	assert.Equal(t, "MSFT", events[1].Symbol)
	assert.Equal(t, 10, events[1].DaysUntil)
	assert.Nil(t, events[1].EPSEstimated)
}

func TestEarningsCalendar_Disabled(t *testing.T) {
	repo := repository.NewEarningsRepository(config.Earnings{}, logger.NewNop())
	assert.False(t, repo.Enabled())
	events, err := repo.Calendar(context.Background(), time.Now(), time.Now())
	assert.NoError(t, err)
	assert.Nil(t, events)
}
