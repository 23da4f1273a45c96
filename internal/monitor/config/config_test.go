package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang-market-alert/internal/entity"
	"golang-market-alert/internal/monitor/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
app:
  name: test-alert
monitor:
  symbols: [AAPL, TSLA]
  minimum_urgency: 5
dedupe:
  store: redis
  gate:
    rate_window: 30m
    max_per_window: 3
urgency:
  keywords:
    weights:
      bankruptcy: 5
jobs:
  - name: news
    type: news_monitor
    schedule: "*/15 * * * *"
    timeout: 5m
    enabled: true
  - name: report
    type: market_report
    schedule: "0 17 * * 1-5"
    enabled: false
    params:
      metric: volatility
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "secret")
	t.Setenv("TELEGRAM_CHAT_ID", "4242")

	cfg, err := config.Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "test-alert", cfg.App.Name)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, []string{"AAPL", "TSLA"}, cfg.Monitor.Symbols)
	assert.Equal(t, 5, cfg.Monitor.MinimumUrgency)

	assert.Equal(t, "redis", cfg.Dedupe.Store)
	assert.Equal(t, 30*time.Minute, cfg.Dedupe.Gate.RateWindow)
	assert.Equal(t, 3, cfg.Dedupe.Gate.MaxPerWindow)
	assert.Equal(t, 24*time.Hour, cfg.Dedupe.Gate.DedupeWindow)

	assert.Equal(t, map[string]int{"bankruptcy": 5}, cfg.Urgency.Keywords.Weights)
	assert.NotEmpty(t, cfg.Urgency.Keywords.MarketWide)

	assert.Equal(t, "secret", cfg.Telegram.BotToken)
	assert.Equal(t, int64(4242), cfg.Telegram.ChatID)

	require.Len(t, cfg.Jobs, 2)
	assert.Equal(t, entity.JobTypeNewsMonitor, cfg.Jobs[0].Type)
	assert.Equal(t, 5*time.Minute, cfg.Jobs[0].Timeout)
	assert.Equal(t, "volatility", cfg.Jobs[1].Params["metric"])

	enabled := cfg.EnabledJobs()
	require.Len(t, enabled, 1)
	assert.Equal(t, "news", enabled[0].Name)

	job, ok := cfg.FindJob("report")
	assert.True(t, ok)
	assert.Equal(t, entity.JobTypeMarketReport, job.Type)
	_, ok = cfg.FindJob("missing")
	assert.False(t, ok)

	require.NoError(t, cfg.Validate(true))
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default().Monitor.Symbols, cfg.Monitor.Symbols)
	assert.Equal(t, "file", cfg.Dedupe.Store)
}

func TestValidate(t *testing.T) {
	cfg := config.Default()
	assert.NoError(t, cfg.Validate(false))

	err := cfg.Validate(true)
	assert.ErrorIs(t, err, config.ErrMissingCredentials)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")

	cfg.Telegram.BotToken = "token"
	err = cfg.Validate(true)
	assert.ErrorIs(t, err, config.ErrMissingCredentials)
	assert.Contains(t, err.Error(), "TELEGRAM_CHAT_ID")

	cfg.Telegram.ChatID = 1
	assert.NoError(t, cfg.Validate(true))

	cfg.Dedupe.Store = "memcached"
	assert.Error(t, cfg.Validate(false))

	cfg = config.Default()
	cfg.Jobs = []entity.Job{{Name: "x", Type: entity.JobTypeNewsMonitor, Enabled: true}}
	assert.Error(t, cfg.Validate(false))

	cfg = config.Default()
	cfg.Monitor.Symbols = nil
	assert.Error(t, cfg.Validate(false))
}
