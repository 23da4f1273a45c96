package config

import (
	"errors"
	"fmt"
	"time"

	"golang-market-alert/internal/dedupe"
	"golang-market-alert/internal/entity"
	"golang-market-alert/internal/scoring"
	"golang-market-alert/internal/sentiment"
	"golang-market-alert/pkg/config"
)

// ErrMissingCredentials is returned by Validate when notifications are on but a
// Telegram credential is missing.
var ErrMissingCredentials = errors.New("missing telegram credentials")

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
	Endpoint string `mapstructure:"endpoint"`
}

// MarketData holds the configuration for the Yahoo Finance API.
type MarketData struct {
	BaseURL             string        `mapstructure:"base_url"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	CacheDuration       time.Duration `mapstructure:"cache_duration"`
	Timeout             time.Duration `mapstructure:"timeout"`
}

// NewsAPI holds the configuration for newsapi.org.
type NewsAPI struct {
	BaseURL  string `mapstructure:"base_url"`
	APIKey   string `mapstructure:"api_key"`
	Query    string `mapstructure:"query"`
	PageSize int    `mapstructure:"page_size"`
}

// News holds the news source configuration.
type News struct {
	RSSFeeds          []string      `mapstructure:"rss_feeds"`
	SymbolFeedURL     string        `mapstructure:"symbol_feed_url"`
	MaxItemsPerFeed   int           `mapstructure:"max_items_per_feed"`
	MaxSymbolArticles int           `mapstructure:"max_symbol_articles"`
	FeedDelay         time.Duration `mapstructure:"feed_delay"`
	Lookback          time.Duration `mapstructure:"lookback"`
	FetchArticleBody  bool          `mapstructure:"fetch_article_body"`
	NewsAPI           NewsAPI       `mapstructure:"news_api"`
}

// Earnings holds the earnings calendar configuration.
type Earnings struct {
	BaseURL   string `mapstructure:"base_url"`
	APIKey    string `mapstructure:"api_key"`
	DaysAhead int    `mapstructure:"days_ahead"`
}

// Monitor holds the news monitor configuration.
type Monitor struct {
	Symbols          []string      `mapstructure:"symbols"`
	HighValueSymbols []string      `mapstructure:"high_value_symbols"`
	MinimumUrgency   int           `mapstructure:"minimum_urgency"`
	AlertDelay       time.Duration `mapstructure:"alert_delay"`
}

// Urgency holds the keyword table and category thresholds.
type Urgency struct {
	Keywords   scoring.KeywordTable       `mapstructure:"keywords"`
	Thresholds scoring.CategoryThresholds `mapstructure:"thresholds"`
}

// Sentiment holds the sentiment analyzer configuration.
type Sentiment struct {
	Method        string   `mapstructure:"method"`
	PositiveWords []string `mapstructure:"positive_words"`
	NegativeWords []string `mapstructure:"negative_words"`
}

// Dedupe holds the alert gate configuration.
type Dedupe struct {
	Store    string        `mapstructure:"store"`
	FilePath string        `mapstructure:"file_path"`
	RedisKey string        `mapstructure:"redis_key"`
	Gate     dedupe.Config `mapstructure:"gate"`
}

// Report holds the market report configuration.
type Report struct {
	OutputDir       string   `mapstructure:"output_dir"`
	Metric          string   `mapstructure:"metric"`
	TopN            int      `mapstructure:"top_n"`
	Period          string   `mapstructure:"period"`
	MinMarketCap    float64  `mapstructure:"min_market_cap"`
	MaxSymbols      int      `mapstructure:"max_symbols"`
	UniverseURL     string   `mapstructure:"universe_url"`
	FallbackSymbols []string `mapstructure:"fallback_symbols"`
}

// Scheduler holds the job scheduler configuration.
type Scheduler struct {
	PollingInterval time.Duration `mapstructure:"polling_interval"`
	TimeZone        string        `mapstructure:"time_zone"`
}

// Config holds the full configuration for the monitor binaries.
type Config struct {
	App            config.App                   `mapstructure:"app"`
	Logger         config.Logger                `mapstructure:"logger"`
	Database       config.Database              `mapstructure:"database"`
	Redis          config.Redis                 `mapstructure:"redis"`
	API            config.API                   `mapstructure:"api"`
	Telegram       Telegram                     `mapstructure:"telegram"`
	MarketData     MarketData                   `mapstructure:"market_data"`
	News           News                         `mapstructure:"news"`
	Earnings       Earnings                     `mapstructure:"earnings"`
	Monitor        Monitor                      `mapstructure:"monitor"`
	Urgency        Urgency                      `mapstructure:"urgency"`
	Recommendation scoring.RecommendationConfig `mapstructure:"recommendation"`
	Sentiment      Sentiment                    `mapstructure:"sentiment"`
	Dedupe         Dedupe                       `mapstructure:"dedupe"`
	Report         Report                       `mapstructure:"report"`
	Scheduler      Scheduler                    `mapstructure:"scheduler"`
	Jobs           []entity.Job                 `mapstructure:"jobs"`
}

// envBindings exposes credentials that are never written to the YAML file.
var envBindings = config.EnvBinding{
	"telegram.bot_token":    "TELEGRAM_BOT_TOKEN",
	"telegram.chat_id":      "TELEGRAM_CHAT_ID",
	"news.news_api.api_key": "NEWS_API_KEY",
	"earnings.api_key":      "EARNINGS_API_KEY",
	"database.password":     "DATABASE_PASSWORD",
	"redis.password":        "REDIS_PASSWORD",
}

// Default returns a configuration that works without a config file.
func Default() *Config {
	return &Config{
		App:    config.App{Name: "market-alert", Env: "development", Version: "1.0.0"},
		Logger: config.Logger{Level: "info", Encoding: "console"},
		Database: config.Database{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			DBName:          "market_alert",
			SSLMode:         "disable",
			TimeZone:        "UTC",
			MaxIdleConns:    5,
			MaxOpenConns:    10,
			ConnMaxLifetime: "1h",
			LogLevel:        "warn",
		},
		Redis: config.Redis{Host: "localhost", Port: 6379, PoolSize: 10},
		API:   config.API{Host: "0.0.0.0", Port: 8080},
		MarketData: MarketData{
			BaseURL:             "https://query1.finance.yahoo.com",
			MaxRequestPerMinute: 60,
			CacheDuration:       5 * time.Minute,
			Timeout:             10 * time.Second,
		},
		News: News{
			RSSFeeds: []string{
				"https://feeds.finance.yahoo.com/rss/2.0/headline",
				"https://feeds.marketwatch.com/marketwatch/realtimeheadlines/",
				"https://www.cnbc.com/id/100003114/device/rss/rss.html",
			},
			SymbolFeedURL:     "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US",
			MaxItemsPerFeed:   10,
			MaxSymbolArticles: 10,
			FeedDelay:         2 * time.Second,
			Lookback:          time.Hour,
			NewsAPI: NewsAPI{
				BaseURL:  "https://newsapi.org",
				Query:    "stock market OR earnings OR federal reserve OR inflation",
				PageSize: 20,
			},
		},
		Earnings: Earnings{
			BaseURL:   "https://financialmodelingprep.com",
			DaysAhead: 14,
		},
		Monitor: Monitor{
			Symbols: []string{
				"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA", "META", "NVDA", "JPM", "V", "JNJ",
				"WMT", "PG", "UNH", "HD", "MA", "DIS", "BAC", "XOM", "NFLX", "AMD",
			},
			HighValueSymbols: []string{"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA", "META", "NVDA"},
			MinimumUrgency:   3,
			AlertDelay:       time.Second,
		},
		Urgency: Urgency{
			Keywords:   scoring.DefaultKeywordTable(),
			Thresholds: scoring.DefaultCategoryThresholds(),
		},
		Recommendation: scoring.DefaultRecommendationConfig(),
		Sentiment: Sentiment{
			Method:        "keyword",
			PositiveWords: sentiment.DefaultPositiveWords,
			NegativeWords: sentiment.DefaultNegativeWords,
		},
		Dedupe: Dedupe{
			Store:    "file",
			FilePath: "data/sent_alerts.json",
			RedisKey: "market-alert:sent",
			Gate:     dedupe.DefaultConfig(),
		},
		Report: Report{
			OutputDir:    "data/results",
			Metric:       "return_pct",
			TopN:         10,
			Period:       "1mo",
			MinMarketCap: 1e9,
			MaxSymbols:   100,
			UniverseURL:  "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies",
			FallbackSymbols: []string{
				"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA", "META", "NVDA", "BRK-B", "JPM", "V",
				"JNJ", "WMT", "PG", "UNH", "HD", "MA", "DIS", "BAC", "XOM", "NFLX",
			},
		},
		Scheduler: Scheduler{
			PollingInterval: 30 * time.Second,
			TimeZone:        "America/New_York",
		},
	}
}

// Load loads the configuration from the given path on top of Default.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := config.Load(path, cfg, envBindings); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration. Telegram credentials are only required when notify is set.
func (c *Config) Validate(notify bool) error {
	if notify {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("%w: TELEGRAM_BOT_TOKEN is not set", ErrMissingCredentials)
		}
		if c.Telegram.ChatID == 0 {
			return fmt.Errorf("%w: TELEGRAM_CHAT_ID is not set", ErrMissingCredentials)
		}
	}
	if len(c.Monitor.Symbols) == 0 {
		return errors.New("monitor.symbols must not be empty")
	}
	if err := c.Dedupe.Gate.Validate(); err != nil {
		return fmt.Errorf("dedupe: %w", err)
	}
	switch c.Dedupe.Store {
	case "file", "redis":
	default:
		return fmt.Errorf("dedupe.store must be file or redis, got %q", c.Dedupe.Store)
	}
	if c.MarketData.MaxRequestPerMinute <= 0 {
		return errors.New("market_data.max_request_per_minute must be positive")
	}
	for _, job := range c.Jobs {
		if job.Name == "" || job.Type == "" {
			return fmt.Errorf("job %q: name and type are required", job.Name)
		}
		if job.Enabled && job.Schedule == "" {
			return fmt.Errorf("job %q: schedule is required", job.Name)
		}
	}
	return nil
}

// EnabledJobs returns the jobs that should be scheduled.
func (c *Config) EnabledJobs() []entity.Job {
	var out []entity.Job
	for _, job := range c.Jobs {
		if job.Enabled {
			out = append(out, job)
		}
	}
	return out
}

// FindJob returns the configured job with the given name.
func (c *Config) FindJob(name string) (entity.Job, bool) {
	for _, job := range c.Jobs {
		if job.Name == name {
			return job, true
		}
	}
	return entity.Job{}, false
}
