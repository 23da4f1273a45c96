package bootstrap

import (
	"fmt"
	"net/http"
	"time"

	"golang-market-alert/internal/dedupe"
	"golang-market-alert/internal/monitor/config"
	"golang-market-alert/internal/monitor/repository"
	"golang-market-alert/internal/monitor/scheduler"
	"golang-market-alert/internal/monitor/service"
	"golang-market-alert/internal/monitor/strategy"
	"golang-market-alert/internal/scoring"
	"golang-market-alert/internal/sentiment"
	"golang-market-alert/pkg/logger"
	"golang-market-alert/pkg/postgres"
	"golang-market-alert/pkg/redis"
	"golang-market-alert/pkg/telegram"
	"golang-market-alert/pkg/utils"

	"gorm.io/gorm"
)

// App holds the wired services shared by the binaries.
type App struct {
	Config          *config.Config
	Logger          *logger.Logger
	Notifier        telegram.Notifier
	Alerts          repository.NewsAlertRepository
	Recommendations repository.StockRecommendationRepository
	Results         repository.ResultRepository
	NewsMonitor     service.NewsMonitorService
	StockAnalyzer   service.StockAnalyzerService
	MarketReport    service.MarketReportService
	Strategies      []strategy.JobExecutionStrategy
	Location        *time.Location
	closers         []func() error
}

// Close releases database and Redis connections.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Warn("Failed to close resource", logger.ErrorField(err))
		}
	}
}

// New wires every service from cfg. With notify unset messages go to telegram.Discard.
func New(cfg *config.Config, log *logger.Logger, notify bool) (*App, error) {
	app := &App{
		Config:   cfg,
		Logger:   log,
		Results:  repository.NewResultRepository(cfg.Report.OutputDir),
		Location: utils.LoadLocation(cfg.Scheduler.TimeZone),
	}

	notifier, err := newNotifier(cfg, notify)
	if err != nil {
		return nil, err
	}
	app.Notifier = notifier

	db, err := app.openDatabase()
	if err != nil {
		app.Close()
		return nil, err
	}
	if db != nil {
		app.Alerts = repository.NewNewsAlertRepository(db)
	} else {
		app.Alerts = repository.NewNopNewsAlertRepository()
	}
	app.Recommendations = repository.NewNopStockRecommendationRepository()
	if db != nil {
		app.Recommendations = repository.NewStockRecommendationRepository(db)
	}

	store, err := app.dedupeStore()
	if err != nil {
		app.Close()
		return nil, err
	}
	gate, err := dedupe.NewGate(store, cfg.Dedupe.Gate)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to create dedupe gate: %w", err)
	}

	urgency, err := scoring.NewUrgencyScorer(cfg.Urgency.Keywords, cfg.Urgency.Thresholds)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("invalid urgency config: %w", err)
	}
	recommender, err := scoring.NewRecommendationScorer(cfg.Recommendation)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("invalid recommendation config: %w", err)
	}
	analyzer, err := sentiment.New(cfg.Sentiment.Method, cfg.Sentiment.PositiveWords, cfg.Sentiment.NegativeWords)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("invalid sentiment config: %w", err)
	}

	marketData := repository.NewMarketDataRepository(cfg.MarketData, log)
	feeds := repository.NewNewsFeedRepository(cfg.News, log)
	newsAPI := repository.NewNewsAPIRepository(cfg.News.NewsAPI, log)
	universe := repository.NewUniverseRepository(cfg.Report, log)
	earnings := repository.NewEarningsRepository(cfg.Earnings, log)

	app.NewsMonitor = service.NewNewsMonitorService(cfg, log, feeds, newsAPI, app.Alerts, urgency, gate, notifier)
	app.StockAnalyzer = service.NewStockAnalyzerService(cfg, log, marketData, feeds, newsAPI, app.Recommendations, analyzer, recommender)
	app.MarketReport = service.NewMarketReportService(cfg, log, marketData, universe, earnings, notifier)

	app.Strategies = []strategy.JobExecutionStrategy{
		strategy.NewNewsMonitorStrategy(log, app.NewsMonitor, notify),
		strategy.NewMarketReportStrategy(log, app.MarketReport, notify),
		strategy.NewStockAnalyzerStrategy(log, app.StockAnalyzer, notifier, cfg.Monitor.HighValueSymbols, notify),
	}
	return app, nil
}

// NewScheduler builds a scheduler over every configured job.
func (a *App) NewScheduler(opts ...scheduler.Option) (scheduler.SchedulerService, error) {
	return scheduler.NewSchedulerService(
		a.Config.Jobs,
		a.Strategies,
		a.Results,
		a.Notifier,
		a.Logger,
		a.Config.Scheduler.PollingInterval,
		a.Location,
		opts...,
	)
}

func newNotifier(cfg *config.Config, notify bool) (telegram.Notifier, error) {
	if !notify {
		return telegram.Discard{}, nil
	}
	var (
		n   telegram.Notifier
		err error
	)
	if cfg.Telegram.Endpoint != "" {
		n, err = telegram.NewClientWithEndpoint(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.Endpoint, &http.Client{Timeout: 15 * time.Second})
	} else {
		n, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telegram notifier: %w", err)
	}
	return n, nil
}

func (a *App) openDatabase() (*gorm.DB, error) {
	if !a.Config.Database.Enabled {
		a.Logger.Info("Database disabled, alert history is not stored")
		return nil, nil
	}
	db, err := postgres.NewDB(PostgresConfig(a.Config))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}
	return db.DB, nil
}

func (a *App) dedupeStore() (dedupe.Store, error) {
	if a.Config.Dedupe.Store != "redis" {
		return dedupe.NewFileStore(a.Config.Dedupe.FilePath), nil
	}
	client, err := redis.NewClient(redis.Config{
		Host:     a.Config.Redis.Host,
		Port:     a.Config.Redis.Port,
		Password: a.Config.Redis.Password,
		DB:       a.Config.Redis.DB,
		PoolSize: a.Config.Redis.PoolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}
	a.closers = append(a.closers, client.Close)
	return dedupe.NewRedisStore(client.Client, a.Config.Dedupe.RedisKey, a.Config.Dedupe.Gate.Retention()), nil
}

// PostgresConfig maps the database section to pkg/postgres.
func PostgresConfig(cfg *config.Config) postgres.Config {
	return postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	}
}
