package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-market-alert/internal/monitor/bootstrap"
	"golang-market-alert/internal/monitor/config"
	delivery "golang-market-alert/internal/monitor/delivery/http"
	"golang-market-alert/pkg/logger"
	"golang-market-alert/pkg/telegram"

	"github.com/spf13/cobra"
)

var (
	configPath string
	noTelegram bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the market monitor with its scheduler and HTTP API",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	notify := !noTelegram
	if err := cfg.Validate(notify); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Market Monitor", logger.Field("name", cfg.App.Name), logger.Field("notify", notify))

	app, err := bootstrap.New(cfg, appLogger, notify)
	if err != nil {
		appLogger.Fatal("Failed to initialize services", logger.ErrorField(err))
	}
	defer app.Close()

	schedulerSvc, err := app.NewScheduler()
	if err != nil {
		appLogger.Fatal("Failed to initialize scheduler", logger.ErrorField(err))
	}

	var jobNames []string
	for _, job := range cfg.EnabledJobs() {
		jobNames = append(jobNames, fmt.Sprintf("%s (%s)", job.Name, job.Schedule))
	}
	startup := telegram.FormatStartup(cfg.App.Name, len(cfg.Monitor.Symbols), cfg.Monitor.MinimumUrgency, jobNames, time.Now().In(app.Location))
	if err := app.Notifier.SendMessage(startup); err != nil {
		appLogger.Warn("Failed to send startup message", logger.ErrorField(err))
	}

	go schedulerSvc.Start(ctx)

	e := delivery.NewRouter(delivery.Handlers{
		Health:   delivery.NewHealthHandler(cfg.App),
		Analysis: delivery.NewAnalysisHandler(app.StockAnalyzer, app.Recommendations, appLogger),
		Jobs:     delivery.NewJobHandler(schedulerSvc, appLogger),
		Alerts:   delivery.NewAlertHandler(app.Alerts, appLogger),
	})

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.ErrorField(err))
	}
	schedulerSvc.Wait()

	if err := app.Notifier.SendMessage(telegram.FormatShutdown(cfg.App.Name, time.Now().In(app.Location))); err != nil {
		appLogger.Warn("Failed to send shutdown message", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

func main() {
	rootCmd := &cobra.Command{Use: "monitor-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")
	serveCmd.Flags().BoolVar(&noTelegram, "no-telegram", false, "Run without sending Telegram messages")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing monitor-service CLI: %s\n", err)
		os.Exit(1)
	}
}
