package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang-market-alert/internal/entity"
	"golang-market-alert/internal/monitor/bootstrap"
	"golang-market-alert/internal/monitor/config"
	"golang-market-alert/internal/monitor/strategy"
	"golang-market-alert/pkg/logger"
	"golang-market-alert/pkg/telegram"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	configPath string
	noTelegram bool
)

// session is what every command needs once configuration has been validated.
type session struct {
	cfg    *config.Config
	log    *logger.Logger
	app    *bootstrap.App
	notify bool
}

// setup loads and validates configuration. Invalid configuration exits with status 1
// before any network call is made.
func setup() *session {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	notify := !noTelegram
	if err := cfg.Validate(notify); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	app, err := bootstrap.New(cfg, appLogger, notify)
	if err != nil {
		appLogger.Fatal("Failed to initialize services", logger.ErrorField(err))
	}
	return &session{cfg: cfg, log: appLogger, app: app, notify: notify}
}

func (s *session) close() {
	s.app.Close()
	_ = s.log.Sync()
}

// run executes job through its strategy, saves the run under the result directory
// and prints the strategy output.
func (s *session) run(ctx context.Context, job entity.Job) error {
	var st strategy.JobExecutionStrategy
	for _, candidate := range s.app.Strategies {
		if candidate.GetType() == job.Type {
			st = candidate
		}
	}
	if st == nil {
		return fmt.Errorf("no strategy for job type %q", job.Type)
	}

	exec := &entity.JobExecution{
		RunID:     uuid.NewString(),
		JobName:   job.Name,
		JobType:   job.Type,
		Status:    entity.StatusCompleted,
		StartedAt: time.Now(),
	}
	out, runErr := st.Execute(ctx, &job)
	exec.CompletedAt = time.Now()
	if runErr != nil {
		exec.Status = entity.StatusFailed
		exec.Error = runErr.Error()
	}
	if out != "" {
		exec.Result = json.RawMessage(out)
	}

	path, err := s.app.Results.Save(context.WithoutCancel(ctx), exec)
	if err != nil {
		s.log.Warn("Failed to save result", logger.ErrorField(err))
	} else {
		s.log.Info("Result saved", logger.Field("path", path))
	}

	if out != "" {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, []byte(out), "", "  "); err == nil {
			fmt.Println(pretty.String())
		} else {
			fmt.Println(out)
		}
	}
	return runErr
}

func newsCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "news-check",
		Short: "Runs one news monitoring cycle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := setup()
			defer s.close()

			return s.run(cmd.Context(), entity.Job{Name: "news-check", Type: entity.JobTypeNewsMonitor})
		},
	}
}

func reportCmd() *cobra.Command {
	var (
		metric       string
		top          int
		period       string
		symbols      []string
		withEarnings bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Ranks top performers and lists upcoming earnings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := setup()
			defer s.close()

			return s.run(cmd.Context(), entity.Job{
				Name: "report",
				Type: entity.JobTypeMarketReport,
				Params: map[string]any{
					"metric":        metric,
					"top_n":         top,
					"period":        period,
					"symbols":       normalizeSymbols(symbols),
					"with_earnings": withEarnings,
				},
			})
		},
	}
	cmd.Flags().StringVar(&metric, "metric", "", "Ranking metric: return_pct, volume_ratio or volatility")
	cmd.Flags().IntVar(&top, "top", 0, "Number of performers to keep")
	cmd.Flags().StringVar(&period, "period", "", "Chart range, e.g. 1mo")
	cmd.Flags().StringSliceVar(&symbols, "symbols", nil, "Symbols to rank instead of the index constituents")
	cmd.Flags().BoolVar(&withEarnings, "earnings", true, "Include upcoming earnings")
	return cmd
}

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze SYMBOL...",
		Short: "Scores BUY/SELL/HOLD recommendations for symbols",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := setup()
			defer s.close()

			return s.run(cmd.Context(), entity.Job{
				Name:   "analyze",
				Type:   entity.JobTypeStockAnalyzer,
				Params: map[string]any{"symbols": normalizeSymbols(args)},
			})
		},
	}
}

func testTelegramCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test-telegram",
		Short: "Sends a test message to the configured chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if noTelegram {
				return fmt.Errorf("test-telegram cannot be combined with --no-telegram")
			}
			s := setup()
			defer s.close()

			if err := s.app.Notifier.SendMessage(telegram.FormatConnectionTest(time.Now().In(s.app.Location))); err != nil {
				return fmt.Errorf("telegram test failed: %w", err)
			}
			fmt.Println("Telegram connection OK")
			return nil
		},
	}
}

func normalizeSymbols(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:           "market-cli",
		Short:         "One-shot market news checks, reports and stock analysis",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().BoolVar(&noTelegram, "no-telegram", false, "Print results without sending Telegram messages")

	rootCmd.AddCommand(newsCheckCmd(), reportCmd(), analyzeCmd(), testTelegramCmd())
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing market-cli: %s\n", err)
		os.Exit(1)
	}
}
