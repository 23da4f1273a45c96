package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang-market-alert/internal/entity"
	"golang-market-alert/internal/indicator"
	"golang-market-alert/internal/monitor/config"
	"golang-market-alert/internal/monitor/dto"
	"golang-market-alert/internal/monitor/repository"
	"golang-market-alert/pkg/common"
	"golang-market-alert/pkg/logger"
	"golang-market-alert/pkg/telegram"
	"golang-market-alert/pkg/utils"
)

// ErrUnknownMetric is returned for a ranking metric other than common.Metrics.
var ErrUnknownMetric = errors.New("unknown metric")

// ReportOptions selects what a market report covers. Zero values fall back to config.
type ReportOptions struct {
	Metric       string
	TopN         int
	Period       string
	Symbols      []string
	WithEarnings bool
	Notify       bool
}

// MarketReportService ranks the universe by a performance metric.
type MarketReportService interface {
	Run(ctx context.Context, opts ReportOptions) (*dto.MarketReport, error)
}

type marketReportService struct {
	cfg        *config.Config
	log        *logger.Logger
	marketData repository.MarketDataRepository
	universe   repository.UniverseRepository
	earnings   repository.EarningsRepository
	notifier   telegram.Notifier
	opts       options
}

// NewMarketReportService creates a market report service.
func NewMarketReportService(
	cfg *config.Config,
	log *logger.Logger,
	marketData repository.MarketDataRepository,
	universe repository.UniverseRepository,
	earnings repository.EarningsRepository,
	notifier telegram.Notifier,
	opts ...Option,
) MarketReportService {
	return &marketReportService{
		cfg:        cfg,
		log:        log,
		marketData: marketData,
		universe:   universe,
		earnings:   earnings,
		notifier:   notifier,
		opts:       buildOptions(opts),
	}
}

func (s *marketReportService) Run(ctx context.Context, opts ReportOptions) (*dto.MarketReport, error) {
	opts = s.withDefaults(opts)
	if !validMetric(opts.Metric) {
		return nil, fmt.Errorf("%w %q, expected one of %s", ErrUnknownMetric, opts.Metric, strings.Join(common.Metrics, ", "))
	}

	constituents, explicit, err := s.constituents(ctx, opts.Symbols)
	if err != nil {
		return nil, err
	}

	perfs := s.performances(ctx, constituents, opts.Period, !explicit)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if len(perfs) == 0 {
		return nil, fmt.Errorf("market report: %w", repository.ErrNoData)
	}

	RankPerformances(perfs, opts.Metric)
	report := &dto.MarketReport{
		Metric:          opts.Metric,
		Period:          opts.Period,
		SymbolsAnalyzed: len(perfs),
		TopPerformers:   perfs[:min(opts.TopN, len(perfs))],
	}

	if opts.WithEarnings {
		report.Earnings = s.upcomingEarnings(ctx, constituents)
	}

	if opts.Notify {
		now := s.opts.now()
		if err := s.notifier.SendMessage(telegram.FormatTopPerformers(opts.Metric, report.TopPerformers, now)); err != nil {
			return report, fmt.Errorf("failed to send market report: %w", err)
		}
		if len(report.Earnings) > 0 {
			if err := s.notifier.SendMessage(telegram.FormatEarnings(report.Earnings, now)); err != nil {
				return report, fmt.Errorf("failed to send earnings calendar: %w", err)
			}
		}
		report.Notified = true
	}

	s.log.InfoContext(ctx, "Market report completed",
		logger.StringField("metric", opts.Metric),
		logger.StringField("period", opts.Period),
		logger.IntField("symbols_analyzed", report.SymbolsAnalyzed),
		logger.IntField("earnings", len(report.Earnings)))
	return report, nil
}

func (s *marketReportService) withDefaults(opts ReportOptions) ReportOptions {
	if opts.Metric == "" {
		opts.Metric = s.cfg.Report.Metric
	}
	if opts.TopN <= 0 {
		opts.TopN = s.cfg.Report.TopN
	}
	if opts.TopN <= 0 {
		opts.TopN = 10
	}
	if opts.Period == "" {
		opts.Period = s.cfg.Report.Period
	}
	opts.Metric = strings.ToLower(opts.Metric)
	return opts
}

// constituents returns the explicit symbols when given, else the configured universe.
func (s *marketReportService) constituents(ctx context.Context, symbols []string) ([]entity.Constituent, bool, error) {
	if len(symbols) > 0 {
		list := make([]entity.Constituent, 0, len(symbols))
		for _, sym := range symbols {
			list = append(list, entity.Constituent{Symbol: strings.ToUpper(strings.TrimSpace(sym))})
		}
		return list, true, nil
	}

	list, err := s.universe.Constituents(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load symbol universe: %w", err)
	}
	if limit := s.cfg.Report.MaxSymbols; limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, false, nil
}

// performances computes the period performance of every constituent. When filter is set,
// symbols below the minimum market cap, or without fundamentals, are dropped.
func (s *marketReportService) performances(ctx context.Context, list []entity.Constituent, period string, filter bool) []entity.StockPerformance {
	var out []entity.StockPerformance
	for _, c := range list {
		if !utils.ShouldContinue(ctx, s.log) {
			return out
		}

		series, err := s.marketData.GetChart(ctx, c.Symbol, period, common.DefaultChartInterval)
		if err != nil {
			s.log.WarnContext(ctx, "Skipping symbol without price history", logger.StringField("symbol", c.Symbol), logger.ErrorField(err))
			continue
		}
		perf := indicator.Performance(series)
		if perf == nil {
			continue
		}
		perf.Sector = c.Sector
		if perf.CompanyName == "" {
			perf.CompanyName = c.Company
		}

		if filter && s.cfg.Report.MinMarketCap > 0 {
			f, err := s.marketData.GetFundamentals(ctx, c.Symbol)
			if err != nil {
				s.log.DebugContext(ctx, "Skipping symbol without fundamentals", logger.StringField("symbol", c.Symbol), logger.ErrorField(err))
				continue
			}
			if f.MarketCap < s.cfg.Report.MinMarketCap {
				continue
			}
			perf.MarketCap = f.MarketCap
			if perf.Sector == "" {
				perf.Sector = f.Sector
			}
		}
		out = append(out, *perf)
	}
	return out
}

func (s *marketReportService) upcomingEarnings(ctx context.Context, list []entity.Constituent) []entity.EarningsEvent {
	if !s.earnings.Enabled() {
		s.log.DebugContext(ctx, "Earnings calendar disabled, no API key")
		return nil
	}
	now := s.opts.now()
	days := s.cfg.Earnings.DaysAhead
	events, err := s.earnings.Calendar(ctx, now, now.AddDate(0, 0, days))
	if err != nil {
		s.log.WarnContext(ctx, "Failed to fetch earnings calendar", logger.ErrorField(err))
		return nil
	}

	symbols := make([]string, 0, len(list)+len(s.cfg.Monitor.Symbols))
	for _, c := range list {
		symbols = append(symbols, c.Symbol)
	}
	symbols = append(symbols, s.cfg.Monitor.Symbols...)
	return UpcomingEarnings(events, symbols, days)
}

// RankPerformances sorts perfs best first: descending for return and volume ratio,
// ascending for volatility.
func RankPerformances(perfs []entity.StockPerformance, metric string) {
	sort.SliceStable(perfs, func(i, j int) bool {
		switch metric {
		case common.MetricVolumeRatio:
			return perfs[i].VolumeRatio > perfs[j].VolumeRatio
		case common.MetricVolatility:
			return perfs[i].Volatility < perfs[j].Volatility
		default:
			return perfs[i].ReturnPct > perfs[j].ReturnPct
		}
	})
}

// UpcomingEarnings keeps events for symbols within daysAhead, soonest first. An empty
// symbol list keeps every symbol.
func UpcomingEarnings(events []entity.EarningsEvent, symbols []string, daysAhead int) []entity.EarningsEvent {
	wanted := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		wanted[strings.ToUpper(s)] = struct{}{}
	}

	var out []entity.EarningsEvent
	for _, e := range events {
		if e.DaysUntil < 0 || e.DaysUntil > daysAhead {
			continue
		}
		if len(wanted) > 0 {
			if _, ok := wanted[strings.ToUpper(e.Symbol)]; !ok {
				continue
			}
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DaysUntil != out[j].DaysUntil {
			return out[i].DaysUntil < out[j].DaysUntil
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}

func validMetric(m string) bool {
	for _, v := range common.Metrics {
		if v == m {
			return true
		}
	}
	return false
}
