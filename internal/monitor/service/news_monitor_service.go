package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang-market-alert/internal/dedupe"
	"golang-market-alert/internal/entity"
	"golang-market-alert/internal/extractor"
	"golang-market-alert/internal/monitor/config"
	"golang-market-alert/internal/monitor/dto"
	"golang-market-alert/internal/monitor/repository"
	"golang-market-alert/internal/scoring"
	"golang-market-alert/pkg/logger"
	"golang-market-alert/pkg/telegram"
	"golang-market-alert/pkg/utils"

	"github.com/lib/pq"
)

// NewsMonitorService runs the fetch, score, dedupe and notify cycle.
type NewsMonitorService interface {
	RunCycle(ctx context.Context, notify bool) (*dto.CycleResult, error)
}

type newsMonitorService struct {
	cfg       *config.Config
	log       *logger.Logger
	feeds     repository.NewsFeedRepository
	newsAPI   repository.NewsAPIRepository
	alerts    repository.NewsAlertRepository
	scorer    *scoring.UrgencyScorer
	watchlist *extractor.Watchlist
	highValue *extractor.Watchlist
	gate      *dedupe.Gate
	notifier  telegram.Notifier
	opts      options
}

// NewNewsMonitorService creates a news monitor.
func NewNewsMonitorService(
	cfg *config.Config,
	log *logger.Logger,
	feeds repository.NewsFeedRepository,
	newsAPI repository.NewsAPIRepository,
	alerts repository.NewsAlertRepository,
	scorer *scoring.UrgencyScorer,
	gate *dedupe.Gate,
	notifier telegram.Notifier,
	opts ...Option,
) NewsMonitorService {
	return &newsMonitorService{
		cfg:       cfg,
		log:       log,
		feeds:     feeds,
		newsAPI:   newsAPI,
		alerts:    alerts,
		scorer:    scorer,
		watchlist: extractor.NewWatchlist(cfg.Monitor.Symbols),
		highValue: extractor.NewWatchlist(cfg.Monitor.HighValueSymbols),
		gate:      gate,
		notifier:  notifier,
		opts:      buildOptions(opts),
	}
}

// RunCycle performs one monitoring pass. With notify unset it is a dry run: decisions
// come from a gate plan, so nothing is recorded or sent.
func (s *newsMonitorService) RunCycle(ctx context.Context, notify bool) (*dto.CycleResult, error) {
	now := s.opts.now()
	result := &dto.CycleResult{Alerts: []dto.AlertCandidate{}}

	items, err := s.fetch(ctx, now)
	if err != nil {
		return nil, err
	}
	result.Fetched = len(items)

	scores := s.score(ctx, items)
	result.Relevant = len(scores)

	var plan *dedupe.Plan
	if !notify {
		plan = s.gate.Plan()
	}

	sent := 0
	for _, sc := range scores {
		if !utils.ShouldContinue(ctx, s.log) {
			return result, ctx.Err()
		}

		item := sc.Item()
		candidate := dto.AlertCandidate{
			Title:    item.Title,
			URL:      item.URL,
			Source:   item.Source,
			Symbols:  item.MatchedSymbols,
			Keywords: item.MatchedKeywords,
			Score:    sc.Score(),
			Category: sc.Category(),
		}

		if !s.passesMinimum(sc) {
			result.BelowMinimum++
			continue
		}

		key := dedupe.Key(item.Title, item.MatchedSymbols)
		var decision dedupe.Decision
		if notify {
			decision, err = s.gate.Admit(ctx, key)
		} else {
			decision, err = plan.Admit(ctx, key)
		}
		if err != nil {
			if decision != dedupe.Accepted {
				return result, err
			}
			s.log.WarnContext(ctx, "Alert accepted but not persisted", logger.ErrorField(err))
		}
		candidate.Decision = string(decision)
		result.Alerts = append(result.Alerts, candidate)

		switch decision {
		case dedupe.SuppressedDuplicate:
			result.Duplicates++
			continue
		case dedupe.SuppressedRateLimit:
			result.RateLimited++
			continue
		}

		if !notify {
			continue
		}

		if sent > 0 && !sleep(ctx, s.cfg.Monitor.AlertDelay) {
			return result, ctx.Err()
		}
		sent++

		sendErr := s.notifier.SendMessage(telegram.FormatNewsAlert(sc, s.opts.now()))
		if sendErr != nil {
			result.Failed++
			s.log.ErrorContext(ctx, "Failed to send news alert", logger.StringField("title", item.Title), logger.ErrorField(sendErr))
		} else {
			result.Sent++
			s.log.InfoContext(ctx, "News alert sent",
				logger.StringField("title", item.Title),
				logger.StringsField("symbols", item.MatchedSymbols),
				logger.IntField("urgency", sc.Score()))
		}
		s.saveAlert(ctx, key, sc, sendErr == nil)
	}

	s.log.InfoContext(ctx, "News monitor cycle completed",
		logger.IntField("fetched", result.Fetched),
		logger.IntField("relevant", result.Relevant),
		logger.IntField("sent", result.Sent),
		logger.IntField("duplicates", result.Duplicates),
		logger.IntField("rate_limited", result.RateLimited),
		logger.IntField("tracked_alerts", s.gate.Len()),
		logger.BoolField("notify", notify))
	return result, nil
}

// fetch gathers items from every source and drops repeated titles.
func (s *newsMonitorService) fetch(ctx context.Context, now time.Time) ([]entity.NewsItem, error) {
	var (
		items []entity.NewsItem
		errs  []error
	)

	feedItems, err := s.feeds.FetchFeeds(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "Failed to fetch RSS feeds", logger.ErrorField(err))
		errs = append(errs, err)
	}
	items = append(items, feedItems...)

	if s.newsAPI.Enabled() {
		apiItems, err := s.newsAPI.Search(ctx, "", now.Add(-s.cfg.News.Lookback))
		if err != nil {
			s.log.WarnContext(ctx, "Failed to fetch NewsAPI articles", logger.ErrorField(err))
			errs = append(errs, err)
		}
		items = append(items, apiItems...)
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if len(items) == 0 && len(errs) > 0 {
		return nil, fmt.Errorf("all news sources failed: %w", errors.Join(errs...))
	}
	return uniqueByTitle(items), nil
}

// score keeps items that mention a watched symbol and orders them by urgency.
func (s *newsMonitorService) score(ctx context.Context, items []entity.NewsItem) []entity.UrgencyScore {
	var scores []entity.UrgencyScore
	for _, item := range items {
		symbols := s.watchlist.Extract(item.Text())
		if len(symbols) == 0 {
			continue
		}
		if s.cfg.News.FetchArticleBody && item.URL != "" {
			if text, err := s.feeds.FetchArticleText(ctx, item.URL); err != nil {
				s.log.DebugContext(ctx, "Failed to fetch article body", logger.StringField("url", item.URL), logger.ErrorField(err))
			} else if text != "" {
				item.Body = text
			}
		}
		item.MatchedSymbols = symbols
		item.MatchedKeywords = s.scorer.MatchedKeywords(item.Text())
		scores = append(scores, s.scorer.Score(item))
	}

	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score() > scores[j].Score() })
	return scores
}

// passesMinimum applies the minimum urgency, waived for high value symbols.
func (s *newsMonitorService) passesMinimum(sc entity.UrgencyScore) bool {
	if sc.Score() >= s.cfg.Monitor.MinimumUrgency {
		return true
	}
	for _, sym := range sc.Item().MatchedSymbols {
		if s.highValue.Contains(sym) {
			return true
		}
	}
	return false
}

func (s *newsMonitorService) saveAlert(ctx context.Context, key string, sc entity.UrgencyScore, delivered bool) {
	item := sc.Item()
	alert := &entity.NewsAlert{
		DedupeKey:       key,
		Title:           item.Title,
		URL:             item.URL,
		Source:          item.Source,
		Symbols:         pq.StringArray(item.MatchedSymbols),
		Keywords:        pq.StringArray(item.MatchedKeywords),
		UrgencyScore:    sc.Score(),
		UrgencyCategory: string(sc.Category()),
		Delivered:       delivered,
		SentAt:          s.opts.now(),
	}
	if !item.PublishedAt.IsZero() {
		alert.PublishedAt = utils.ToPointer(item.PublishedAt)
	}
	if err := s.alerts.Create(ctx, alert); err != nil {
		s.log.ErrorContext(ctx, "Failed to save news alert", logger.ErrorField(err))
	}
}

func uniqueByTitle(items []entity.NewsItem) []entity.NewsItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]entity.NewsItem, 0, len(items))
	for _, item := range items {
		k := strings.ToLower(strings.Join(strings.Fields(item.Title), " "))
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, item)
	}
	return out
}
