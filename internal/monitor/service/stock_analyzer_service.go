package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang-market-alert/internal/entity"
	"golang-market-alert/internal/indicator"
	"golang-market-alert/internal/monitor/config"
	"golang-market-alert/internal/monitor/repository"
	"golang-market-alert/internal/scoring"
	"golang-market-alert/internal/sentiment"
	"golang-market-alert/pkg/common"
	"golang-market-alert/pkg/logger"
)

const sentimentLookback = 7 * 24 * time.Hour

// StockAnalyzerService produces BUY/SELL/HOLD recommendations.
type StockAnalyzerService interface {
	Analyze(ctx context.Context, symbol string) (*entity.RecommendationResult, error)
}

type stockAnalyzerService struct {
	cfg             *config.Config
	log             *logger.Logger
	marketData      repository.MarketDataRepository
	feeds           repository.NewsFeedRepository
	newsAPI         repository.NewsAPIRepository
	recommendations repository.StockRecommendationRepository
	analyzer        sentiment.Analyzer
	scorer          *scoring.RecommendationScorer
	opts            options
}

// NewStockAnalyzerService creates a stock analyzer.
func NewStockAnalyzerService(
	cfg *config.Config,
	log *logger.Logger,
	marketData repository.MarketDataRepository,
	feeds repository.NewsFeedRepository,
	newsAPI repository.NewsAPIRepository,
	recommendations repository.StockRecommendationRepository,
	analyzer sentiment.Analyzer,
	scorer *scoring.RecommendationScorer,
	opts ...Option,
) StockAnalyzerService {
	return &stockAnalyzerService{
		cfg:             cfg,
		log:             log,
		marketData:      marketData,
		feeds:           feeds,
		newsAPI:         newsAPI,
		recommendations: recommendations,
		analyzer:        analyzer,
		scorer:          scorer,
		opts:            buildOptions(opts),
	}
}

// Analyze scores symbol from its price history, recent news and fundamentals. Only a
// missing price history is fatal; news and fundamentals failures score as neutral.
func (s *stockAnalyzerService) Analyze(ctx context.Context, symbol string) (*entity.RecommendationResult, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	log := s.log.With(logger.StringField("symbol", symbol))

	series, err := s.marketData.GetChart(ctx, symbol, common.DefaultChartRange, common.DefaultChartInterval)
	if err != nil {
		return nil, fmt.Errorf("failed to get price history for %s: %w", symbol, err)
	}
	metrics := indicator.Compute(series)
	if metrics == nil {
		return nil, fmt.Errorf("price history for %s: %w", symbol, repository.ErrNoData)
	}

	summary := sentiment.Aggregate(s.sentiments(ctx, symbol))

	fundamentals, err := s.marketData.GetFundamentals(ctx, symbol)
	if err != nil {
		log.WarnContext(ctx, "Failed to get fundamentals", logger.ErrorField(err))
		fundamentals = nil
	}

	result := s.scorer.Score(symbol, scoring.Inputs{
		Technical:   scoring.TechnicalScore(metrics),
		Sentiment:   scoring.SentimentScore(summary),
		Fundamental: scoring.FundamentalScore(fundamentals),
	})
	result.CurrentPrice = series.CurrentPrice
	result.CompanyName = series.CompanyName
	if fundamentals != nil && fundamentals.CompanyName != "" {
		result.CompanyName = fundamentals.CompanyName
	}
	result.Technical = metrics
	result.Sentiment = summary
	result.Fundamentals = fundamentals
	result.AnalyzedAt = s.opts.now()
	result.Reasoning = scoring.Reasoning(result)

	s.save(ctx, &result)

	log.InfoContext(ctx, "Stock analyzed",
		logger.StringField("label", string(result.Label)),
		logger.Float64Field("weighted_score", result.WeightedScore),
		logger.Float64Field("confidence", result.Confidence))
	return &result, nil
}

// sentiments scores the recent headlines about symbol.
func (s *stockAnalyzerService) sentiments(ctx context.Context, symbol string) []entity.SentimentResult {
	var items []entity.NewsItem

	feedItems, err := s.feeds.FetchSymbolFeed(ctx, symbol)
	if err != nil {
		s.log.WarnContext(ctx, "Failed to fetch symbol feed", logger.StringField("symbol", symbol), logger.ErrorField(err))
	}
	items = append(items, feedItems...)

	if s.newsAPI.Enabled() {
		apiItems, err := s.newsAPI.Search(ctx, symbol, s.opts.now().Add(-sentimentLookback))
		if err != nil {
			s.log.WarnContext(ctx, "Failed to search NewsAPI", logger.StringField("symbol", symbol), logger.ErrorField(err))
		}
		items = append(items, apiItems...)
	}

	items = uniqueByTitle(items)
	if limit := s.cfg.News.MaxSymbolArticles; limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	results := make([]entity.SentimentResult, 0, len(items))
	for _, item := range items {
		results = append(results, s.analyzer.Analyze(item.Text()))
	}
	return results
}

func (s *stockAnalyzerService) save(ctx context.Context, result *entity.RecommendationResult) {
	data, err := json.Marshal(result)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to marshal recommendation", logger.ErrorField(err))
		return
	}
	rec := &entity.StockRecommendation{
		Symbol:           result.Symbol,
		Label:            string(result.Label),
		WeightedScore:    result.WeightedScore,
		Confidence:       result.Confidence,
		TechnicalScore:   result.TechnicalScore,
		SentimentScore:   result.SentimentScore,
		FundamentalScore: result.FundamentalScore,
		Data:             data,
	}
	if err := s.recommendations.Create(ctx, rec); err != nil {
		s.log.ErrorContext(ctx, "Failed to save recommendation", logger.StringField("symbol", result.Symbol), logger.ErrorField(err))
	}
}
