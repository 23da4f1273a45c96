package scoring

import (
	"errors"
	"fmt"
	"math"
	"time"

	"golang-market-alert/internal/entity"
)

// SubScoreRange bounds every sub-score and the weighted score.
const SubScoreRange = 100.0

// Weights are the contributions of each sub-score to the weighted score.
type Weights struct {
	Technical   float64 `mapstructure:"technical"`
	Sentiment   float64 `mapstructure:"sentiment"`
	Fundamental float64 `mapstructure:"fundamental"`
}

// RecommendationConfig configures the recommendation scorer.
type RecommendationConfig struct {
	Weights       Weights `mapstructure:"weights"`
	BuyThreshold  float64 `mapstructure:"buy_threshold"`
	SellThreshold float64 `mapstructure:"sell_threshold"`
}

// DefaultRecommendationConfig returns weights 0.6/0.3/0.1 and thresholds of ±30.
func DefaultRecommendationConfig() RecommendationConfig {
	return RecommendationConfig{
		Weights:       Weights{Technical: 0.6, Sentiment: 0.3, Fundamental: 0.1},
		BuyThreshold:  30,
		SellThreshold: -30,
	}
}

// Inputs are the three sub-scores, each in [-100, 100].
type Inputs struct {
	Technical   float64
	Sentiment   float64
	Fundamental float64
}

// RecommendationScorer turns sub-scores into a BUY/SELL/HOLD label. It holds no state.
type RecommendationScorer struct {
	cfg RecommendationConfig
}

// NewRecommendationScorer validates cfg.
func NewRecommendationScorer(cfg RecommendationConfig) (*RecommendationScorer, error) {
	w := cfg.Weights
	if w.Technical < 0 || w.Sentiment < 0 || w.Fundamental < 0 {
		return nil, errors.New("recommendation weights must not be negative")
	}
	if w.Technical+w.Sentiment+w.Fundamental == 0 {
		return nil, errors.New("recommendation weights must not all be zero")
	}
	if cfg.SellThreshold > cfg.BuyThreshold {
		return nil, fmt.Errorf("sell threshold %.2f is above buy threshold %.2f", cfg.SellThreshold, cfg.BuyThreshold)
	}
	return &RecommendationScorer{cfg: cfg}, nil
}

// Weighted returns the weighted sum of the clamped inputs.
func (s *RecommendationScorer) Weighted(in Inputs) float64 {
	w := s.cfg.Weights
	return clamp(in.Technical, -SubScoreRange, SubScoreRange)*w.Technical +
		clamp(in.Sentiment, -SubScoreRange, SubScoreRange)*w.Sentiment +
		clamp(in.Fundamental, -SubScoreRange, SubScoreRange)*w.Fundamental
}

// Label maps a weighted score to BUY (above the buy threshold), SELL (below the sell threshold) or HOLD.
func (s *RecommendationScorer) Label(weighted float64) entity.RecommendationLabel {
	switch {
	case weighted > s.cfg.BuyThreshold:
		return entity.RecommendationBuy
	case weighted < s.cfg.SellThreshold:
		return entity.RecommendationSell
	default:
		return entity.RecommendationHold
	}
}

// Confidence grows with |weighted| and is capped at 1.
func Confidence(weighted float64) float64 {
	return math.Min(math.Abs(weighted)*1.5/100, 1.0)
}

// Score produces the recommendation for symbol.
func (s *RecommendationScorer) Score(symbol string, in Inputs) entity.RecommendationResult {
	weighted := s.Weighted(in)
	return entity.RecommendationResult{
		Symbol:           symbol,
		TechnicalScore:   clamp(in.Technical, -SubScoreRange, SubScoreRange),
		SentimentScore:   clamp(in.Sentiment, -SubScoreRange, SubScoreRange),
		FundamentalScore: clamp(in.Fundamental, -SubScoreRange, SubScoreRange),
		WeightedScore:    weighted,
		Label:            s.Label(weighted),
		Confidence:       Confidence(weighted),
		AnalyzedAt:       time.Now(),
	}
}
