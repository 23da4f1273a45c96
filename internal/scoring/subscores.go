package scoring

import (
	"fmt"
	"strings"

	"golang-market-alert/internal/entity"
)

var (
	growthSectors    = []string{"technology", "healthcare", "consumer discretionary"}
	defensiveSectors = []string{"utilities", "consumer staples", "real estate"}
)

// TechnicalScore combines momentum, RSI, moving-average position and volume into [-100, 100].
func TechnicalScore(m *entity.TechnicalMetrics) float64 {
	if m == nil {
		return 0
	}

	momentum := m.DayChangePct*0.5 + m.WeekChangePct*0.3 + m.MonthChangePct*0.2
	score := momentum * 0.4

	var rsi float64
	switch {
	case m.RSI < 30:
		rsi = 20
	case m.RSI > 70:
		rsi = -20
	}
	score += rsi * 0.25

	var ma float64
	switch {
	case m.PriceVsMA20 > 2 && m.PriceVsMA50 > 2:
		ma = 15
	case m.PriceVsMA20 > 0 && m.PriceVsMA50 > 0:
		ma = 10
	case m.PriceVsMA20 < -2 && m.PriceVsMA50 < -2:
		ma = -15
	case m.PriceVsMA20 < 0 && m.PriceVsMA50 < 0:
		ma = -10
	}
	score += ma * 0.2

	var volume float64
	switch {
	case m.VolumeRatio > 2:
		volume = 10
	case m.VolumeRatio > 1.5:
		volume = 5
	case m.VolumeRatio < 0.5:
		volume = -5
	}
	score += volume * 0.15

	return clamp(score, -SubScoreRange, SubScoreRange)
}

// SentimentScore scales the overall news polarity by its strength, confidence and article count.
func SentimentScore(s *entity.SentimentSummary) float64 {
	if s == nil {
		return 0
	}

	var base float64
	switch s.Overall {
	case entity.SentimentPositive:
		base = 30
	case entity.SentimentNegative:
		base = -30
	}

	multiplier := s.Score
	if multiplier < 0 {
		multiplier = -multiplier
	}
	multiplier = multiplier / 2
	if multiplier > 2 {
		multiplier = 2
	}

	score := base * multiplier * (s.Confidence / 100)
	switch {
	case s.ArticlesAnalyzed >= 5:
		score *= 1.2
	case s.ArticlesAnalyzed >= 3:
		score *= 1.1
	case s.ArticlesAnalyzed < 2:
		score *= 0.7
	}
	return clamp(score, -SubScoreRange, SubScoreRange)
}

// FundamentalScore rates valuation, size and sector.
func FundamentalScore(f *entity.Fundamentals) float64 {
	if f == nil {
		return 0
	}

	var score float64
	if f.PERatio > 0 {
		switch {
		case f.PERatio < 15:
			score += 20
		case f.PERatio > 30:
			score -= 20
		}
	}

	switch {
	case f.MarketCap > 100e9:
		score += 5
	case f.MarketCap > 0 && f.MarketCap < 2e9:
		score -= 5
	}

	sector := strings.ToLower(f.Sector)
	switch {
	case sector != "" && containsAny(sector, growthSectors):
		score += 5
	case sector != "" && containsAny(sector, defensiveSectors):
		score += 2
	}
	return clamp(score, -SubScoreRange, SubScoreRange)
}

// Reasoning explains a recommendation in one sentence.
func Reasoning(r entity.RecommendationResult) string {
	var reasons []string

	if m := r.Technical; m != nil {
		switch {
		case r.TechnicalScore > 20:
			reasons = append(reasons, "strong technical indicators")
			if m.DayChangePct > 3 {
				reasons = append(reasons, fmt.Sprintf("strong daily momentum (+%.1f%%)", m.DayChangePct))
			}
			if m.RSI < 30 {
				reasons = append(reasons, "RSI indicates oversold condition")
			}
			if m.VolumeRatio > 2 {
				reasons = append(reasons, "unusually high trading volume")
			}
		case r.TechnicalScore < -20:
			reasons = append(reasons, "weak technical indicators")
			if m.DayChangePct < -3 {
				reasons = append(reasons, fmt.Sprintf("negative daily momentum (%.1f%%)", m.DayChangePct))
			}
			if m.RSI > 70 {
				reasons = append(reasons, "RSI indicates overbought condition")
			}
		default:
			reasons = append(reasons, "mixed technical signals")
		}
	}

	if s := r.Sentiment; s != nil {
		switch {
		case r.SentimentScore > 15:
			reasons = append(reasons, fmt.Sprintf("positive news sentiment from %d articles", s.ArticlesAnalyzed))
		case r.SentimentScore < -15:
			reasons = append(reasons, fmt.Sprintf("negative news sentiment from %d articles", s.ArticlesAnalyzed))
		case s.ArticlesAnalyzed > 0:
			reasons = append(reasons, fmt.Sprintf("neutral news sentiment from %d articles", s.ArticlesAnalyzed))
		}
	}

	if f := r.Fundamentals; f != nil && r.FundamentalScore != 0 {
		switch {
		case r.FundamentalScore > 10:
			reasons = append(reasons, "favorable fundamental metrics")
			if f.PERatio > 0 && f.PERatio < 15 {
				reasons = append(reasons, fmt.Sprintf("attractive P/E ratio (%.1f)", f.PERatio))
			}
		case r.FundamentalScore < -10:
			reasons = append(reasons, "concerning fundamental metrics")
			if f.PERatio > 30 {
				reasons = append(reasons, fmt.Sprintf("high P/E ratio (%.1f)", f.PERatio))
			}
		}
		if f.Sector != "" {
			reasons = append(reasons, fmt.Sprintf("operates in %s sector", strings.ToLower(f.Sector)))
		}
	}

	var opening string
	switch {
	case r.WeightedScore > 50:
		opening = "Multiple strong positive factors align"
	case r.WeightedScore > 30:
		opening = "Several positive factors outweigh negatives"
	case r.WeightedScore < -50:
		opening = "Multiple concerning factors align"
	case r.WeightedScore < -30:
		opening = "Several negative factors outweigh positives"
	default:
		opening = "Mixed signals from various indicators"
	}

	if len(reasons) > 4 {
		reasons = reasons[:4]
	}
	if len(reasons) == 0 {
		return opening + "."
	}
	return opening + ": " + strings.Join(reasons, ", ") + "."
}
