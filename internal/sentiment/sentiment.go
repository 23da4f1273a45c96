package sentiment

import (
	"fmt"
	"regexp"
	"strings"

	"golang-market-alert/internal/entity"

	"github.com/jonreiter/govader"
)

const (
	MethodKeyword = "keyword"
	MethodVader   = "vader"
)

// Analyzer scores the polarity of a piece of text.
type Analyzer interface {
	Analyze(text string) entity.SentimentResult
}

// New returns the analyzer for method. An empty method selects the keyword analyzer.
func New(method string, positive, negative []string) (Analyzer, error) {
	switch strings.ToLower(method) {
	case "", MethodKeyword:
		return NewKeywordAnalyzer(positive, negative), nil
	case MethodVader:
		return NewVaderAnalyzer(), nil
	default:
		return nil, fmt.Errorf("unknown sentiment method %q", method)
	}
}

var wordPattern = regexp.MustCompile(`\b\w+\b`)

// DefaultPositiveWords is the built-in positive vocabulary.
var DefaultPositiveWords = []string{
	"excellent", "amazing", "outstanding", "superb", "fantastic", "great", "good",
	"positive", "growth", "profit", "gain", "increase", "up", "rise", "surge",
	"bull", "bullish", "strong", "robust", "solid", "beat", "exceed", "outperform",
	"buy", "upgrade", "recommend", "boost", "rally", "momentum", "optimistic",
	"breakthrough", "success", "winning", "recovery", "expansion",
}

// DefaultNegativeWords is the built-in negative vocabulary.
var DefaultNegativeWords = []string{
	"terrible", "awful", "horrible", "bad", "poor", "negative", "loss", "decline",
	"decrease", "down", "fall", "drop", "bear", "bearish", "weak", "fragile",
	"miss", "underperform", "sell", "downgrade", "concern", "worry", "crash",
	"plunge", "pessimistic", "risk", "threat", "problem", "issue", "struggle",
	"bankruptcy", "lawsuit", "investigation", "scandal", "crisis",
}

// KeywordAnalyzer counts positive and negative words.
type KeywordAnalyzer struct {
	positive map[string]struct{}
	negative map[string]struct{}
}

// NewKeywordAnalyzer builds an analyzer; empty lists fall back to the defaults.
func NewKeywordAnalyzer(positive, negative []string) *KeywordAnalyzer {
	if len(positive) == 0 {
		positive = DefaultPositiveWords
	}
	if len(negative) == 0 {
		negative = DefaultNegativeWords
	}
	return &KeywordAnalyzer{positive: toSet(positive), negative: toSet(negative)}
}

// Analyze scores text as (positive-negative)/words*100 with confidence equal to the
// density of sentiment words.
func (a *KeywordAnalyzer) Analyze(text string) entity.SentimentResult {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	if len(words) == 0 {
		return entity.SentimentResult{Label: entity.SentimentNeutral}
	}

	var pos, neg int
	for _, w := range words {
		if _, ok := a.positive[w]; ok {
			pos++
		}
		if _, ok := a.negative[w]; ok {
			neg++
		}
	}
	if pos+neg == 0 {
		return entity.SentimentResult{Label: entity.SentimentNeutral}
	}

	total := float64(len(words))
	score := float64(pos-neg) / total * 100
	confidence := float64(pos+neg) / total * 100
	if confidence > 100 {
		confidence = 100
	}
	return entity.SentimentResult{Label: labelFor(score, 0.5), Score: score, Confidence: confidence}
}

// VaderAnalyzer wraps the VADER lexicon.
type VaderAnalyzer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderAnalyzer() *VaderAnalyzer {
	return &VaderAnalyzer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Analyze labels text by its compound score with ±0.20 thresholds. The score is the
// compound value scaled by 10 so it lines up with the keyword analyzer's range.
func (a *VaderAnalyzer) Analyze(text string) entity.SentimentResult {
	if strings.TrimSpace(text) == "" {
		return entity.SentimentResult{Label: entity.SentimentNeutral}
	}
	compound := a.analyzer.PolarityScores(text).Compound

	label := entity.SentimentNeutral
	if compound >= 0.20 {
		label = entity.SentimentPositive
	} else if compound <= -0.20 {
		label = entity.SentimentNegative
	}
	confidence := compound * 100
	if confidence < 0 {
		confidence = -confidence
	}
	return entity.SentimentResult{Label: label, Score: compound * 10, Confidence: confidence}
}

// Aggregate combines article results. The overall label follows the mean score with
// ±1 thresholds and confidence is the share of articles carrying that label.
func Aggregate(results []entity.SentimentResult) *entity.SentimentSummary {
	summary := &entity.SentimentSummary{
		Overall: entity.SentimentNeutral,
		Breakdown: map[entity.SentimentLabel]int{
			entity.SentimentPositive: 0,
			entity.SentimentNegative: 0,
			entity.SentimentNeutral:  0,
		},
	}
	if len(results) == 0 {
		return summary
	}

	sum := 0.0
	for _, r := range results {
		sum += r.Score
		summary.Breakdown[r.Label]++
	}
	summary.ArticlesAnalyzed = len(results)
	summary.Score = sum / float64(len(results))
	summary.Overall = labelFor(summary.Score, 1)
	summary.Confidence = float64(summary.Breakdown[summary.Overall]) / float64(len(results)) * 100
	return summary
}

func labelFor(score, threshold float64) entity.SentimentLabel {
	switch {
	case score > threshold:
		return entity.SentimentPositive
	case score < -threshold:
		return entity.SentimentNegative
	default:
		return entity.SentimentNeutral
	}
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return set
}
