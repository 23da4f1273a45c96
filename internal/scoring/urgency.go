package scoring

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang-market-alert/internal/entity"
)

const (
	MinUrgency = 1
	MaxUrgency = 10
)

// KeywordTable configures how headlines are scored.
type KeywordTable struct {
	// Weights adds points for every phrase found in the text.
	Weights map[string]int `mapstructure:"weights"`
	// MarketWide phrases add MarketBonus once when at least one of them is found.
	MarketWide  []string `mapstructure:"market_wide"`
	MarketBonus int      `mapstructure:"market_bonus"`
	// NegativeWords add NegativeBonus once when at least one of them is found.
	NegativeWords []string `mapstructure:"negative_words"`
	NegativeBonus int      `mapstructure:"negative_bonus"`
	// MultiSymbolBonus is added when an item mentions more than one symbol.
	MultiSymbolBonus int `mapstructure:"multi_symbol_bonus"`
}

// CategoryThresholds are the minimum scores of each category.
type CategoryThresholds struct {
	Urgent int `mapstructure:"urgent"`
	High   int `mapstructure:"high"`
	Medium int `mapstructure:"medium"`
}

// DefaultCategoryThresholds returns 8/6/4.
func DefaultCategoryThresholds() CategoryThresholds {
	return CategoryThresholds{Urgent: 8, High: 6, Medium: 4}
}

// DefaultKeywordTable returns the built-in keyword table.
func DefaultKeywordTable() KeywordTable {
	return KeywordTable{
		Weights: map[string]int{
			"bankruptcy":        4,
			"market crash":      4,
			"halted trading":    4,
			"circuit breaker":   4,
			"federal reserve":   4,
			"earnings beat":     3,
			"earnings miss":     3,
			"guidance raised":   3,
			"guidance lowered":  3,
			"fda approval":      3,
			"merger":            3,
			"acquisition":       3,
			"interest rates":    3,
			"recession":         3,
			"dividend cut":      3,
			"bailout":           3,
			"dividend increase": 2,
			"stock split":       2,
			"lawsuit":           2,
			"recall":            2,
			"layoffs":           2,
			"inflation":         2,
			"correction":        2,
			"all-time high":     2,
			"record low":        2,
			"breakthrough":      2,
			"partnership":       1,
			"ceo":               1,
			"hiring":            1,
		},
		MarketWide: []string{
			"fed", "federal reserve", "jerome powell", "interest rate", "inflation",
			"unemployment", "gdp", "retail sales", "consumer confidence",
			"oil prices", "gold", "bitcoin", "cryptocurrency", "nasdaq", "dow jones",
			"s&p 500", "futures", "premarket", "after hours", "volatility",
		},
		MarketBonus:      2,
		NegativeWords:    []string{"crash", "plunge", "collapse", "emergency", "crisis", "halt"},
		NegativeBonus:    2,
		MultiSymbolBonus: 1,
	}
}

type weightedPhrase struct {
	phrase string
	weight int
}

// UrgencyScorer scores news items against a KeywordTable. It is safe for concurrent use.
type UrgencyScorer struct {
	weighted         []weightedPhrase
	market           []string
	marketBonus      int
	negative         []string
	negativeBonus    int
	multiSymbolBonus int
	thresholds       CategoryThresholds
}

// NewUrgencyScorer validates the table and thresholds and builds a scorer.
func NewUrgencyScorer(table KeywordTable, thresholds CategoryThresholds) (*UrgencyScorer, error) {
	if table.MarketBonus < 0 || table.NegativeBonus < 0 || table.MultiSymbolBonus < 0 {
		return nil, errors.New("keyword bonuses must not be negative")
	}
	if !(thresholds.Medium <= thresholds.High && thresholds.High <= thresholds.Urgent) {
		return nil, fmt.Errorf("category thresholds must satisfy medium <= high <= urgent, got %d/%d/%d",
			thresholds.Medium, thresholds.High, thresholds.Urgent)
	}

	s := &UrgencyScorer{
		market:           normalizePhrases(table.MarketWide),
		marketBonus:      table.MarketBonus,
		negative:         normalizePhrases(table.NegativeWords),
		negativeBonus:    table.NegativeBonus,
		multiSymbolBonus: table.MultiSymbolBonus,
		thresholds:       thresholds,
	}
	for phrase, weight := range table.Weights {
		if weight < 0 {
			return nil, fmt.Errorf("keyword %q has negative weight %d", phrase, weight)
		}
		p := strings.ToLower(strings.TrimSpace(phrase))
		if p == "" {
			continue
		}
		s.weighted = append(s.weighted, weightedPhrase{phrase: p, weight: weight})
	}
	sort.Slice(s.weighted, func(i, j int) bool { return s.weighted[i].phrase < s.weighted[j].phrase })
	return s, nil
}

// Score computes the urgency of item: the sum of matched keyword weights plus the
// group bonuses, clamped to [MinUrgency, MaxUrgency].
func (s *UrgencyScorer) Score(item entity.NewsItem) entity.UrgencyScore {
	text := strings.ToLower(item.Text())

	total := 0
	for _, wp := range s.weighted {
		if strings.Contains(text, wp.phrase) {
			total += wp.weight
		}
	}
	if containsAny(text, s.market) {
		total += s.marketBonus
	}
	if containsAny(text, s.negative) {
		total += s.negativeBonus
	}
	if len(item.MatchedSymbols) > 1 {
		total += s.multiSymbolBonus
	}

	score := clampInt(total, MinUrgency, MaxUrgency)
	return entity.NewUrgencyScore(item, score, s.Categorize(score))
}

// Categorize maps a score to its category.
func (s *UrgencyScorer) Categorize(score int) entity.UrgencyCategory {
	switch {
	case score >= s.thresholds.Urgent:
		return entity.UrgencyUrgent
	case score >= s.thresholds.High:
		return entity.UrgencyHigh
	case score >= s.thresholds.Medium:
		return entity.UrgencyMedium
	default:
		return entity.UrgencyLow
	}
}

// MatchedKeywords returns the sorted set of weighted and market-wide phrases found in text.
func (s *UrgencyScorer) MatchedKeywords(text string) []string {
	lower := strings.ToLower(text)
	seen := make(map[string]struct{})
	for _, wp := range s.weighted {
		if strings.Contains(lower, wp.phrase) {
			seen[wp.phrase] = struct{}{}
		}
	}
	for _, p := range s.market {
		if strings.Contains(lower, p) {
			seen[p] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func normalizePhrases(phrases []string) []string {
	out := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
