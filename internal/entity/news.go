package entity

import "time"

// NewsItem is a single headline gathered during a monitoring cycle.
type NewsItem struct {
	Title           string    `json:"title"`
	Body            string    `json:"body"`
	URL             string    `json:"url"`
	Source          string    `json:"source"`
	PublishedAt     time.Time `json:"published_at"`
	MatchedSymbols  []string  `json:"matched_symbols"`
	MatchedKeywords []string  `json:"matched_keywords"`
}

// Text returns the searchable text of the item.
func (n NewsItem) Text() string {
	if n.Body == "" {
		return n.Title
	}
	return n.Title + " " + n.Body
}

// UrgencyCategory buckets an urgency score.
type UrgencyCategory string

const (
	UrgencyLow    UrgencyCategory = "LOW"
	UrgencyMedium UrgencyCategory = "MEDIUM"
	UrgencyHigh   UrgencyCategory = "HIGH"
	UrgencyUrgent UrgencyCategory = "URGENT"
)

// UrgencyScore is derived from exactly one NewsItem. Fields are unexported so a
// score can only be produced by the scorer and never changed afterwards.
type UrgencyScore struct {
	item     NewsItem
	score    int
	category UrgencyCategory
}

// NewUrgencyScore builds a score for item.
func NewUrgencyScore(item NewsItem, score int, category UrgencyCategory) UrgencyScore {
	item.MatchedSymbols = append([]string(nil), item.MatchedSymbols...)
	item.MatchedKeywords = append([]string(nil), item.MatchedKeywords...)
	return UrgencyScore{item: item, score: score, category: category}
}

func (u UrgencyScore) Item() NewsItem {
	item := u.item
	item.MatchedSymbols = append([]string(nil), u.item.MatchedSymbols...)
	item.MatchedKeywords = append([]string(nil), u.item.MatchedKeywords...)
	return item
}

func (u UrgencyScore) Score() int                { return u.score }
func (u UrgencyScore) Category() UrgencyCategory { return u.category }

// SentRecord marks an alert delivered at SentAt.
type SentRecord struct {
	DedupeKey string    `json:"dedupe_key"`
	SentAt    time.Time `json:"sent_at"`
}
