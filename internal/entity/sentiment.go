package entity

// SentimentLabel classifies text polarity.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

// SentimentResult is the polarity of one article.
type SentimentResult struct {
	Label      SentimentLabel `json:"label"`
	Score      float64        `json:"score"`
	Confidence float64        `json:"confidence"`
}

// SentimentSummary aggregates article sentiment for one symbol.
type SentimentSummary struct {
	Overall          SentimentLabel         `json:"overall"`
	Score            float64                `json:"score"`
	Confidence       float64                `json:"confidence"`
	ArticlesAnalyzed int                    `json:"articles_analyzed"`
	Breakdown        map[SentimentLabel]int `json:"breakdown"`
}
