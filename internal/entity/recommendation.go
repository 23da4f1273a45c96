package entity

import "time"

// RecommendationLabel is the action suggested for a symbol.
type RecommendationLabel string

const (
	RecommendationBuy  RecommendationLabel = "BUY"
	RecommendationSell RecommendationLabel = "SELL"
	RecommendationHold RecommendationLabel = "HOLD"
)

// RecommendationResult is the scored outcome for one symbol.
type RecommendationResult struct {
	Symbol           string              `json:"symbol"`
	CompanyName      string              `json:"company_name,omitempty"`
	CurrentPrice     float64             `json:"current_price"`
	TechnicalScore   float64             `json:"technical_score"`
	SentimentScore   float64             `json:"sentiment_score"`
	FundamentalScore float64             `json:"fundamental_score"`
	WeightedScore    float64             `json:"weighted_score"`
	Label            RecommendationLabel `json:"label"`
	Confidence       float64             `json:"confidence"`
	Reasoning        string              `json:"reasoning"`
	Technical        *TechnicalMetrics   `json:"technical,omitempty"`
	Sentiment        *SentimentSummary   `json:"sentiment,omitempty"`
	Fundamentals     *Fundamentals       `json:"fundamentals,omitempty"`
	AnalyzedAt       time.Time           `json:"analyzed_at"`
}
