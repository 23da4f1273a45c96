package entity

import (
	"time"

	"gorm.io/datatypes"
)

// StockRecommendation is the history row of a RecommendationResult.
type StockRecommendation struct {
	ID               int64          `gorm:"primaryKey" json:"id"`
	Symbol           string         `gorm:"not null;index" json:"symbol"`
	Label            string         `gorm:"not null" json:"label"`
	WeightedScore    float64        `json:"weighted_score"`
	Confidence       float64        `json:"confidence"`
	TechnicalScore   float64        `json:"technical_score"`
	SentimentScore   float64        `json:"sentiment_score"`
	FundamentalScore float64        `json:"fundamental_score"`
	Data             datatypes.JSON `gorm:"type:jsonb" json:"data"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (StockRecommendation) TableName() string {
	return "stock_recommendations"
}
