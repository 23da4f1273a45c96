package entity

import (
	"time"

	"github.com/lib/pq"
)

// NewsAlert is the history row of an alert that passed the dedupe gate.
type NewsAlert struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	DedupeKey       string         `gorm:"not null;index" json:"dedupe_key"`
	Title           string         `gorm:"not null" json:"title"`
	URL             string         `json:"url"`
	Source          string         `json:"source"`
	Symbols         pq.StringArray `gorm:"type:text[]" json:"symbols"`
	Keywords        pq.StringArray `gorm:"type:text[]" json:"keywords"`
	UrgencyScore    int            `gorm:"not null" json:"urgency_score"`
	UrgencyCategory string         `gorm:"not null" json:"urgency_category"`
	Delivered       bool           `json:"delivered"`
	PublishedAt     *time.Time     `json:"published_at,omitempty"`
	SentAt          time.Time      `gorm:"not null" json:"sent_at"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the NewsAlert model.
func (NewsAlert) TableName() string {
	return "news_alerts"
}
