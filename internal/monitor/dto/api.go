package dto

import (
	"encoding/json"
	"time"

	"golang-market-alert/internal/entity"
)

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status  string    `json:"status"`
	App     string    `json:"app"`
	Version string    `json:"version"`
	Time    time.Time `json:"time"`
}

// RunJobResponse is returned after a manual job trigger.
type RunJobResponse struct {
	RunID  string                 `json:"run_id"`
	Job    string                 `json:"job"`
	Status entity.ExecutionStatus `json:"status"`
	Result json.RawMessage        `json:"result,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

// AlertResponse is one delivered alert.
type AlertResponse struct {
	ID              uint       `json:"id"`
	Title           string     `json:"title"`
	URL             string     `json:"url,omitempty"`
	Source          string     `json:"source"`
	Symbols         []string   `json:"symbols"`
	Keywords        []string   `json:"keywords"`
	UrgencyScore    int        `json:"urgency_score"`
	UrgencyCategory string     `json:"urgency_category"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	SentAt          time.Time  `json:"sent_at"`
}

// NewAlertResponse maps a stored alert to its API shape.
func NewAlertResponse(a entity.NewsAlert) AlertResponse {
	return AlertResponse{
		ID:              a.ID,
		Title:           a.Title,
		URL:             a.URL,
		Source:          a.Source,
		Symbols:         a.Symbols,
		Keywords:        a.Keywords,
		UrgencyScore:    a.UrgencyScore,
		UrgencyCategory: a.UrgencyCategory,
		PublishedAt:     a.PublishedAt,
		SentAt:          a.SentAt,
	}
}
