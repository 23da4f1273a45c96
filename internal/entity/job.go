package entity

import (
	"encoding/json"
	"time"
)

// JobType identifies the strategy that executes a job.
type JobType string

const (
	JobTypeNewsMonitor   JobType = "news_monitor"
	JobTypeMarketReport  JobType = "market_report"
	JobTypeStockAnalyzer JobType = "stock_analyzer"
)

// Job is a scheduled unit of work declared in configuration.
type Job struct {
	Name     string          `mapstructure:"name" json:"name"`
	Type     JobType         `mapstructure:"type" json:"type"`
	Schedule string          `mapstructure:"schedule" json:"schedule"`
	Timeout  time.Duration   `mapstructure:"timeout" json:"timeout"`
	Enabled  bool            `mapstructure:"enabled" json:"enabled"`
	Params   map[string]any  `mapstructure:"params" json:"params,omitempty"`
	Payload  json.RawMessage `mapstructure:"-" json:"-"`
}

// DecodePayload fills Payload from Params when it has not been set explicitly.
func (j *Job) DecodePayload() error {
	if len(j.Payload) > 0 || len(j.Params) == 0 {
		return nil
	}
	b, err := json.Marshal(j.Params)
	if err != nil {
		return err
	}
	j.Payload = b
	return nil
}

// ExecutionStatus is the outcome of a job run.
type ExecutionStatus string

const (
	StatusRunning   ExecutionStatus = "running"
	StatusCompleted ExecutionStatus = "completed"
	StatusFailed    ExecutionStatus = "failed"
	StatusTimeout   ExecutionStatus = "timeout"
)

// JobExecution is the record written for every job run.
type JobExecution struct {
	RunID       string          `json:"run_id"`
	JobName     string          `json:"job_name"`
	JobType     JobType         `json:"job_type"`
	Status      ExecutionStatus `json:"status"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt time.Time       `json:"completed_at"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
}
