package strategy

import (
	"context"
	"encoding/json"
	"fmt"

	"golang-market-alert/internal/entity"
)

// JobExecutionStrategy defines the interface for different job execution strategies.
type JobExecutionStrategy interface {
	Execute(ctx context.Context, job *entity.Job) (string, error)
	GetType() entity.JobType
}

// JobResult is the JSON document a strategy returns.
type JobResult struct {
	Status string   `json:"status"`
	Data   any      `json:"data,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

func marshalResult(result JobResult) (string, error) {
	b, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal job result: %w", err)
	}
	return string(b), nil
}

// decodeParams fills params from the job payload, leaving it untouched when the job has none.
func decodeParams(job *entity.Job, params any) error {
	if err := job.DecodePayload(); err != nil {
		return fmt.Errorf("failed to encode job params: %w", err)
	}
	if len(job.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(job.Payload, params); err != nil {
		return fmt.Errorf("failed to unmarshal job payload: %w", err)
	}
	return nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// notifyEnabled lets a job param turn notifications off but never on when the
// process was started without a notifier.
func notifyEnabled(param *bool, allowed bool) bool {
	return allowed && boolOr(param, true)
}
