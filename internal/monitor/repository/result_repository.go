package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang-market-alert/internal/entity"
	"golang-market-alert/pkg/utils"

	"github.com/google/uuid"
)

// ResultRepository writes job run output as timestamped JSON files.
type ResultRepository interface {
	Save(ctx context.Context, exec *entity.JobExecution) (string, error)
}

type resultRepository struct {
	dir string
}

func NewResultRepository(dir string) ResultRepository {
	return &resultRepository{dir: dir}
}

// Save writes exec to <dir>/<job>_<YYYYMMDD_HHMMSS>.json and returns the path.
func (r *resultRepository) Save(_ context.Context, exec *entity.JobExecution) (string, error) {
	if exec.RunID == "" {
		exec.RunID = uuid.NewString()
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create result dir: %w", err)
	}

	data, err := json.MarshalIndent(exec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal job result: %w", err)
	}

	name := fmt.Sprintf("%s_%s.json", exec.JobName, exec.StartedAt.Format(utils.FileTimeLayout))
	path := filepath.Join(r.dir, name)
	if _, err := os.Stat(path); err == nil {
		suffix := exec.RunID
		if len(suffix) > 8 {
			suffix = suffix[:8]
		}
		name = fmt.Sprintf("%s_%s_%s.json", exec.JobName, exec.StartedAt.Format(utils.FileTimeLayout), suffix)
		path = filepath.Join(r.dir, name)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write job result: %w", err)
	}
	return path, nil
}
