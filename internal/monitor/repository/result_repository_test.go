package repository_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang-market-alert/internal/entity"
	"golang-market-alert/internal/monitor/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultRepositorySave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	repo := repository.NewResultRepository(dir)

	started := time.Date(2024, 3, 4, 10, 30, 15, 0, time.UTC)
	exec := &entity.JobExecution{
		JobName:   "news",
		JobType:   entity.JobTypeNewsMonitor,
		Status:    entity.StatusCompleted,
		StartedAt: started,
		Result:    json.RawMessage(`{"sent":2}`),
	}

	path, err := repo.Save(context.Background(), exec)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "news_20240304_103015.json"), path)
	assert.NotEmpty(t, exec.RunID)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var got entity.JobExecution
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, exec.RunID, got.RunID)
	assert.Equal(t, entity.StatusCompleted, got.Status)
	assert.JSONEq(t, `{"sent":2}`, string(got.Result))

	second := &entity.JobExecution{JobName: "news", StartedAt: started, RunID: "abc"}
	path2, err := repo.Save(context.Background(), second)
	require.NoError(t, err)
	assert.NotEqual(t, path, path2)
	assert.Equal(t, filepath.Join(dir, "news_20240304_103015_abc.json"), path2)
}
