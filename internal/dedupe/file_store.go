package dedupe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang-market-alert/internal/entity"
)

// FileStore keeps records in a JSON file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load returns the stored records; a missing file is an empty store.
func (s *FileStore) Load(_ context.Context) ([]entity.SentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Append rewrites the file with rec added and stale records removed.
func (s *FileStore) Append(_ context.Context, rec entity.SentRecord, cutoff time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return err
	}
	kept := records[:0]
	for _, r := range records {
		if !r.SentAt.Before(cutoff) {
			kept = append(kept, r)
		}
	}
	kept = append(kept, rec)
	return s.write(kept)
}

func (s *FileStore) read() ([]entity.SentRecord, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	if len(b) == 0 {
		return nil, nil
	}
	var records []entity.SentRecord
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.path, err)
	}
	return records, nil
}

func (s *FileStore) write(records []entity.SentRecord) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
