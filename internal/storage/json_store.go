package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sandeepkv93/questd/internal/model"
)

// JSONStore keeps the quest log in a single indented JSON file. Writes go to
// a temp file in the same directory and are renamed into place.
type JSONStore struct {
	now func() time.Time
}

func NewJSONStore() *JSONStore {
	return &JSONStore{now: time.Now}
}

// Load decodes the file at path. A file that cannot be decoded is moved aside
// to "<path>.corrupt-<timestamp>" so the next Save does not destroy it.
func (s *JSONStore) Load(ctx context.Context, path string) (*model.QuestLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read quest log: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	var log model.QuestLog
	if err := json.Unmarshal(raw, &log); err != nil {
		backup := fmt.Sprintf("%s.corrupt-%s", path, s.now().Format("20060102T150405"))
		if renameErr := os.Rename(path, backup); renameErr != nil {
			return nil, fmt.Errorf("%w: %v (backup failed: %v)", ErrMalformed, err, renameErr)
		}
		return nil, fmt.Errorf("%w: %v (moved to %s)", ErrMalformed, err, backup)
	}
	return &log, nil
}

func (s *JSONStore) Save(ctx context.Context, path string, log *model.QuestLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if log == nil {
		return errors.New("storage: nil quest log")
	}
	raw, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return fmt.Errorf("encode quest log: %w", err)
	}
	raw = append(raw, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create quest log dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace quest log: %w", err)
	}
	return nil
}

func (s *JSONStore) Close() error { return nil }
