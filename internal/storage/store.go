// Package storage persists the quest log as a JSON document or as a SQLite
// database. Both backends read and write the whole record at once.
package storage

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/sandeepkv93/questd/internal/model"
)

// ErrMalformed wraps decode failures of a stored quest log.
var ErrMalformed = errors.New("storage: malformed quest log")

type Store interface {
	// Load returns nil, nil when nothing has been saved at path.
	Load(ctx context.Context, path string) (*model.QuestLog, error)
	Save(ctx context.Context, path string, log *model.QuestLog) error
	Close() error
}

// IsSQLitePath reports whether path selects the SQLite backend.
func IsSQLitePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// Open picks the backend from the file extension of path.
func Open(path string) Store {
	if IsSQLitePath(path) {
		return NewSQLiteStore()
	}
	return NewJSONStore()
}
