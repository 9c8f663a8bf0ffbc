// Package store persists tasks in a single local table:
//
//	items(id INTEGER PRIMARY KEY, done INTEGER, value TEXT)
//
// Two backends satisfy Store: SQLite, the real file-backed one, and Noop,
// an inert stand-in used when SQLite is unavailable on this build.
package store

import (
	"github.com/idilsaglam/todo/internal/config"
	"github.com/idilsaglam/todo/internal/log"
	"github.com/idilsaglam/todo/internal/model"
)

// Store is the capability the TUI and CLI depend on.
type Store interface {
	// EnsureSchema creates the items table if absent. Safe to repeat.
	EnsureSchema() error
	// Insert adds a pending task. Blank values are ignored.
	Insert(value string) error
	// ListByDone returns tasks with the given flag in insertion order.
	ListByDone(done bool) ([]model.Task, error)
	// MarkDone sets done on the task; unknown ids are a no-op.
	MarkDone(id int64) error
	// Delete removes the task; unknown ids are a no-op.
	Delete(id int64) error
	Close() error
}

// Open picks the backend for cfg. supported is false when the inert backend
// was chosen, either because this build lacks SQLite or because the config
// asked for it; callers must then disable every mutation path.
func Open(cfg config.Storage) (s Store, supported bool, err error) {
	if !Supported || cfg.Backend == config.BackendNone {
		log.Warn().
			Bool("sqlite_available", Supported).
			Str("backend", cfg.Backend).
			Msg("storage not supported, using inert backend")
		return Noop{}, false, nil
	}
	db, err := OpenSQLite(cfg.Path)
	if err != nil {
		return nil, true, err
	}
	return db, true, nil
}
