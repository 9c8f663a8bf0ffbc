package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/idilsaglam/todo/internal/log"
	"github.com/idilsaglam/todo/internal/model"
)

// AUTOINCREMENT keeps SQLite from handing out the id of a deleted row again.
const createItemsTable = `
	CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL,
		done INTEGER NOT NULL DEFAULT 0,
		value TEXT NOT NULL
	)
`

// SQLite is the file-backed Store.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) the database file at path.
// The schema is not touched; call EnsureSchema.
func OpenSQLite(path string) (*SQLite, error) {
	if err := ensureDatabaseDirectory(path); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := path + "?_foreign_keys=1&_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One process, one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info().Str("path", path).Msg("database opened")
	return &SQLite{db: db, path: path}, nil
}

func ensureDatabaseDirectory(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		log.Info().Str("dir", dir).Msg("created database directory")
	}
	return nil
}

func (s *SQLite) Path() string { return s.path }

func (s *SQLite) EnsureSchema() error {
	if _, err := s.db.Exec(createItemsTable); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

func (s *SQLite) Insert(value string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	res, err := s.db.Exec("INSERT INTO items (done, value) VALUES (0, ?)", value)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		log.Debug().Int64("id", id).Msg("task inserted")
	}
	return nil
}

func (s *SQLite) ListByDone(done bool) ([]model.Task, error) {
	rows, err := s.db.Query("SELECT id, done, value FROM items WHERE done = ? ORDER BY id", boolToInt(done))
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		var d int
		if err := rows.Scan(&t.ID, &d, &t.Value); err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		t.Done = d != 0
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return tasks, nil
}

func (s *SQLite) MarkDone(id int64) error {
	if _, err := s.db.Exec("UPDATE items SET done = 1 WHERE id = ?", id); err != nil {
		return fmt.Errorf("mark done %d: %w", id, err)
	}
	return nil
}

func (s *SQLite) Delete(id int64) error {
	if _, err := s.db.Exec("DELETE FROM items WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete %d: %w", id, err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ Store = (*SQLite)(nil)
