// Package jsonstore reads and writes human-readable JSON snapshots of a
// Store, used by `todo export` and `todo import`.
package jsonstore

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/idilsaglam/todo/internal/model"
	"github.com/idilsaglam/todo/internal/store"
)

// Snapshot is the full table, split the way the UI shows it.
type Snapshot struct {
	Pending []model.Task `json:"pending"`
	Done    []model.Task `json:"done"`
}

// Take reads both lists from s.
func Take(s store.Store) (Snapshot, error) {
	pending, err := s.ListByDone(false)
	if err != nil {
		return Snapshot{}, err
	}
	done, err := s.ListByDone(true)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Pending: pending, Done: done}, nil
}

// Restore inserts every task in snap into s. Ids are reassigned by the
// store; done tasks are inserted then marked done.
func Restore(s store.Store, snap Snapshot) (int, error) {
	n := 0
	for _, t := range snap.Pending {
		if strings.TrimSpace(t.Value) == "" {
			continue
		}
		if err := s.Insert(t.Value); err != nil {
			return n, err
		}
		n++
	}
	if len(snap.Done) == 0 {
		return n, nil
	}
	before, err := s.ListByDone(false)
	if err != nil {
		return n, err
	}
	known := make(map[int64]bool, len(before))
	for _, t := range before {
		known[t.ID] = true
	}
	for _, t := range snap.Done {
		if strings.TrimSpace(t.Value) == "" {
			continue
		}
		if err := s.Insert(t.Value); err != nil {
			return n, err
		}
		n++
	}
	after, err := s.ListByDone(false)
	if err != nil {
		return n, err
	}
	for _, t := range after {
		if known[t.ID] {
			continue
		}
		if err := s.MarkDone(t.ID); err != nil {
			return n, err
		}
	}
	return n, nil
}

func Encode(w io.Writer, snap Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return nil
}

func Load(path string) (Snapshot, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read file: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("json unmarshal: %w", err)
	}
	return snap, nil
}

func Save(path string, snap Snapshot) error {
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
