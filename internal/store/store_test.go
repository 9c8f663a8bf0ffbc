package store

import (
	"path/filepath"
	"testing"

	"github.com/idilsaglam/todo/internal/config"
	"github.com/idilsaglam/todo/internal/model"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()
	if !Supported {
		t.Skip("sqlite requires cgo")
	}
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "data", "todo.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.EnsureSchema(); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return s
}

func list(t *testing.T, s Store, done bool) []model.Task {
	t.Helper()
	tasks, err := s.ListByDone(done)
	if err != nil {
		t.Fatalf("ListByDone(%v): %v", done, err)
	}
	return tasks
}

func values(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Value)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	s := openTestStore(t)
	for i := 0; i < 3; i++ {
		if err := s.EnsureSchema(); err != nil {
			t.Fatalf("EnsureSchema call %d: %v", i+2, err)
		}
	}
	var name string
	if err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = 'items'").Scan(&name); err != nil {
		t.Fatalf("items table not found: %v", err)
	}
}

func TestInsertRoundTrip(t *testing.T) {
	s := openTestStore(t)
	if err := s.Insert("buy milk"); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	pending := list(t, s, false)
	if len(pending) != 1 {
		t.Fatalf("pending: got %d tasks, want 1", len(pending))
	}
	if pending[0].Value != "buy milk" || pending[0].Done || pending[0].ID == 0 {
		t.Errorf("unexpected task: %+v", pending[0])
	}
	if done := list(t, s, true); len(done) != 0 {
		t.Errorf("done: got %v, want empty", done)
	}
}

func TestInsertBlankIsNoop(t *testing.T) {
	s := openTestStore(t)
	for _, v := range []string{"", "   ", "\t\n"} {
		if err := s.Insert(v); err != nil {
			t.Fatalf("Insert(%q): %v", v, err)
		}
	}
	if got := list(t, s, false); len(got) != 0 {
		t.Errorf("pending: got %v, want empty", got)
	}
	if got := list(t, s, true); len(got) != 0 {
		t.Errorf("done: got %v, want empty", got)
	}
}

func TestListNeverNil(t *testing.T) {
	s := openTestStore(t)
	if got := list(t, s, false); got == nil {
		t.Errorf("ListByDone on empty table returned nil slice")
	}
}

func TestLifecycleScenario(t *testing.T) {
	s := openTestStore(t)
	for _, v := range []string{"A", "B"} {
		if err := s.Insert(v); err != nil {
			t.Fatalf("Insert(%q): %v", v, err)
		}
	}

	pending := list(t, s, false)
	if !equal(values(pending), []string{"A", "B"}) {
		t.Fatalf("pending: got %v, want [A B]", values(pending))
	}
	if pending[0].ID == pending[1].ID {
		t.Fatalf("ids not distinct: %d", pending[0].ID)
	}
	idA := pending[0].ID

	if err := s.MarkDone(idA); err != nil {
		t.Fatalf("MarkDone: %v", err)
	}
	if got := values(list(t, s, false)); !equal(got, []string{"B"}) {
		t.Errorf("pending after MarkDone: got %v, want [B]", got)
	}
	done := list(t, s, true)
	if !equal(values(done), []string{"A"}) || !done[0].Done || done[0].ID != idA {
		t.Errorf("done after MarkDone: got %+v", done)
	}

	if err := s.Delete(idA); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := values(list(t, s, false)); !equal(got, []string{"B"}) {
		t.Errorf("pending after Delete: got %v, want [B]", got)
	}
	if got := list(t, s, true); len(got) != 0 {
		t.Errorf("done after Delete: got %v, want empty", got)
	}
}

func TestMembershipIsExclusive(t *testing.T) {
	s := openTestStore(t)
	for _, v := range []string{"a", "b", "c", "d"} {
		if err := s.Insert(v); err != nil {
			t.Fatal(err)
		}
	}
	for _, task := range list(t, s, false)[:2] {
		if err := s.MarkDone(task.ID); err != nil {
			t.Fatal(err)
		}
	}

	seen := map[int64]int{}
	for _, task := range list(t, s, false) {
		seen[task.ID]++
	}
	for _, task := range list(t, s, true) {
		seen[task.ID]++
	}
	if len(seen) != 4 {
		t.Fatalf("expected 4 distinct tasks across both lists, got %d", len(seen))
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("task %d appears in %d lists", id, n)
		}
	}
}

func TestDeletedIDNotReused(t *testing.T) {
	s := openTestStore(t)
	if err := s.Insert("first"); err != nil {
		t.Fatal(err)
	}
	first := list(t, s, false)[0].ID
	if err := s.MarkDone(first); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(first); err != nil {
		t.Fatal(err)
	}
	if err := s.Insert("second"); err != nil {
		t.Fatal(err)
	}
	second := list(t, s, false)[0].ID
	if second == first {
		t.Errorf("id %d reused after delete", first)
	}
}

func TestUnknownIDIsNoop(t *testing.T) {
	s := openTestStore(t)
	if err := s.Insert("keep"); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkDone(9999); err != nil {
		t.Errorf("MarkDone(unknown): %v", err)
	}
	if err := s.Delete(9999); err != nil {
		t.Errorf("Delete(unknown): %v", err)
	}
	if got := values(list(t, s, false)); !equal(got, []string{"keep"}) {
		t.Errorf("pending: got %v, want [keep]", got)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	if !Supported {
		t.Skip("sqlite requires cgo")
	}
	path := filepath.Join(t.TempDir(), "todo.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.EnsureSchema(); err != nil {
		t.Fatal(err)
	}
	if err := s.Insert("durable"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if err := s.EnsureSchema(); err != nil {
		t.Fatal(err)
	}
	if got := values(list(t, s, false)); !equal(got, []string{"durable"}) {
		t.Errorf("after reopen: got %v, want [durable]", got)
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		s, supported, err := Open(config.Storage{Backend: config.BackendNone, Path: "unused.db"})
		if err != nil {
			t.Fatal(err)
		}
		if supported {
			t.Errorf("supported: got true for backend none")
		}
		if _, ok := s.(Noop); !ok {
			t.Errorf("got %T, want Noop", s)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "todo.db")
		s, supported, err := Open(config.Storage{Backend: config.BackendSQLite, Path: path})
		if err != nil {
			t.Fatal(err)
		}
		defer s.Close()
		if supported != Supported {
			t.Errorf("supported: got %v, want %v", supported, Supported)
		}
		if _, isSQLite := s.(*SQLite); isSQLite != Supported {
			t.Errorf("got %T with Supported=%v", s, Supported)
		}
	})
}

func TestNoopStoresNothing(t *testing.T) {
	var s Store = Noop{}
	if err := s.EnsureSchema(); err != nil {
		t.Fatal(err)
	}
	if err := s.Insert("ignored"); err != nil {
		t.Fatal(err)
	}
	if got := list(t, s, false); got == nil || len(got) != 0 {
		t.Errorf("pending: got %#v, want empty non-nil", got)
	}
}
