package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := s.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	s.Close()

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err = Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	got, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || got != "v" {
		t.Errorf("Get() = %q, %v, %v; want \"v\", true, nil", got, ok, err)
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	checks := map[string]string{
		"journal_mode": "wal",
		"synchronous":  "1",
		"busy_timeout": "5000",
		"user_version": "1",
	}
	for name, want := range checks {
		if err := s.verifyPragma(name, want); err != nil {
			t.Error(err)
		}
	}
}

func TestOpen_RejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future.db")

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("sql.Open() failed: %v", err)
	}
	if _, err := db.Exec(`PRAGMA user_version = 2`); err != nil {
		t.Fatalf("stamp version: %v", err)
	}
	db.Close()

	s, err := Open(path)
	if err == nil {
		s.Close()
		t.Fatal("Open() succeeded on a newer schema")
	}
	if !strings.Contains(err.Error(), "newer than supported") {
		t.Errorf("Open() error = %v, want schema version error", err)
	}
}

func TestStore_GetAbsent(t *testing.T) {
	s := createTestStore(t)

	v, ok, err := s.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if ok || v != "" {
		t.Errorf("Get() = %q, %v; want \"\", false", v, ok)
	}
}

func TestStore_SetReplaces(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "slot", "one"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := s.Set(ctx, "slot", "two"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	v, ok, err := s.Get(ctx, "slot")
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v", ok, err)
	}
	if v != "two" {
		t.Errorf("Get() = %q, want \"two\"", v)
	}

	n, err := s.Writes(ctx, "slot")
	if err != nil {
		t.Fatalf("Writes() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Writes() = %d, want 2", n)
	}
}

func TestStore_Remove(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "slot", "x"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := s.Remove(ctx, "slot"); err != nil {
		t.Fatalf("Remove() failed: %v", err)
	}
	if err := s.Remove(ctx, "slot"); err != nil {
		t.Fatalf("second Remove() failed: %v", err)
	}

	if _, ok, _ := s.Get(ctx, "slot"); ok {
		t.Error("key still present after Remove()")
	}
	if n, _ := s.Writes(ctx, "slot"); n != 0 {
		t.Errorf("Writes() = %d after Remove(), want 0", n)
	}
}

func TestStore_KeysOrdered(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, k := range []string{"b", "a", "B"} {
		if err := s.Set(ctx, k, "v"); err != nil {
			t.Fatalf("Set(%q) failed: %v", k, err)
		}
	}

	keys, err := s.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys() failed: %v", err)
	}
	want := []string{"B", "a", "b"}
	if len(keys) != len(want) {
		t.Fatalf("Keys() = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}
