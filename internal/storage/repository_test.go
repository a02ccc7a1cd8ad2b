package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"paisa/internal/kv"
)

func newTestStore(t *testing.T, path string) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "paisa.db")
	s := newTestStore(t, path)
	ctx := context.Background()

	if _, err := s.Get(ctx, kv.KeyTransactions); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Set(ctx, kv.KeyTransactions, `[]`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, kv.KeyTransactions, `[{"id":1}]`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, err := s.Get(ctx, kv.KeyTransactions)
	if err != nil || v != `[{"id":1}]` {
		t.Fatalf("unexpected value %q err=%v", v, err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paisa.db")
	ctx := context.Background()

	first, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := first.Set(ctx, kv.KeyTheme, "dark"); err != nil {
		t.Fatalf("set: %v", err)
	}
	first.Close()

	second := newTestStore(t, path)
	if v, err := second.Get(ctx, kv.KeyTheme); err != nil || v != "dark" {
		t.Fatalf("value lost after reopen: %q %v", v, err)
	}
}
