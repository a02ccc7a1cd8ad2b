package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"paisa/internal/config"
	"paisa/internal/kv"
	"paisa/internal/log"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}

	cfg, err := FromAppConfig(&config.Config{KVBackend: "redis", RedisAddr: "cache:6379", RedisKeyPrefix: "p:"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Type != RedisBackend || cfg.RedisAddr != "cache:6379" || cfg.RedisKeyPrefix != "p:" {
		t.Errorf("unexpected backend config: %+v", cfg)
	}

	if _, err := FromAppConfig(&config.Config{KVBackend: "sheets"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"redis", Config{Type: RedisBackend, RedisAddr: "localhost:6379"}, false},
		{"redis without addr", Config{Type: RedisBackend}, true},
		{"unknown", Config{Type: "sheets"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetBackendTypeStrings(t *testing.T) {
	got := GetBackendTypeStrings()
	want := []string{"memory", "sqlite", "redis"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCreateMemoryBackendSeedsFromFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "theme.json"), []byte("dark\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := NewFactory(log.Discard()).CreateBackend(context.Background(), Config{Type: MemoryBackend, DataDirectory: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer res.Cleanup()

	if res.Pinger != nil {
		t.Error("memory backend should not expose a pinger")
	}
	v, err := res.Store.Get(context.Background(), kv.KeyTheme)
	if err != nil || v != "dark" {
		t.Errorf("theme = %q, %v", v, err)
	}
	if _, err := res.Store.Get(context.Background(), kv.KeyTransactions); !errors.Is(err, kv.ErrNotFound) {
		t.Errorf("transactions err = %v, want ErrNotFound", err)
	}
}

func TestCreateSQLiteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paisa.db")
	res, err := NewFactory(log.Discard()).CreateBackend(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: path})
	if err != nil {
		t.Fatal(err)
	}
	defer res.Cleanup()

	if res.Pinger == nil {
		t.Fatal("sqlite backend should expose a pinger")
	}
	if err := res.Pinger.Ping(context.Background()); err != nil {
		t.Errorf("ping: %v", err)
	}
	if err := res.Store.Set(context.Background(), kv.KeyTheme, "light"); err != nil {
		t.Fatal(err)
	}
}

func TestCreateBackendRejectsInvalidConfig(t *testing.T) {
	_, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLiteBackend})
	if err == nil {
		t.Fatal("expected validation error")
	}
}
