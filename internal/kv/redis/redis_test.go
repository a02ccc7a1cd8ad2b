package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"paisa/internal/kv"
)

// fakeCmd serves the handful of commands the store uses from a map.
type fakeCmd struct {
	goredis.Cmdable
	data    map[string]string
	pingErr error
}

func (f *fakeCmd) Get(_ context.Context, key string) *goredis.StringCmd {
	v, ok := f.data[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(v, nil)
}

func (f *fakeCmd) Set(_ context.Context, key string, value interface{}, _ time.Duration) *goredis.StatusCmd {
	f.data[key] = value.(string)
	return goredis.NewStatusResult("OK", nil)
}

func (f *fakeCmd) Ping(_ context.Context) *goredis.StatusCmd {
	return goredis.NewStatusResult("PONG", f.pingErr)
}

func TestStorePrefixesKeys(t *testing.T) {
	fake := &fakeCmd{data: map[string]string{}}
	s := NewWithClient(fake, "paisa:")
	ctx := context.Background()

	if _, err := s.Get(ctx, kv.KeyTransactions); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Set(ctx, kv.KeyTransactions, "[]"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if fake.data["paisa:transactions"] != "[]" {
		t.Fatalf("value not stored under prefixed key: %v", fake.data)
	}
	v, err := s.Get(ctx, kv.KeyTransactions)
	if err != nil || v != "[]" {
		t.Fatalf("unexpected get: %q %v", v, err)
	}
}

func TestStorePing(t *testing.T) {
	fake := &fakeCmd{data: map[string]string{}}
	s := NewWithClient(fake, "")
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	fake.pingErr = errors.New("connection refused")
	if err := s.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping error")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close without owned client should be a no-op: %v", err)
	}
}
