package memory

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"paisa/internal/kv"
)

type Store struct {
	mu     sync.Mutex
	values map[string]string
	writes int
}

var _ kv.Store = (*Store)(nil)

func New() *Store {
	return &Store{values: map[string]string{}}
}

// NewFromFiles seeds the store from <base>/<key>.json files, one per known
// key. Missing files are skipped.
func NewFromFiles(base string) *Store {
	s := New()
	for _, key := range []string{kv.KeyTransactions, kv.KeyTheme} {
		if v, ok := readFile(filepath.Join(base, key+".json")); ok {
			s.values[key] = v
		}
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return "", kv.ErrNotFound
	}
	return v, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.writes++
	return nil
}

// Writes returns how many Set calls the store has served.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func readFile(path string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()
	var b strings.Builder
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		b.WriteString(sc.Text())
		b.WriteByte('\n')
	}
	if sc.Err() != nil {
		return "", false
	}
	v := strings.TrimSpace(b.String())
	return v, v != ""
}
