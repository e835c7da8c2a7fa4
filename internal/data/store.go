// Package data implements the persistent per-chat and per-user state
// records. Records are JSON files named by id, loaded lazily into an
// in-process cache holding exactly one copy per id, and written through
// to disk on every mutation. All access to one id is serialized by a
// per-id mutex, so two concurrent writers cannot lose each other's
// fields; writers for different ids do not block each other.
package data

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// jsonStore is the shared cache-and-file machinery behind ChatStore and
// UserStore. defaults produces a fresh record for ids seen for the first
// time.
type jsonStore[T any] struct {
	dir      string
	defaults func() *T
	logger   *slog.Logger

	mu      sync.Mutex
	entries map[int64]*entry[T]
}

type entry[T any] struct {
	mu  sync.Mutex
	rec *T
}

func newJSONStore[T any](dir string, defaults func() *T, logger *slog.Logger) (*jsonStore[T], error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory %s: %w", dir, err)
	}
	return &jsonStore[T]{
		dir:      dir,
		defaults: defaults,
		logger:   logger,
		entries:  make(map[int64]*entry[T]),
	}, nil
}

func (s *jsonStore[T]) path(id int64) string {
	return filepath.Join(s.dir, strconv.FormatInt(id, 10)+".json")
}

func (s *jsonStore[T]) entry(id int64) *entry[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		e = &entry[T]{}
		s.entries[id] = e
	}
	return e
}

// with runs fn against the cached record for id, loading or creating it
// first. When fn reports a mutation the whole record is persisted before
// with returns. fn may be nil for a plain read.
func (s *jsonStore[T]) with(id int64, fn func(rec *T) bool) (*T, error) {
	e := s.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.rec == nil {
		rec, err := s.load(id)
		if err != nil {
			return nil, err
		}
		e.rec = rec
	}

	if fn != nil && fn(e.rec) {
		if err := s.save(id, e.rec); err != nil {
			return nil, err
		}
	}
	return e.rec, nil
}

func (s *jsonStore[T]) load(id int64) (*T, error) {
	raw, err := os.ReadFile(s.path(id))
	if os.IsNotExist(err) {
		rec := s.defaults()
		if err := s.save(id, rec); err != nil {
			return nil, err
		}
		s.logger.Debug("Created state record with defaults", "id", id)
		return rec, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state record %d: %w", id, err)
	}

	// Missing fields keep their schema defaults, so records written by
	// older versions load cleanly.
	rec := s.defaults()
	if err := json.Unmarshal(raw, rec); err != nil {
		return nil, fmt.Errorf("failed to parse state record %d: %w", id, err)
	}
	return rec, nil
}

func (s *jsonStore[T]) save(id int64, rec *T) error {
	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state record %d: %w", id, err)
	}
	if err := os.WriteFile(s.path(id), raw, 0o644); err != nil {
		return fmt.Errorf("failed to write state record %d: %w", id, err)
	}
	return nil
}

// ids lists every id with a persisted record.
func (s *jsonStore[T]) ids() ([]int64, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list state directory: %w", err)
	}

	out := make([]int64, 0, len(files))
	for _, f := range files {
		name := f.Name()
		if filepath.Ext(name) != ".json" {
			continue
		}
		id, err := strconv.ParseInt(name[:len(name)-len(".json")], 10, 64)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out, nil
}
