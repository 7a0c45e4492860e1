// Package memory implements an in-process snapshot store.
package memory

import (
	"context"
	"sync"

	"github.com/xenking/bookstore/internal/storage"
)

var _ storage.Backend = (*Store)(nil)

// Store keeps snapshots in a map. Contents are lost on restart.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New returns an empty Store.
func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

// Load returns a copy of the snapshot stored under key.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, storage.ErrSnapshotNotFound
	}
	return append([]byte(nil), v...), nil
}

// Save replaces the snapshot stored under key.
func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = append([]byte(nil), data...)
	return nil
}

// Put seeds a raw snapshot. It is meant for tests and tooling.
func (s *Store) Put(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), data...)
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }
