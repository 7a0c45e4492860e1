package cartstore

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xenking/bookstore/internal/storage"
)

// KeyPrefix namespaces cart snapshot keys.
const KeyPrefix = "bookstore-cart:"

// DefaultIdleTTL is how long an unused store stays in memory.
const DefaultIdleTTL = 30 * time.Minute

// Key returns the snapshot key of a session.
func Key(session string) string {
	return KeyPrefix + session
}

type entry struct {
	store    *Store
	lastSeen time.Time
}

// Registry lazily creates one Store per session. Stores share the
// snapshotter and options of the registry. Stores idle for longer than the
// idle TTL are dropped by Evict and hydrate again from their snapshot on the
// next use.
type Registry struct {
	snap    storage.Snapshotter
	opts    []Option
	idleTTL time.Duration
	lg      *zap.Logger

	mu      sync.Mutex
	entries map[string]*entry
}

// NewRegistry returns an empty Registry.
func NewRegistry(snap storage.Snapshotter, opts ...Option) *Registry {
	o := newOptions(opts)
	// Instruments are built once and shared between stores.
	shared := append(append([]Option(nil), opts...), withMetrics(o.metrics))
	return &Registry{
		snap:    snap,
		opts:    shared,
		idleTTL: o.idleTTL,
		lg:      o.lg,
		entries: make(map[string]*entry),
	}
}

// Store returns the store of session, hydrating it on first use.
func (r *Registry) Store(ctx context.Context, session string) *Store {
	key := Key(session)

	if s, ok := r.touch(key, time.Now()); ok {
		return s
	}

	// Hydrate outside the lock so a slow backend does not block other sessions.
	created := New(ctx, key, r.snap, r.opts...)

	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	if e, ok := r.entries[key]; ok {
		e.lastSeen = now
		return e.store
	}
	r.entries[key] = &entry{store: created, lastSeen: now}
	return created
}

func (r *Registry) touch(key string, now time.Time) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[key]
	if !ok {
		return nil, false
	}
	e.lastSeen = now
	return e.store, true
}

// Evict drops stores not used for the idle TTL as of now and returns how
// many were dropped. A non-positive TTL disables eviction.
func (r *Registry) Evict(now time.Time) int {
	if r.idleTTL <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for key, e := range r.entries {
		if now.Sub(e.lastSeen) >= r.idleTTL {
			delete(r.entries, key)
			n++
		}
	}
	return n
}

// Run evicts idle stores every idle TTL until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	if r.idleTTL <= 0 {
		return
	}
	ticker := time.NewTicker(r.idleTTL)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := r.Evict(now); n > 0 {
				r.lg.Debug("Evicted idle cart stores", zap.Int("count", n), zap.Int("live", r.Len()))
			}
		}
	}
}

// Len returns the number of live stores.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
