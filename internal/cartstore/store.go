// Package cartstore keeps the live cart for a session and persists it on
// every change.
package cartstore

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/bookstore/internal/domain/book"
	"github.com/xenking/bookstore/internal/domain/cart"
	"github.com/xenking/bookstore/internal/storage"
)

// Observer is notified after a mutation has been persisted. Calls are made
// while the store lock is held, so events arrive in mutation order.
type Observer interface {
	CartChanged(ctx context.Context, key string, c cart.Cart)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, key string, c cart.Cart)

func (f ObserverFunc) CartChanged(ctx context.Context, key string, c cart.Cart) {
	f(ctx, key, c)
}

// Mutation names reported to observers' metrics and logs.
const (
	OpAdd    = "add"
	OpRemove = "remove"
	OpUpdate = "update"
	OpClear  = "clear"
)

// Store owns one cart. All mutations are serialized: each computes the next
// cart, writes the snapshot, swaps the current value and notifies observers
// before returning.
type Store struct {
	mu   sync.Mutex
	key  string
	cart cart.Cart

	snap      storage.Snapshotter
	lg        *zap.Logger
	observers []Observer
	metrics   *metrics
}

// New hydrates the cart stored under key. A missing, unreadable or malformed
// snapshot yields an empty cart; the failure is logged and never returned.
func New(ctx context.Context, key string, snap storage.Snapshotter, opts ...Option) *Store {
	o := newOptions(opts)
	s := &Store{
		key:       key,
		snap:      snap,
		lg:        o.lg.With(zap.String("cart", key)),
		observers: o.observers,
		metrics:   o.metrics,
	}
	s.cart = s.hydrate(ctx)
	return s
}

func (s *Store) hydrate(ctx context.Context) cart.Cart {
	data, err := s.snap.Load(ctx, s.key)
	switch {
	case errors.Is(err, storage.ErrSnapshotNotFound):
		return cart.Empty()
	case err != nil:
		s.lg.Warn("Failed to load cart snapshot", zap.Error(err))
		return cart.Empty()
	}

	c, err := cart.Unmarshal(data)
	if err != nil {
		s.lg.Warn("Discarding malformed cart snapshot", zap.Error(err))
		return cart.Empty()
	}
	return c
}

// Key returns the snapshot key of the store.
func (s *Store) Key() string {
	return s.key
}

// Cart returns the current cart.
func (s *Store) Cart() cart.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart
}

// ItemCount returns the total quantity in the cart.
func (s *Store) ItemCount() int {
	return cart.ItemCount(s.Cart())
}

// Summary returns the checkout breakdown of the current cart.
func (s *Store) Summary() cart.Summary {
	return cart.Summarize(s.Cart())
}

// AddBook adds one unit of b.
func (s *Store) AddBook(ctx context.Context, b book.Book) (cart.Cart, error) {
	return s.mutate(ctx, OpAdd, func(c cart.Cart) cart.Cart {
		return cart.Add(c, b)
	})
}

// RemoveBook drops the line for id.
func (s *Store) RemoveBook(ctx context.Context, id string) (cart.Cart, error) {
	return s.mutate(ctx, OpRemove, func(c cart.Cart) cart.Cart {
		return cart.Remove(c, id)
	})
}

// UpdateBookQuantity sets the quantity of id; q <= 0 removes it.
func (s *Store) UpdateBookQuantity(ctx context.Context, id string, q int) (cart.Cart, error) {
	return s.mutate(ctx, OpUpdate, func(c cart.Cart) cart.Cart {
		return cart.UpdateQuantity(c, id, q)
	})
}

// Clear resets the cart to empty.
func (s *Store) Clear(ctx context.Context) (cart.Cart, error) {
	return s.mutate(ctx, OpClear, func(cart.Cart) cart.Cart {
		return cart.Empty()
	})
}

// mutate applies fn. When the snapshot cannot be written the in-memory cart
// still advances and the error is returned; observers are skipped.
func (s *Store) mutate(ctx context.Context, op string, fn func(cart.Cart) cart.Cart) (cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := fn(s.cart)
	err := s.persist(ctx, next)
	s.cart = next
	s.metrics.record(ctx, op, err)

	if err != nil {
		s.lg.Error("Failed to persist cart", zap.String("op", op), zap.Error(err))
		return next, err
	}
	for _, o := range s.observers {
		o.CartChanged(ctx, s.key, next)
	}
	return next, nil
}

func (s *Store) persist(ctx context.Context, c cart.Cart) error {
	data, err := cart.Marshal(c)
	if err != nil {
		return err
	}
	if err := s.snap.Save(ctx, s.key, data); err != nil {
		return errors.Wrap(err, "save snapshot")
	}
	return nil
}
