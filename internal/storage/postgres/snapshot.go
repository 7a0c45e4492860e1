// Package postgres implements the snapshot store on a PostgreSQL table.
package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/bookstore/internal/storage"
)

var _ storage.Backend = (*Store)(nil)

const (
	loadSnapshot = `SELECT data FROM cart_snapshots WHERE key = $1`
	saveSnapshot = `INSERT INTO cart_snapshots (key, data) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`
	snapshotStats = `SELECT count(*), COALESCE(sum(total), 0) FROM cart_snapshots`
)

// Store keeps one JSONB row per cart key.
type Store struct {
	pool *pgxpool.Pool
}

// New returns a Store using pool. The schema must already be applied.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect opens a pool, applies the schema and returns a ready Store.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := NewPool(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return New(pool), nil
}

// Load returns the snapshot stored under key.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, loadSnapshot, key).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load snapshot %q", key)
	}
	return data, nil
}

// Save upserts the snapshot stored under key. data must be a JSON document.
func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	if _, err := s.pool.Exec(ctx, saveSnapshot, key, data); err != nil {
		return errors.Wrapf(err, "save snapshot %q", key)
	}
	return nil
}

// Stats summarizes the stored carts.
type Stats struct {
	Carts int64
	Value decimal.Decimal
}

// Stats returns the number of stored carts and the sum of their totals.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	if err := s.pool.QueryRow(ctx, snapshotStats).Scan(&st.Carts, &st.Value); err != nil {
		return Stats{}, errors.Wrap(err, "query stats")
	}
	return st, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
