// Package storage defines the cart snapshot persistence contract shared by
// the storage backends.
package storage

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrSnapshotNotFound is returned by Load when no snapshot exists for a key.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshotter stores one opaque snapshot document per key.
type Snapshotter interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// Backend is a Snapshotter that owns a connection.
type Backend interface {
	Snapshotter
	Ping(ctx context.Context) error
	Close() error
}

// Backend names accepted in configuration.
const (
	BackendBolt     = "bolt"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)
