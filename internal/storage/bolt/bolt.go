// Package bolt implements the snapshot store on a local BoltDB file.
package bolt

import (
	"context"
	"time"

	"github.com/boltdb/bolt"
	"github.com/go-faster/errors"

	"github.com/xenking/bookstore/internal/storage"
)

var _ storage.Backend = (*Store)(nil)

// DefaultBucket holds cart snapshots when no bucket is configured.
const DefaultBucket = "carts"

// Store keeps snapshots in a single bucket of a BoltDB file.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Open opens (creating if needed) the database at path and ensures bucket
// exists. timeout bounds the wait for the file lock.
func Open(path, bucket string, timeout time.Duration) (*Store, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, errors.Wrapf(err, "open bolt %q", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "create bucket %q", bucket)
	}
	return &Store{db: db, bucket: []byte(bucket)}, nil
}

// Load returns the snapshot stored under key.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(s.bucket).Get([]byte(key))
		if v == nil {
			return storage.ErrSnapshotNotFound
		}
		// v is only valid inside the transaction.
		data = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Save replaces the snapshot stored under key.
func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), data)
	})
	if err != nil {
		return errors.Wrapf(err, "put %q", key)
	}
	return nil
}

// Ping checks that the bucket is readable.
func (s *Store) Ping(context.Context) error {
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(s.bucket) == nil {
			return errors.Errorf("bucket %q missing", s.bucket)
		}
		return nil
	})
}

// Close releases the file lock.
func (s *Store) Close() error {
	return s.db.Close()
}
