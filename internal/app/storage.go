package app

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/bookstore/internal/storage"
	"github.com/xenking/bookstore/internal/storage/bolt"
	"github.com/xenking/bookstore/internal/storage/memory"
	"github.com/xenking/bookstore/internal/storage/postgres"
	"github.com/xenking/bookstore/internal/storage/redis"
)

// openStorage connects the configured snapshot backend.
func openStorage(ctx context.Context, lg *zap.Logger, cfg StorageConfig) (storage.Backend, error) {
	switch cfg.Backend {
	case storage.BackendBolt:
		s, err := bolt.Open(cfg.BoltPath, cfg.BoltBucket, cfg.BoltTimeout)
		if err != nil {
			return nil, errors.Wrap(err, "open bolt")
		}
		lg.Info("Using bolt snapshots", zap.String("path", cfg.BoltPath))
		return s, nil
	case storage.BackendRedis:
		s, err := redis.Dial(ctx, redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.RedisTTL,
		})
		if err != nil {
			return nil, errors.Wrap(err, "dial redis")
		}
		lg.Info("Using redis snapshots", zap.String("addr", cfg.RedisAddr))
		return s, nil
	case storage.BackendPostgres:
		s, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, errors.Wrap(err, "connect postgres")
		}
		if st, err := s.Stats(ctx); err != nil {
			lg.Warn("Failed to read snapshot stats", zap.Error(err))
		} else {
			lg.Info("Using postgres snapshots",
				zap.Int64("carts", st.Carts),
				zap.Stringer("value", st.Value),
			)
		}
		return s, nil
	case storage.BackendMemory:
		lg.Warn("Using in-memory snapshots; carts are lost on restart")
		return memory.New(), nil
	default:
		return nil, errors.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
