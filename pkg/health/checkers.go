package health

import (
	"context"
	"runtime"

	"github.com/go-faster/errors"
)

// GoroutineLimit fails when more than limit goroutines are running.
func GoroutineLimit(limit int) CheckFunc {
	return func(context.Context) error {
		if n := runtime.NumGoroutine(); n > limit {
			return errors.Errorf("%d goroutines exceed limit %d", n, limit)
		}
		return nil
	}
}

// Pinger is implemented by storage backends and clients with a liveness call.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks p, prefixing failures with name.
func Ping(name string, p Pinger) CheckFunc {
	return func(ctx context.Context) error {
		if err := p.Ping(ctx); err != nil {
			return errors.Wrapf(err, "ping %s", name)
		}
		return nil
	}
}
