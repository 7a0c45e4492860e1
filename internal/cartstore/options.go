package cartstore

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

// Option configures a Store or Registry.
type Option func(*options)

type options struct {
	lg        *zap.Logger
	observers []Observer
	mp        metric.MeterProvider
	metrics   *metrics
	idleTTL   time.Duration
}

func newOptions(opts []Option) options {
	o := options{lg: zap.NewNop(), mp: noop.NewMeterProvider(), idleTTL: DefaultIdleTTL}
	for _, fn := range opts {
		fn(&o)
	}
	if o.metrics == nil {
		o.metrics = newMetrics(o.mp, o.lg)
	}
	return o
}

// WithLogger sets the logger.
func WithLogger(lg *zap.Logger) Option {
	return func(o *options) {
		if lg != nil {
			o.lg = lg
		}
	}
}

// WithObservers appends observers notified after each persisted mutation.
func WithObservers(obs ...Observer) Option {
	return func(o *options) {
		o.observers = append(o.observers, obs...)
	}
}

// WithMeterProvider records mutation counts on mp.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		if mp != nil {
			o.mp = mp
		}
	}
}

// WithIdleTTL sets how long a Registry keeps an unused store. Zero disables
// eviction.
func WithIdleTTL(d time.Duration) Option {
	return func(o *options) {
		o.idleTTL = d
	}
}

func withMetrics(m *metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

type metrics struct {
	mutations metric.Int64Counter
}

func newMetrics(mp metric.MeterProvider, lg *zap.Logger) *metrics {
	meter := mp.Meter("github.com/xenking/bookstore/internal/cartstore")
	c, err := meter.Int64Counter("bookstore.cart.mutations",
		metric.WithDescription("Cart mutations by operation and outcome"),
	)
	if err != nil {
		lg.Warn("Failed to create cart mutation counter", zap.Error(err))
		c, _ = noop.NewMeterProvider().Meter("").Int64Counter("")
	}
	return &metrics{mutations: c}
}

func (m *metrics) record(ctx context.Context, op string, err error) {
	result := "ok"
	if err != nil {
		result = "persist_error"
	}
	m.mutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("result", result),
	))
}
