// Package openlibrary is a client for the Open Library search and works APIs.
package openlibrary

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xenking/bookstore/internal/domain/book"
)

// ErrNotFound is returned by Work when the provider has no such work.
var ErrNotFound = errors.New("work not found")

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// Defaults used when Config leaves a field empty.
const (
	DefaultBaseURL   = "https://openlibrary.org"
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "bookstore/1.0 (+https://github.com/xenking/bookstore)"
)

// Config configures a Client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// RPS limits outbound requests per second. Zero disables limiting.
	RPS   float64
	Burst int
	// BreakerFailures consecutive failures open the circuit.
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// Client implements catalog.Provider over HTTP.
type Client struct {
	base    string
	ua      string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	lg      *zap.Logger
}

// Option configures optional Client dependencies.
type Option func(*clientOptions)

type clientOptions struct {
	lg        *zap.Logger
	transport http.RoundTripper
	tp        trace.TracerProvider
	mp        metric.MeterProvider
}

// WithLogger sets the logger used for circuit state changes.
func WithLogger(lg *zap.Logger) Option {
	return func(o *clientOptions) { o.lg = lg }
}

// WithTransport replaces the base round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *clientOptions) { o.transport = rt }
}

// WithTelemetry instruments outbound requests.
func WithTelemetry(tp trace.TracerProvider, mp metric.MeterProvider) Option {
	return func(o *clientOptions) {
		o.tp = tp
		o.mp = mp
	}
}

// New returns a Client for cfg.
func New(cfg Config, opts ...Option) *Client {
	o := clientOptions{lg: zap.NewNop(), transport: http.DefaultTransport}
	for _, fn := range opts {
		fn(&o)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = 30 * time.Second
	}

	var otelOpts []otelhttp.Option
	if o.tp != nil {
		otelOpts = append(otelOpts, otelhttp.WithTracerProvider(o.tp))
	}
	if o.mp != nil {
		otelOpts = append(otelOpts, otelhttp.WithMeterProvider(o.mp))
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), max(cfg.Burst, 1))
	}

	lg := o.lg.Named("openlibrary")
	failures := cfg.BreakerFailures
	return &Client{
		base: strings.TrimRight(cfg.BaseURL, "/"),
		ua:   cfg.UserAgent,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(o.transport, otelOpts...),
		},
		limiter: limiter,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "openlibrary",
			Timeout: cfg.BreakerCooldown,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= failures
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				lg.Warn("Circuit breaker state changed",
					zap.String("name", name),
					zap.Stringer("from", from),
					zap.Stringer("to", to),
				)
			},
		}),
		lg: lg,
	}
}

// Search runs a full-text query and returns at most limit records.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]book.Record, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(limit))

	var records []book.Record
	err := c.get(ctx, "/search.json?"+q.Encode(), func(d *jx.Decoder) error {
		var err error
		records, err = decodeSearch(d)
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "search %q", query)
	}
	return records, nil
}

// Work fetches one work by id. It returns ErrNotFound on 404.
func (c *Client) Work(ctx context.Context, id string) (*book.Record, error) {
	if id == "" || strings.ContainsAny(id, "/?#") {
		return nil, ErrNotFound
	}

	var r *book.Record
	err := c.get(ctx, "/works/"+url.PathEscape(id)+".json", func(d *jx.Decoder) error {
		var err error
		r, err = decodeWork(d)
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "get work %q", id)
	}
	if r.Key == "" {
		r.Key = "/works/" + id
	}
	return r, nil
}

func (c *Client) get(ctx context.Context, path string, decode func(*jx.Decoder) error) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "rate limit")
	}
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.do(ctx, c.base+path, decode)
	})
	return err
}

func (c *Client) do(ctx context.Context, u string, decode func(*jx.Decoder) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.ua)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "send request")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &StatusError{StatusCode: resp.StatusCode, URL: u}
	}

	return decode(jx.Decode(resp.Body, 4096))
}
