// Package app wires the storefront server together.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/bookstore/internal/broker"
	"github.com/xenking/bookstore/internal/cartstore"
	"github.com/xenking/bookstore/internal/catalog"
	"github.com/xenking/bookstore/internal/domain/book"
	"github.com/xenking/bookstore/internal/handler"
	"github.com/xenking/bookstore/internal/openlibrary"
	"github.com/xenking/bookstore/pkg/health"
	"github.com/xenking/bookstore/pkg/httpmiddleware"
)

// Telemetry provides the OpenTelemetry providers. It is satisfied by the
// go-faster/sdk app telemetry.
type Telemetry interface {
	TracerProvider() trace.TracerProvider
	MeterProvider() metric.MeterProvider
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("storage", cfg.Storage.Backend),
		zap.String("pricing", cfg.Pricing.Mode),
	)

	backend, err := openStorage(ctx, lg, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			lg.Error("Failed to close storage", zap.Error(err))
		}
	}()

	healthSvc := health.New(lg.Named("health"))
	healthSvc.Register(health.Check{
		Name:    "storage",
		Kind:    health.Readiness,
		Timeout: 5 * time.Second,
		Func:    health.Ping(cfg.Storage.Backend, backend),
	})
	healthSvc.Register(health.Check{
		Name:    "goroutines",
		Kind:    health.Liveness,
		Timeout: time.Second,
		Func:    health.GoroutineLimit(10000),
	})

	provider := openlibrary.New(openlibrary.Config{
		BaseURL:         cfg.OpenLibrary.BaseURL,
		Timeout:         cfg.OpenLibrary.Timeout,
		UserAgent:       cfg.OpenLibrary.UserAgent,
		RPS:             cfg.OpenLibrary.RPS,
		Burst:           cfg.OpenLibrary.Burst,
		BreakerFailures: cfg.OpenLibrary.BreakerFailures,
		BreakerCooldown: cfg.OpenLibrary.BreakerCooldown,
	},
		openlibrary.WithLogger(lg),
		openlibrary.WithTelemetry(m.TracerProvider(), m.MeterProvider()),
	)
	normalizer := book.NewNormalizer(
		book.NewPricer(book.PricingMode(cfg.Pricing.Mode)),
		book.WithCoversURL(cfg.OpenLibrary.CoversURL),
	)
	books := catalog.New(provider, normalizer, lg.Named("catalog"))

	storeOpts := []cartstore.Option{
		cartstore.WithLogger(lg.Named("cart")),
		cartstore.WithMeterProvider(m.MeterProvider()),
		cartstore.WithIdleTTL(cfg.Storage.CartIdleTTL),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		pub := broker.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, lg)
		defer func() {
			if err := pub.Close(); err != nil {
				lg.Error("Failed to close cart event publisher", zap.Error(err))
			}
		}()
		storeOpts = append(storeOpts, cartstore.WithObservers(pub))
		lg.Info("Publishing cart events",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}
	carts := cartstore.NewRegistry(backend, storeOpts...)

	router := handler.New(books, carts).Router()
	router.Handler(http.MethodGet, "/livez", healthSvc.Handler(health.Liveness))
	router.Handler(http.MethodGet, "/readyz", healthSvc.Handler(health.Readiness))

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		// Listings fan out to the provider, so allow for its timeout.
		WriteTimeout:   cfg.OpenLibrary.Timeout + 10*time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
		Addr:           cfg.Addr,
		Handler: httpmiddleware.Wrap(router,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				Origins:     cfg.CORS.Origins,
				Headers:     []string{"Content-Type", handler.HeaderCartSession, httpmiddleware.HeaderRequestID},
				Expose:      []string{handler.HeaderCartSession, httpmiddleware.HeaderRequestID},
				Credentials: cfg.CORS.AllowCredentials,
				MaxAge:      86400,
			}),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				RPS:   cfg.RateLimit.RPS,
				Burst: cfg.RateLimit.Burst,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("bookstore", m.TracerProvider(), m.MeterProvider()),
			httpmiddleware.LogRequests(),
		),
	}

	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		carts.Run(gCtx)
		return nil
	})
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	g.Go(func() error {
		// Graceful shutdown: fail readiness, drain, then stop.
		<-gCtx.Done()
		healthSvc.SetReady(false)
		if ctx.Err() != nil {
			lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
			time.Sleep(cfg.Graceful.ReadinessDelay)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		defer healthSvc.Stop()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	})
	return g.Wait()
}
