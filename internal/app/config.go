package app

import (
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"

	"github.com/xenking/bookstore/internal/domain/book"
	"github.com/xenking/bookstore/internal/storage"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the complete application configuration, loadable from
// environment variables (BOOKSTORE_ prefix), flags, a .env file, or YAML
// config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	Storage     StorageConfig
	OpenLibrary OpenLibraryConfig
	Pricing     PricingConfig
	Kafka       KafkaConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Graceful    GracefulConfig
}

// StorageConfig selects and configures the cart snapshot backend.
type StorageConfig struct {
	Backend       string        `default:"bolt" usage:"Snapshot backend: bolt, redis, postgres or memory"`
	BoltPath      string        `default:"bookstore.db" usage:"Bolt database file" flag:"bolt-path"`
	BoltBucket    string        `default:"carts" usage:"Bolt bucket holding snapshots" flag:"bolt-bucket"`
	BoltTimeout   time.Duration `default:"1s" usage:"Bolt file lock timeout" flag:"bolt-timeout"`
	RedisAddr     string        `default:"localhost:6379" usage:"Redis address" flag:"redis-addr"`
	RedisPassword string        `usage:"Redis password" flag:"redis-password"`
	RedisDB       int           `default:"0" usage:"Redis database number" flag:"redis-db"`
	RedisTTL      time.Duration `default:"0s" usage:"Expire idle snapshots, 0 keeps them" flag:"redis-ttl"`
	DatabaseURL   string        `usage:"PostgreSQL connection URL (BOOKSTORE_STORAGE_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	CartIdleTTL   time.Duration `default:"30m" usage:"Drop in-memory carts unused for this long, 0 keeps them" flag:"cart-idle-ttl"`
}

// OpenLibraryConfig configures the catalog provider client.
type OpenLibraryConfig struct {
	BaseURL         string        `default:"https://openlibrary.org" usage:"Open Library API base URL"`
	CoversURL       string        `default:"https://covers.openlibrary.org" usage:"Open Library covers base URL"`
	Timeout         time.Duration `default:"10s" usage:"Per-request timeout"`
	UserAgent       string        `usage:"User-Agent sent upstream"`
	RPS             float64       `default:"5" usage:"Outbound requests per second, 0 disables limiting"`
	Burst           int           `default:"10" usage:"Outbound burst size"`
	BreakerFailures uint32        `default:"5" usage:"Consecutive failures that open the circuit"`
	BreakerCooldown time.Duration `default:"30s" usage:"Time the circuit stays open"`
}

// PricingConfig selects how synthetic commercial fields are generated.
type PricingConfig struct {
	Mode string `default:"seeded" usage:"Synthetic pricing: seeded or random"`
}

// KafkaConfig enables cart event publishing when Brokers is set.
type KafkaConfig struct {
	Brokers []string `usage:"Kafka brokers; empty disables cart events"`
	Topic   string   `default:"bookstore.cart-events" usage:"Cart events topic"`
}

// RateLimitConfig controls the per-client token bucket.
type RateLimitConfig struct {
	RPS   float64 `default:"20" usage:"Requests per second per client, 0 disables limiting"`
	Burst int     `default:"40" usage:"Burst size per client"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads an optional .env file into the environment, then
// configuration from environment variables, flags and YAML config files.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(err, "load .env")
	}
	return loadConfig(aconfig.Config{
		EnvPrefix: "BOOKSTORE",
		Files:     []string{"config.yaml", "/etc/bookstore/config.yaml"},
	})
}

func loadConfig(acfg aconfig.Config) (*Config, error) {
	acfg.FileDecoders = map[string]aconfig.FileDecoder{
		".yaml": aconfigyaml.New(),
	}

	var cfg Config
	if err := aconfig.LoaderFor(&cfg, acfg).Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints aconfig cannot express.
func (c *Config) Validate() error {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	switch c.Storage.Backend {
	case storage.BackendBolt, storage.BackendRedis, storage.BackendMemory:
	case storage.BackendPostgres:
		if c.Storage.DatabaseURL == "" {
			return errors.New("database URL is required for the postgres backend: set BOOKSTORE_STORAGE_DATABASE_URL or DATABASE_URL")
		}
	default:
		return errors.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	switch book.PricingMode(c.Pricing.Mode) {
	case book.PricingSeeded, book.PricingRandom:
	default:
		return errors.Errorf("unknown pricing mode %q", c.Pricing.Mode)
	}
	return nil
}

// applyPlatformDefaults maps platform-provided DATABASE_URL and PORT to the
// application configuration.
func (c *Config) applyPlatformDefaults() {
	if c.Storage.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.Storage.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}
