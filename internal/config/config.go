package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/kodecocodes/iTDD-DogPatchServer/pkg/config"
)

const defaultJWTSecret = "change-this-to-a-secure-secret"

// Storage backends.
const (
	StorageLocal = "local"
	StorageMinIO = "minio"
)

// Config holds all configuration for the DogPatch server. Empty connection
// settings select the in-process implementation of that dependency.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort        int           `env:"PORT" envDefault:"8080"`
	DomainURL       string        `env:"DOMAIN_URL" envDefault:"http://localhost:8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// PostgreSQL. Empty keeps everything in memory.
	DatabaseURL  string `env:"DATABASE_URL"`
	DBMaxConns   int32  `env:"DB_MAX_CONNS" envDefault:"20"`
	DBMinConns   int32  `env:"DB_MIN_CONNS" envDefault:"2"`
	SlowQueryLog bool   `env:"DB_SLOW_QUERY_LOG" envDefault:"true"`

	// Redis token revocation. Empty keeps revocations in memory.
	RedisURL  string `env:"REDIS_URL"`
	RedisAddr string `env:"REDIS_ADDR"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka. No brokers disables event publishing.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// JWT
	JWTSecret string        `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`
	JWTExpiry time.Duration `env:"JWT_ACCESS_TOKEN_EXPIRY" envDefault:"24h"`

	// Blob storage
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"local"`
	PublicDir      string `env:"PUBLIC_DIR" envDefault:"public"`
	MinIOEndpoint  string `env:"MINIO_ENDPOINT" envDefault:"localhost:9000"`
	MinIOAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinIOSecretKey string `env:"MINIO_SECRET_KEY"`
	MinIOBucket    string `env:"MINIO_BUCKET" envDefault:"dogpatch"`
	MinIOUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`

	// Seed data
	SeedData      bool   `env:"SEED_DATA" envDefault:"false"`
	VickiPassword string `env:"USER_VICKI_PASSWORD"`
	MandaPassword string `env:"USER_MANDA_PASSWORD"`

	// Rate limits, per client IP
	LoginRateLimit  float64 `env:"LOGIN_RATE_LIMIT" envDefault:"1"`
	LoginBurst      int     `env:"LOGIN_RATE_BURST" envDefault:"5"`
	ReviewRateLimit float64 `env:"REVIEW_RATE_LIMIT" envDefault:"2"`
	ReviewBurst     int     `env:"REVIEW_RATE_BURST" envDefault:"10"`

	// Set only behind a reverse proxy that rewrites forwarding headers.
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" envDefault:"false"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Tracing
	TracingEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTLPEndpoint      string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TracingSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from .env (if present) and environment variables.
func Load() (*Config, error) {
	if err := pkgconfig.LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load dogpatch config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if u, err := url.Parse(c.DomainURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("DOMAIN_URL must be an absolute URL, got %q", c.DomainURL)
	}
	if c.JWTExpiry <= 0 {
		return fmt.Errorf("JWT_ACCESS_TOKEN_EXPIRY must be positive, got %s", c.JWTExpiry)
	}
	if c.TracingSampleRate < 0 || c.TracingSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0 and 1, got %g", c.TracingSampleRate)
	}
	if c.LoginRateLimit <= 0 || c.ReviewRateLimit <= 0 || c.LoginBurst < 1 || c.ReviewBurst < 1 {
		return fmt.Errorf("rate limits must be positive")
	}

	switch c.StorageBackend {
	case StorageLocal:
	case StorageMinIO:
		if c.MinIOAccessKey == "" || c.MinIOSecretKey == "" {
			return fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for the minio backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	// In non-development environments, require an explicitly set, strong JWT secret.
	if c.Environment != "development" {
		if c.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be explicitly set via environment variable in %q mode", c.Environment)
		}
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters long, got %d", len(c.JWTSecret))
		}
	}
	return nil
}

// UsesPostgres reports whether a database URL is configured.
func (c *Config) UsesPostgres() bool { return c.DatabaseURL != "" }

// UsesRedis reports whether a Redis endpoint is configured.
func (c *Config) UsesRedis() bool { return c.RedisURL != "" || c.RedisAddr != "" }
