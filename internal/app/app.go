package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/kodecocodes/iTDD-DogPatchServer/internal/auth"
	"github.com/kodecocodes/iTDD-DogPatchServer/internal/config"
	"github.com/kodecocodes/iTDD-DogPatchServer/internal/event"
	handler "github.com/kodecocodes/iTDD-DogPatchServer/internal/handler/http"
	"github.com/kodecocodes/iTDD-DogPatchServer/internal/repository"
	"github.com/kodecocodes/iTDD-DogPatchServer/internal/repository/memory"
	"github.com/kodecocodes/iTDD-DogPatchServer/internal/repository/postgres"
	"github.com/kodecocodes/iTDD-DogPatchServer/internal/seed"
	"github.com/kodecocodes/iTDD-DogPatchServer/internal/service"
	"github.com/kodecocodes/iTDD-DogPatchServer/internal/storage"
	"github.com/kodecocodes/iTDD-DogPatchServer/migrations"
	"github.com/kodecocodes/iTDD-DogPatchServer/pkg/database"
	"github.com/kodecocodes/iTDD-DogPatchServer/pkg/health"
	pkgkafka "github.com/kodecocodes/iTDD-DogPatchServer/pkg/kafka"
	"github.com/kodecocodes/iTDD-DogPatchServer/pkg/middleware"
	"github.com/kodecocodes/iTDD-DogPatchServer/pkg/tracing"
)

const serviceName = "dogpatch"

// App wires together all dependencies and runs the DogPatch server.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	rdb        *redis.Client
	producer   *pkgkafka.Producer
	tracerStop func(context.Context) error
	limiters   []*middleware.RateLimiter
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
// Dependencies without configuration fall back to in-process versions.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	ok := false
	defer func() {
		if !ok {
			a.closeDependencies()
		}
	}()

	tracerStop, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRate:     cfg.TracingSampleRate,
		Enabled:        cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	a.tracerStop = tracerStop

	healthHandler := health.NewHandler()

	store, err := a.openStore(ctx, healthHandler)
	if err != nil {
		return nil, err
	}

	revoker, err := a.openRevoker(ctx, healthHandler)
	if err != nil {
		return nil, err
	}

	blobs, publicDir, err := a.openBlobStore(ctx, healthHandler)
	if err != nil {
		return nil, err
	}

	var events service.EventPublisher = event.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher := pkgkafka.NewBreakerPublisher(a.producer, pkgkafka.DefaultBreakerConfig("kafka"), logger)
		events = event.NewProducer(publisher, logger)
		healthHandler.RegisterNonCritical("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		logger.Warn("KAFKA_BROKERS not set, domain events are discarded")
	}

	// Build the dependency graph.
	hasher := service.DefaultHasher()
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry)

	if cfg.SeedData {
		err := seed.New(store, hasher, logger).Run(ctx, seed.Passwords{
			Vicki: cfg.VickiPassword,
			Manda: cfg.MandaPassword,
		})
		if err != nil {
			return nil, err
		}
	}

	loginLimiter := middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginBurst, 0, logger)
	reviewLimiter := middleware.NewRateLimiter(cfg.ReviewRateLimit, cfg.ReviewBurst, 0, logger)
	a.limiters = []*middleware.RateLimiter{loginLimiter, reviewLimiter}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	corsCfg.Environment = cfg.Environment

	router := handler.NewRouter(handler.Deps{
		Users:         service.NewUserService(store, blobs, hasher, events, logger),
		Reviews:       service.NewReviewService(store, events, logger),
		Dogs:          service.NewDogService(store, blobs, events, logger),
		Auth:          service.NewAuthService(store.Users(), hasher, jwtManager, revoker, logger),
		Health:        healthHandler,
		Logger:        logger,
		CORS:          corsCfg,
		LoginLimiter:  loginLimiter,
		ReviewLimiter: reviewLimiter,
		TrustProxy:    cfg.TrustProxyHeaders,
		PublicDir:     publicDir,
	})

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ok = true
	return a, nil
}

func (a *App) openStore(ctx context.Context, h *health.Handler) (repository.Store, error) {
	if !a.cfg.UsesPostgres() {
		a.logger.Warn("DATABASE_URL not set, using in-memory store")
		return memory.NewStore(), nil
	}

	pgCfg := database.DefaultPostgresConfig()
	pgCfg.URL = a.cfg.DatabaseURL
	pgCfg.MaxConns = a.cfg.DBMaxConns
	pgCfg.MinConns = a.cfg.DBMinConns

	pool, err := database.NewPostgresPool(ctx, &pgCfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	a.pool = pool
	a.logger.Info("connected to PostgreSQL")

	if err := database.RunMigrations(ctx, pool, migrations.FS, a.logger); err != nil {
		return nil, err
	}
	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, serviceName); err != nil {
		return nil, fmt.Errorf("register pool metrics: %w", err)
	}
	if a.cfg.SlowQueryLog {
		database.SetSlowQueryLogging(200*time.Millisecond, a.logger)
	}

	h.RegisterCritical("postgres", pool.Ping)
	return postgres.NewStore(pool), nil
}

func (a *App) openRevoker(ctx context.Context, h *health.Handler) (auth.Revoker, error) {
	if !a.cfg.UsesRedis() {
		a.logger.Warn("Redis not configured, token revocations are kept in memory")
		return auth.NewMemoryRevoker(), nil
	}

	rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
		URL:      a.cfg.RedisURL,
		Addr:     a.cfg.RedisAddr,
		Password: a.cfg.RedisPass,
		DB:       a.cfg.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.rdb = rdb
	a.logger.Info("connected to Redis")

	h.RegisterCritical("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	return auth.NewRedisRevoker(rdb), nil
}

// openBlobStore returns the blob store and, for local storage, the
// directory the router serves.
func (a *App) openBlobStore(ctx context.Context, h *health.Handler) (storage.BlobStore, string, error) {
	if a.cfg.StorageBackend != config.StorageMinIO {
		return storage.NewLocal(a.cfg.PublicDir, a.cfg.DomainURL, a.logger), a.cfg.PublicDir, nil
	}

	m, err := storage.NewMinIO(ctx, storage.MinIOConfig{
		Endpoint:  a.cfg.MinIOEndpoint,
		AccessKey: a.cfg.MinIOAccessKey,
		SecretKey: a.cfg.MinIOSecretKey,
		Bucket:    a.cfg.MinIOBucket,
		UseSSL:    a.cfg.MinIOUseSSL,
	}, a.logger)
	if err != nil {
		return nil, "", fmt.Errorf("connect to minio: %w", err)
	}
	h.RegisterNonCritical("minio", m.Ping)
	return m, "", nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	for _, l := range a.limiters {
		go l.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.closeDependencies()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.closeDependencies()
	a.logger.Info("application shutdown complete")
	return nil
}

func (a *App) closeDependencies() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.tracerStop != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracerStop(ctx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}
}
