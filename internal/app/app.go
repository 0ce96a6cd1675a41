package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zaastore/storefront/internal/cart"
	redisrepo "github.com/zaastore/storefront/internal/cart/repository/redis"
	"github.com/zaastore/storefront/internal/catalog"
	"github.com/zaastore/storefront/internal/checkout"
	"github.com/zaastore/storefront/internal/config"
	"github.com/zaastore/storefront/internal/event"
	handler "github.com/zaastore/storefront/internal/handler/http"
	"github.com/zaastore/storefront/internal/payment/snap"
	"github.com/zaastore/storefront/pkg/database"
	"github.com/zaastore/storefront/pkg/health"
	"github.com/zaastore/storefront/pkg/httpclient"
	pkgkafka "github.com/zaastore/storefront/pkg/kafka"
	"github.com/zaastore/storefront/pkg/middleware"
	"github.com/zaastore/storefront/pkg/tracing"
)

// serviceName identifies the storefront in traces, metrics, and health
// reports.
const serviceName = "storefront"

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg             *config.Config
	logger          *slog.Logger
	rdb             *redis.Client
	producer        *pkgkafka.Producer
	httpServer      *http.Server
	tracingShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Tracing.
	tracingShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	// Redis.
	rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("host", cfg.RedisHost),
		slog.Int("port", cfg.RedisPort),
		slog.Int("db", cfg.RedisDB),
	)

	// Kafka producer for storefront events.
	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	events := event.NewProducer(producer, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Cart.
	cartTTL := time.Duration(cfg.CartTTL) * time.Hour
	repo := redisrepo.NewSnapshotRepository(rdb, cartTTL)
	manager := cart.NewManager(repo, cart.TimerScheduler{}, logger)

	// Catalog upstream behind a circuit breaker.
	catalogHTTP := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultCircuitBreakerConfig("catalog"),
		logger,
	)
	catalogClient := catalog.NewClient(cfg.CatalogBaseURL, catalogHTTP)
	home := catalog.NewHomeCache(catalogClient, cfg.HomeLimit)
	if err := home.Warm(ctx); err != nil {
		// The storefront still boots; the home listing reports unavailable
		// until a later warm succeeds.
		logger.Warn("home listing warm failed", slog.String("error", err.Error()))
	}

	// Payment gateway. Token creation is a single attempt, retries happen
	// only through the idempotency guard on resubmission.
	snapClient := snap.NewClient(cfg.MidtransBaseURL, cfg.MidtransServerKey,
		httpclient.New(httpclient.NoRetryConfig()), logger)
	guard := checkout.NewIdempotencyGuard(rdb, time.Duration(cfg.IdempotencyTTL)*time.Minute)
	assembler := checkout.NewAssembler(snapClient, guard, logger)

	// Health checks. Redis backs carts and idempotency, so it gates
	// readiness; events are fire-and-forget, so kafka only degrades.
	healthHandler := health.NewHandler(serviceName)
	healthHandler.RegisterCritical("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthHandler.RegisterNonCritical("kafka", producer.Ping)

	// HTTP router.
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	corsCfg.Environment = cfg.Environment

	router := handler.NewRouter(handler.RouterDeps{
		Cart:     handler.NewCartHandler(manager, events, logger),
		Catalog:  handler.NewCatalogHandler(catalogClient, home, logger),
		Checkout: handler.NewCheckoutHandler(assembler, snapClient, manager, events,
			cfg.MidtransClientKey, snapClient.SnapJSURL(), logger),
		Health: healthHandler,
		CORS:   corsCfg,
		Logger: logger,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:             cfg,
		logger:          logger,
		rdb:             rdb,
		producer:        producer,
		httpServer:      httpServer,
		tracingShutdown: tracingShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	if err := a.tracingShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracing shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
