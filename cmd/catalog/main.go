package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/inventoryhq/catalog/pkg/api"
	"github.com/inventoryhq/catalog/pkg/auth"
	"github.com/inventoryhq/catalog/pkg/config"
	"github.com/inventoryhq/catalog/pkg/middleware"
	"github.com/inventoryhq/catalog/pkg/observability"
	"github.com/inventoryhq/catalog/pkg/storage/postgres"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		observability.NewLogger(observability.ErrorLevel, os.Stderr).
			WithError(err).Error("failed to load configuration")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	logger.Info("starting catalog service")

	db, err := postgres.Connect(postgres.ConnectionConfig{
		URL:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
		Timeout:  cfg.Database.Timeout,
	})
	if err != nil {
		logger.WithError(err).Error("failed to connect to postgres")
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to postgres")

	if cfg.Database.RunMigrations {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.Timeout)
		if err := postgres.RunMigrations(ctx, db); err != nil {
			cancel()
			logger.WithError(err).Error("failed to run migrations")
			os.Exit(1)
		}
		cancel()
		logger.Info("migrations applied")
	}

	// Redis is optional; without it login rate limiting is disabled.
	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		redisClient, err = connectRedis(cfg.Redis)
		if err != nil {
			logger.WithError(err).Warn("redis unavailable, login rate limiting disabled")
			redisClient = nil
		} else {
			logger.Info("connected to redis")
		}
	}

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
	}

	hasher := auth.NewHasher(cfg.Auth.BCryptCost)
	codec := auth.NewTokenCodec([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	users := postgres.NewUserStore(db)
	products := postgres.NewProductStore(db)
	authService := auth.NewService(users, hasher, codec, logger)

	authenticator := middleware.NewAuthenticator(codec, users, metrics, logger, api.PublicPaths)
	loginLimiter := middleware.NewLoginRateLimiter(redisClient, &middleware.RateLimitConfig{
		RequestsPerWindow: cfg.Auth.LoginRateLimit,
		WindowDuration:    cfg.Auth.LoginRateWindow,
	}, metrics, logger)

	server := api.NewServer(api.Options{
		AuthService:   authService,
		Products:      products,
		Authenticator: authenticator,
		Policy:        api.DefaultAccessPolicy(),
		LoginLimiter:  loginLimiter,
		Metrics:       metrics,
		Logger:        logger,
		MaxBodyBytes:  cfg.Server.MaxBodyBytes,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthServer := startHealthServer(cfg, db, redisClient, metrics, logger)

	go func() {
		logger.Infof("API server listening on %s", cfg.Server.Address())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("API server failed")
			os.Exit(1)
		}
	}()

	pollCtx, stopPolling := context.WithCancel(context.Background())
	defer stopPolling()
	if metrics != nil {
		go metrics.PollDBStats(pollCtx, db, 15*time.Second)
	}

	shutdown := observability.NewShutdownManager(logger, httpServer, cfg.Server.ShutdownTimeout)
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return healthServer.Shutdown(ctx)
	})
	shutdown.RegisterShutdownFunc(func(context.Context) error {
		stopPolling()
		return nil
	})
	if redisClient != nil {
		shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
			return redisClient.Close()
		})
	}

	if err := shutdown.WaitForShutdown(); err != nil {
		logger.WithError(err).Error("shutdown finished with errors")
		os.Exit(1)
	}
}

// connectRedis builds a Redis client from config and verifies connectivity
func connectRedis(cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		// Accept a bare host:port as well as a redis:// URL
		opts = &redis.Options{Addr: cfg.URL}
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opts.DB = cfg.DB
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// startHealthServer serves the liveness/readiness probes and, when
// enabled, the metrics endpoint on a separate port.
func startHealthServer(cfg *config.Config, db *sql.DB, redisClient *redis.Client, metrics *observability.Metrics, logger *observability.Logger) *http.Server {
	healthMux := http.NewServeMux()
	observability.NewHealthChecker(db, redisClient).RegisterRoutes(healthMux)
	if metrics != nil {
		healthMux.Handle("/metrics", metrics.Handler())
	}

	healthServer := &http.Server{
		Addr:    cfg.Server.HealthAddress(),
		Handler: healthMux,
	}
	go func() {
		logger.Infof("health server listening on %s", cfg.Server.HealthAddress())
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("health server failed")
		}
	}()
	return healthServer
}
