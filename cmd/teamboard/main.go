package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/teamboard/pkg/api"
	"github.com/platinummonkey/teamboard/pkg/auth"
	"github.com/platinummonkey/teamboard/pkg/avatars"
	"github.com/platinummonkey/teamboard/pkg/config"
	"github.com/platinummonkey/teamboard/pkg/middleware"
	"github.com/platinummonkey/teamboard/pkg/observability"
	"github.com/platinummonkey/teamboard/pkg/projects"
	"github.com/platinummonkey/teamboard/pkg/storage"
	"github.com/platinummonkey/teamboard/pkg/storage/postgres"
	"github.com/platinummonkey/teamboard/pkg/tasks"
	"github.com/platinummonkey/teamboard/pkg/teams"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("teamboard exited with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *observability.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown := observability.NewShutdownManager(logger, cfg.Server.ShutdownTimeout)
	defer func() {
		if err := shutdown.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("shutdown finished with errors")
		}
	}()

	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	shutdown.Register("otel", func(ctx context.Context) error {
		return observability.ShutdownOTel(ctx, providers, logger)
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(registry)
	}

	db, err := postgres.Connect(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	shutdown.Register("postgres", func(context.Context) error { return db.Close() })

	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	logger.Info("database migrations applied")

	var redisClient *redis.Client
	if cfg.Storage.RedisURL != "" {
		redisClient, err = postgres.NewRedisClient(ctx, cfg.Storage)
		if err != nil {
			return err
		}
		shutdown.Register("redis", func(context.Context) error { return redisClient.Close() })
	}

	g, ctx := errgroup.WithContext(ctx)

	throttle, err := newThrottle(ctx, g, cfg, redisClient, logger)
	if err != nil {
		return err
	}

	tokens, err := auth.NewJWTIssuer([]byte(cfg.Auth.JWTSecret),
		auth.WithIssuer(cfg.Auth.JWTIssuer),
		auth.WithTTL(cfg.Auth.TokenTTL),
	)
	if err != nil {
		return fmt.Errorf("failed to create token issuer: %w", err)
	}
	authService := auth.NewService(
		postgres.NewUserStore(db),
		auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		tokens,
		throttle,
		metrics,
		logger.WithField("component", "auth"),
	)

	checker := observability.NewHealthChecker(db, redisClient, version).WithMetrics(metrics)

	avatarStore, err := newAvatarStore(ctx, cfg.Storage, db, metrics, checker)
	if err != nil {
		return err
	}
	avatarService := avatars.NewService(avatarStore, authService, clockwork.NewRealClock(), logger.WithField("component", "avatars"))

	limiter := middleware.NewRateLimiter(&middleware.RateLimitConfig{
		RequestsPerWindow: cfg.Auth.RateLimitRequests,
		WindowDuration:    cfg.Auth.RateLimitWindow,
		BurstSize:         cfg.Auth.RateLimitBurst,
	}, nil)
	background(g, logger, "rate limiter cleanup", func() { limiter.RunCleanup(ctx) })

	server, err := api.NewServer(api.Deps{
		Auth:         authService,
		Avatars:      avatarService,
		Teams:        teams.NewPostgresService(db),
		Projects:     projects.NewPostgresService(db),
		Tasks:        tasks.NewPostgresService(db),
		RateLimiter:  limiter,
		Metrics:      metrics,
		Logger:       logger,
		CORSOrigins:  cfg.Server.CORSOrigins,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Tracing:      cfg.Observability.OTelEnabled,
	})
	if err != nil {
		return err
	}

	apiServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, checker)
	if metrics != nil {
		observability.RegisterMetricsEndpoint(healthMux, registry)
	}
	healthServer := &http.Server{
		Addr:              cfg.Server.HealthAddr(),
		Handler:           healthMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	shutdown.Register("api server", apiServer.Shutdown)
	shutdown.Register("health server", healthServer.Shutdown)

	if metrics != nil {
		background(g, logger, "db stats reporter", func() {
			postgres.ReportStats(ctx, db, metrics, 15*time.Second)
		})
	}

	g.Go(func() error { return serve(apiServer, logger, "api") })
	g.Go(func() error { return serve(healthServer, logger, "health") })
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		return shutdown.Shutdown(context.Background())
	})

	logger.WithFields(map[string]interface{}{
		"version":        version,
		"addr":           apiServer.Addr,
		"health_addr":    healthServer.Addr,
		"avatar_backend": cfg.Storage.AvatarBackend,
		"throttle":       cfg.Auth.ThrottleBackend,
	}).Info("teamboard starting")

	return g.Wait()
}

// background runs a housekeeping loop in g. A panic is logged and stops only
// that loop; the servers keep running.
func background(g *errgroup.Group, logger *observability.Logger, name string, loop func()) {
	g.Go(func() error {
		defer observability.RecoverPanic(logger, name)
		loop()
		return nil
	})
}

func serve(srv *http.Server, logger *observability.Logger, name string) error {
	logger.WithField("addr", srv.Addr).Infof("%s server listening", name)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server: %w", name, err)
	}
	return nil
}

// newThrottle picks the login throttle backend. The memory backend is swept in g.
func newThrottle(ctx context.Context, g *errgroup.Group, cfg *config.Config, client *redis.Client, logger *observability.Logger) (auth.Throttle, error) {
	switch cfg.Auth.ThrottleBackend {
	case config.ThrottleBackendRedis:
		if client == nil {
			return nil, errors.New("redis throttle backend needs TEAMBOARD_REDIS_URL")
		}
		return auth.NewRedisThrottle(client, cfg.Auth.ThrottleMaxFailures, cfg.Auth.ThrottleWindow), nil
	default:
		throttle := auth.NewMemoryThrottle(cfg.Auth.ThrottleMaxFailures, cfg.Auth.ThrottleWindow, nil)
		background(g, logger, "throttle sweeper", func() {
			throttle.RunSweeper(ctx, cfg.Auth.ThrottleWindow)
		})
		return throttle, nil
	}
}

// newAvatarStore picks the avatar backend. An S3 bucket is probed by readiness
// but only degrades it, since nothing else depends on avatars.
func newAvatarStore(ctx context.Context, cfg storage.Config, db *sql.DB, metrics *observability.Metrics, checker *observability.HealthChecker) (avatars.Store, error) {
	var store avatars.Store
	switch cfg.AvatarBackend {
	case storage.AvatarBackendS3:
		s3Store, err := postgres.NewS3AvatarStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		checker.WithCheck("avatar_storage", false, s3Store.HealthCheck)
		store = s3Store
	default:
		store = postgres.NewAvatarStore(db)
	}

	if cfg.CacheEnabled {
		store = avatars.NewCachedStore(store, cfg.CacheSize, cfg.CacheTTL, metrics)
	}
	return store, nil
}
