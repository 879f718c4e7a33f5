package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Ugur-Atakan/mckaycpa/internal/auth"
	"github.com/Ugur-Atakan/mckaycpa/internal/config"
	"github.com/Ugur-Atakan/mckaycpa/internal/event"
	handler "github.com/Ugur-Atakan/mckaycpa/internal/handler/http"
	"github.com/Ugur-Atakan/mckaycpa/internal/repository/postgres"
	redisrepo "github.com/Ugur-Atakan/mckaycpa/internal/repository/redis"
	"github.com/Ugur-Atakan/mckaycpa/internal/service"
	"github.com/Ugur-Atakan/mckaycpa/migrations"
	"github.com/Ugur-Atakan/mckaycpa/pkg/database"
	"github.com/Ugur-Atakan/mckaycpa/pkg/health"
	pkgkafka "github.com/Ugur-Atakan/mckaycpa/pkg/kafka"
	"github.com/Ugur-Atakan/mckaycpa/pkg/middleware"
	"github.com/Ugur-Atakan/mckaycpa/pkg/tracing"
)

// App wires together all dependencies and runs the intake service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redisClient    *goredis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, cfg.Tracing())
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize PostgreSQL connection pool.
	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Initialize Redis for wizard draft sessions.
	redisClient, err := database.NewRedisClient(ctx, cfg.Redis())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("host", cfg.RedisHost),
		slog.Int("port", cfg.RedisPort),
	)

	// Initialize Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Build the dependency graph.
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessExpiry)
	submissionRepo := postgres.NewSubmissionRepository(pool)
	staffRepo := postgres.NewStaffRepository(pool)
	draftRepo := redisrepo.NewDraftRepository(redisClient, cfg.DraftTTL)
	eventProducer := event.NewProducer(producer, logger)

	submissionService := service.NewSubmissionService(submissionRepo, eventProducer, logger)
	verificationService := service.NewVerificationService(submissionRepo, eventProducer, logger, cfg.PublicBaseURL, cfg.VerificationTTL)
	wizardService := service.NewWizardService(draftRepo, submissionRepo, eventProducer, logger)
	staffService := service.NewStaffService(staffRepo, jwtManager, logger)

	// Seed the initial admin account so a fresh database has a working
	// login. Skipped when ADMIN_EMAIL is unset.
	if cfg.AdminEmail != "" {
		if err := staffService.EnsureBootstrapAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName); err != nil {
			pool.Close()
			return nil, fmt.Errorf("bootstrap admin: %w", err)
		}
	}

	// Health checks. Postgres and Redis are load-bearing; Kafka only
	// degrades eventing, so it never fails readiness.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterCritical("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	// HTTP router.
	router := handler.NewRouter(
		wizardService,
		submissionService,
		verificationService,
		staffService,
		jwtManager,
		healthHandler,
		logger,
		handler.RouterConfig{
			CORS: middleware.CORSConfig{
				AllowedOrigins: cfg.CORSAllowedOrigins,
				Environment:    cfg.Environment,
			},
			VerifyRateRPS:   int(cfg.VerifyRateLimit),
			VerifyRateBurst: cfg.VerifyRateBurst,
		},
	)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redisClient:    redisClient,
		producer:       producer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
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

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush pending spans from drained requests)
// 3. Kafka producer
// 4. Redis client and PostgreSQL pool
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.redisClient.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}
	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
