// Package main is the entry point for the Student Risk Hub API server.
//
// The server exposes the risk assessment engine over HTTP: roster
// management, on-demand and bulk assessments, algorithm comparison,
// interventions and teacher notifications.
//
// The architecture follows Clean Architecture and DDD:
// - Domain: risk algorithms and entities, no external dependencies
// - Application: use case orchestration (Commands/Queries)
// - Infrastructure: postgres/redis persistence, auth, event bus
// - Interface: HTTP handlers
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/edupulse/student-risk-hub/config"

	// Application layer
	"github.com/edupulse/student-risk-hub/internal/application/command"
	"github.com/edupulse/student-risk-hub/internal/application/query"

	// Domain layer
	"github.com/edupulse/student-risk-hub/internal/domain/risk"

	// Infrastructure layer
	"github.com/edupulse/student-risk-hub/internal/infrastructure/auth"
	"github.com/edupulse/student-risk-hub/internal/infrastructure/messaging"
	"github.com/edupulse/student-risk-hub/internal/infrastructure/persistence/postgres"
	"github.com/edupulse/student-risk-hub/internal/infrastructure/persistence/redis"

	// Interface layer
	httpserver "github.com/edupulse/student-risk-hub/internal/interface/http"
	"github.com/edupulse/student-risk-hub/internal/interface/http/handlers"

	// Packages
	"github.com/edupulse/student-risk-hub/pkg/circuitbreaker"
	"github.com/edupulse/student-risk-hub/pkg/logger"
	"github.com/edupulse/student-risk-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. LOAD CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. SET UP LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting Student Risk Hub API server",
		"env", cfg.App.Environment,
		"debug", cfg.App.Debug,
		"version", cfg.App.Version,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. CONNECT TO DATABASE (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := connectDatabase(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 4. RUN MIGRATIONS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("running database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	status, err := migrator.Status(ctx)
	if err != nil {
		log.Warn("failed to get migration status", "error", err)
	} else {
		appliedCount := 0
		for _, m := range status {
			if m.IsApplied {
				appliedCount++
			}
		}
		log.Info("migrations completed", "applied", appliedCount, "total", len(status))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. CONNECT TO REDIS (optional)
	// ─────────────────────────────────────────────────────────────────────────
	var (
		redisCache      *redis.Cache
		assessmentCache *redis.AssessmentCache
		sessionStore    *redis.SessionStore
	)

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCache, err = connectRedis(ctx, cfg, log)
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", "error", err)
		} else {
			defer redisCache.Close()
			assessmentCache = redis.NewAssessmentCache(redisCache)
			sessionStore = redis.NewSessionStore(redisCache)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. INITIALIZE EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")
	eventBusConfig := messaging.DefaultEventBusConfig()
	eventBusConfig.Logger = log
	eventBus := messaging.NewEventBus(eventBusConfig)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	if err := eventBus.SubscribeAll(messaging.NewAuditLogHandler(log)); err != nil {
		return fmt.Errorf("failed to subscribe audit handler: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. INITIALIZE REPOSITORIES
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	studentRepo := postgres.NewStudentRepository(dbConn)
	teacherRepo := postgres.NewTeacherRepository(dbConn)
	assessmentRepo := postgres.NewAssessmentRepository(dbConn)
	interventionRepo := postgres.NewInterventionRepository(dbConn)
	notificationRepo := postgres.NewNotificationRepository(dbConn)
	accountRepo := postgres.NewAccountRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. INITIALIZE AUTHENTICATION
	// ─────────────────────────────────────────────────────────────────────────
	var authService *auth.Service

	switch {
	case !cfg.Auth.Enabled:
		log.Warn("authentication is DISABLED, all endpoints are public")
	case sessionStore == nil:
		if cfg.IsProduction() {
			return errors.New("authentication requires Redis for session storage")
		}
		log.Warn("Redis unavailable, authentication disabled")
	default:
		authService = auth.NewService(accountRepo, sessionStore, auth.Config{
			SessionTTL: cfg.Auth.SessionTTL,
			BcryptCost: cfg.Auth.BcryptCost,
		}, uuid.NewString)
		log.Info("authentication enabled", "session_ttl", cfg.Auth.SessionTTL.String())
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 9. INITIALIZE APPLICATION LAYER (Commands, Queries)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer...")

	// The assessment cache sits behind a circuit breaker so a dead
	// Redis degrades to database reads instead of failing assessments.
	var writeCache command.AssessmentCache
	var readCache query.LatestAssessmentCache
	if assessmentCache != nil {
		guarded := newGuardedAssessmentCache(assessmentCache, log)
		writeCache = guarded
		readCache = guarded
	}

	assessCmd := command.NewAssessStudentHandler(studentRepo, assessmentRepo, notificationRepo, writeCache, eventBus)
	registerCmd := command.NewRegisterStudentHandler(studentRepo, teacherRepo, assessCmd, eventBus)
	updateMetricsCmd := command.NewUpdateMetricsHandler(studentRepo, assessCmd, eventBus)
	recordProgressCmd := command.NewRecordProgressHandler(studentRepo, eventBus)
	createInterventionCmd := command.NewCreateInterventionHandler(studentRepo, interventionRepo, assessmentRepo, eventBus)
	completeInterventionCmd := command.NewCompleteInterventionHandler(interventionRepo, assessmentRepo, teacherRepo, assessCmd, eventBus)
	recalculateCmd := command.NewRecalculateAllRisksHandler(studentRepo, assessCmd, eventBus)

	overviewQuery := query.NewGetRiskOverviewHandler(studentRepo, assessmentRepo, interventionRepo, readCache)
	comparisonQuery := query.NewCompareAlgorithmsHandler(studentRepo)
	highRiskQuery := query.NewGetHighRiskStudentsHandler(studentRepo, assessmentRepo)
	statisticsQuery := query.NewGetStatisticsHandler(studentRepo, assessmentRepo, interventionRepo)

	// ─────────────────────────────────────────────────────────────────────────
	// 10. SET UP HEALTH CHECKS
	// ─────────────────────────────────────────────────────────────────────────
	healthChecker := handlers.NewCompositeHealthChecker(cfg.App.Version)
	healthChecker.AddCriticalCheck("database", handlers.NewDatabaseCheck(dbConn))
	if redisCache != nil {
		healthChecker.AddCheck("cache", handlers.NewCacheCheck(redisCache))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 11. CREATE HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing HTTP server...")

	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.HTTP.Host
	httpConfig.Port = cfg.HTTP.Port
	httpConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	httpConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	httpConfig.IdleTimeout = cfg.HTTP.IdleTimeout
	httpConfig.MaxBodyBytes = cfg.HTTP.MaxBodyBytes
	httpConfig.EnableCORS = cfg.HTTP.EnableCORS
	httpConfig.AllowedOrigins = cfg.HTTP.AllowedOrigins
	httpConfig.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute

	httpDeps := httpserver.Dependencies{
		RegisterStudentHandler:      registerCmd,
		UpdateMetricsHandler:        updateMetricsCmd,
		AssessStudentHandler:        assessCmd,
		RecordProgressHandler:       recordProgressCmd,
		CreateInterventionHandler:   createInterventionCmd,
		CompleteInterventionHandler: completeInterventionCmd,
		RecalculateAllHandler:       recalculateCmd,
		GetRiskOverviewHandler:      overviewQuery,
		CompareAlgorithmsHandler:    comparisonQuery,
		GetHighRiskStudentsHandler:  highRiskQuery,
		GetStatisticsHandler:        statisticsQuery,
		StudentRepo:                 studentRepo,
		NotificationRepo:            notificationRepo,
		AuthService:                 authService,
		Logger:                      logger.FromSlog(log),
		HealthChecker:               healthChecker,
	}

	httpServer := httpserver.NewServer(httpConfig, httpDeps)

	// ─────────────────────────────────────────────────────────────────────────
	// 12. START SERVICES
	// ─────────────────────────────────────────────────────────────────────────
	errCh := make(chan error, 1)

	go func() {
		log.Info("starting HTTP server", "address", httpServer.Address())
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 13. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("Student Risk Hub API server is running",
		"http_address", httpServer.Address(),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		log.Error("service error", "error", err)
		return err
	case <-ctx.Done():
		log.Info("context cancelled")
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	var shutdownErr error

	log.Info("stopping HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", "error", err)
		shutdownErr = err
	}

	// Event bus and connections close via defer.

	if shutdownErr != nil {
		log.Warn("shutdown completed with errors")
	} else {
		log.Info("shutdown completed successfully")
	}

	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger configures structured logging.
func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	if cfg.IsProduction() {
		// JSON for production (log aggregators)
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		// Text for development (human-readable)
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}

// connectDatabase opens the postgres pool, retrying while the database
// comes up.
func connectDatabase(ctx context.Context, cfg *config.Config, log *slog.Logger) (*postgres.Connection, error) {
	pgCfg := postgres.DefaultConfig()
	pgCfg.Host = cfg.Database.Host
	pgCfg.Port = cfg.Database.Port
	pgCfg.Database = cfg.Database.Name
	pgCfg.User = cfg.Database.User
	pgCfg.Password = cfg.Database.Password
	pgCfg.SSLMode = cfg.Database.SSLMode
	pgCfg.MaxConns = int32(cfg.Database.MaxConns)
	pgCfg.MinConns = int32(cfg.Database.MinConns)
	pgCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	pgCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime
	pgCfg.ConnectTimeout = cfg.Database.ConnectTimeout

	return retry.DoWithData(ctx, func(ctx context.Context) (*postgres.Connection, error) {
		if cfg.Database.URL != "" {
			return postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
		}
		return postgres.NewConnection(ctx, pgCfg)
	}, startupRetryOptions(log, "database")...)
}

// connectRedis opens the redis client, retrying while redis comes up.
func connectRedis(ctx context.Context, cfg *config.Config, log *slog.Logger) (*redis.Cache, error) {
	redisCfg := redis.DefaultConfig()
	redisCfg.Host = cfg.Redis.Host
	redisCfg.Port = cfg.Redis.Port
	redisCfg.Password = cfg.Redis.Password
	redisCfg.DB = cfg.Redis.DB
	redisCfg.PoolSize = cfg.Redis.PoolSize
	redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
	redisCfg.DialTimeout = cfg.Redis.DialTimeout
	redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
	redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

	return retry.DoWithData(ctx, func(ctx context.Context) (*redis.Cache, error) {
		return redis.NewCache(redisCfg)
	}, startupRetryOptions(log, "redis")...)
}

func startupRetryOptions(log *slog.Logger, target string) []retry.Option {
	return []retry.Option{
		retry.WithMaxAttempts(10),
		retry.WithInitialDelay(500 * time.Millisecond),
		retry.WithMaxDelay(10 * time.Second),
		retry.WithMultiplier(1.5),
		retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			log.Warn("connection attempt failed, retrying",
				"target", target,
				"attempt", attempt,
				"delay", delay.String(),
				"error", err,
			)
		}),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ADAPTERS
// These adapt infrastructure implementations to application interfaces.
// ══════════════════════════════════════════════════════════════════════════════

// guardedAssessmentCache wraps the redis assessment cache in a circuit
// breaker. When the breaker is open, writes are dropped and reads report
// a miss, so callers fall through to postgres.
type guardedAssessmentCache struct {
	cache   *redis.AssessmentCache
	breaker *circuitbreaker.CircuitBreaker
}

func newGuardedAssessmentCache(cache *redis.AssessmentCache, log *slog.Logger) *guardedAssessmentCache {
	breaker := circuitbreaker.CacheBreaker(func(name string, from, to circuitbreaker.State) {
		log.Warn("circuit breaker state changed",
			"breaker", name,
			"from", from.String(),
			"to", to.String(),
		)
	})
	return &guardedAssessmentCache{cache: cache, breaker: breaker}
}

func (g *guardedAssessmentCache) SetLatest(ctx context.Context, a *risk.Assessment) error {
	return g.breaker.Execute(ctx, func(ctx context.Context) error {
		return g.cache.SetLatest(ctx, a)
	})
}

func (g *guardedAssessmentCache) InvalidateOverview(ctx context.Context) error {
	return g.breaker.Execute(ctx, func(ctx context.Context) error {
		return g.cache.InvalidateOverview(ctx)
	})
}

func (g *guardedAssessmentCache) GetLatest(ctx context.Context, studentID string) (*risk.Assessment, error) {
	var result *risk.Assessment
	var miss error

	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		a, getErr := g.cache.GetLatest(ctx, studentID)
		if errors.Is(getErr, redis.ErrCacheMiss) {
			// A miss is a healthy answer, not a cache failure.
			miss = getErr
			return nil
		}
		if getErr != nil {
			return getErr
		}
		result = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	if miss != nil {
		return nil, miss
	}
	return result, nil
}
