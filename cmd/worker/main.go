// Package main is the entry point for the Student Risk Hub background worker.
//
// The worker runs periodic jobs:
// - Full-roster risk recalculation on a fixed interval
// - Daily at-risk digest for every teacher with at-risk students
//
// It shares the database schema with the API server and runs migrations
// on startup so either binary can come up first.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/edupulse/student-risk-hub/config"

	// Application layer
	"github.com/edupulse/student-risk-hub/internal/application/command"

	// Infrastructure layer
	"github.com/edupulse/student-risk-hub/internal/infrastructure/messaging"
	"github.com/edupulse/student-risk-hub/internal/infrastructure/persistence/postgres"
	"github.com/edupulse/student-risk-hub/internal/infrastructure/persistence/redis"
	"github.com/edupulse/student-risk-hub/internal/infrastructure/scheduler"
	"github.com/edupulse/student-risk-hub/internal/infrastructure/scheduler/jobs"

	// Packages
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
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. SET UP LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting Student Risk Hub worker",
		"env", cfg.App.Environment,
		"debug", cfg.App.Debug,
		"timezone", cfg.App.Timezone,
	)

	if !cfg.Scheduler.Enabled {
		return fmt.Errorf("scheduler is disabled (SCHEDULER_ENABLED=false), nothing to do")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. CONNECT TO DATABASE (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")

	var dbConn *postgres.Connection
	err = retry.StartupRetrier().Do(ctx, func(ctx context.Context) error {
		var connErr error
		if cfg.Database.URL != "" {
			dbConn, connErr = postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
		} else {
			dbConn, connErr = postgres.NewConnection(ctx, postgresConfig(cfg))
		}
		return connErr
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. RUN MIGRATIONS (the worker also needs an up-to-date schema)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("checking database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database schema is up to date")

	// ─────────────────────────────────────────────────────────────────────────
	// 5. CONNECT TO REDIS (optional)
	// ─────────────────────────────────────────────────────────────────────────
	var assessmentCache *redis.AssessmentCache

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB

		redisCache, err := redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", "error", err)
		} else {
			defer redisCache.Close()
			assessmentCache = redis.NewAssessmentCache(redisCache)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. INITIALIZE REPOSITORIES
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	studentRepo := postgres.NewStudentRepository(dbConn)
	teacherRepo := postgres.NewTeacherRepository(dbConn)
	assessmentRepo := postgres.NewAssessmentRepository(dbConn)
	notificationRepo := postgres.NewNotificationRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. INITIALIZE EVENT BUS
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
	// 8. INITIALIZE COMMAND HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	var cache command.AssessmentCache
	if assessmentCache != nil {
		cache = assessmentCache
	}

	assessCmd := command.NewAssessStudentHandler(studentRepo, assessmentRepo, notificationRepo, cache, eventBus)
	recalculateCmd := command.NewRecalculateAllRisksHandler(studentRepo, assessCmd, eventBus)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. REGISTER AND START SCHEDULED JOBS
	// ─────────────────────────────────────────────────────────────────────────
	sched := scheduler.New(scheduler.Config{
		Logger:   log,
		Timezone: cfg.App.Location,
	})

	recalcJob := jobs.NewRecalculateRisksJob(recalculateCmd, cfg.Scheduler.RecalculateConcurrency, log)
	if err := sched.Register(recalcJob, scheduler.NewIntervalSchedule(cfg.Scheduler.RecalculateInterval)); err != nil {
		return fmt.Errorf("failed to register recalculation job: %w", err)
	}

	digestJob := jobs.NewDailyDigestJob(teacherRepo, studentRepo, assessmentRepo, notificationRepo, log)
	if err := sched.Register(digestJob, scheduler.NewDailySchedule(cfg.Scheduler.DailyDigestHour, cfg.Scheduler.DailyDigestMinute)); err != nil {
		return fmt.Errorf("failed to register digest job: %w", err)
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("Student Risk Hub worker is running",
		"recalc_interval", cfg.Scheduler.RecalculateInterval.String(),
		"digest_time", fmt.Sprintf("%02d:%02d", cfg.Scheduler.DailyDigestHour, cfg.Scheduler.DailyDigestMinute),
		"timezone", cfg.App.Timezone,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		log.Info("context cancelled")
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	// Stop waits for in-flight jobs, so a long recalculation finishes
	// before the process exits.
	if err := sched.Stop(); err != nil {
		log.Error("failed to stop scheduler gracefully", "error", err)
	}

	log.Info("shutdown completed successfully")
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
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}

// postgresConfig maps the loaded configuration onto the pool config.
func postgresConfig(cfg *config.Config) postgres.Config {
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
	return pgCfg
}
