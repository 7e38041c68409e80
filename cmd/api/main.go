package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Yuvan-1166/crm-sub000/internal/crm"
	"github.com/Yuvan-1166/crm-sub000/internal/crm/lifecycle"
	"github.com/Yuvan-1166/crm-sub000/internal/email"
	"github.com/Yuvan-1166/crm-sub000/internal/events"
	apphttp "github.com/Yuvan-1166/crm-sub000/internal/http"
	"github.com/Yuvan-1166/crm-sub000/internal/http/router"
	"github.com/Yuvan-1166/crm-sub000/internal/notification"
	"github.com/Yuvan-1166/crm-sub000/internal/scheduler"
	"github.com/Yuvan-1166/crm-sub000/migrations"
	"github.com/Yuvan-1166/crm-sub000/platform/config"
	"github.com/Yuvan-1166/crm-sub000/platform/db"
	"github.com/Yuvan-1166/crm-sub000/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Direct queue handoff for committed outbox rows. Without Redis the
	// rows stay pending until a worker's sweeper picks them up.
	var dispatch lifecycle.Dispatcher
	if cfg.RedisURL != "" {
		dispatcher, err := scheduler.NewDispatcher(cfg, pool, log)
		if err != nil {
			log.Error("failed to initialize outbox dispatcher", "error", err)
			panic("failed to initialize outbox dispatcher: " + err.Error())
		}
		defer func() { _ = dispatcher.Close() }()
		dispatch = dispatcher
	} else {
		log.Warn("REDIS_URL not configured; outbox handoff disabled")
	}

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	notificationModule := notification.New(pool, sender, cfg, log)
	notificationModule.RegisterHandlers(eventBus)

	crmModule := crm.NewModule(pool, eventBus, dispatch, log)

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			crmModule,
			notificationModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
