package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crm_backoffice/internal/audit"
	"crm_backoffice/internal/clients"
	"crm_backoffice/internal/email"
	"crm_backoffice/internal/events"
	apphttp "crm_backoffice/internal/http"
	"crm_backoffice/internal/http/router"
	"crm_backoffice/internal/leads"
	"crm_backoffice/internal/metrics"
	"crm_backoffice/internal/notification"
	"crm_backoffice/internal/projects"
	"crm_backoffice/internal/scheduler"
	"crm_backoffice/migrations"
	"crm_backoffice/platform/cache"
	"crm_backoffice/platform/config"
	"crm_backoffice/platform/db"
	"crm_backoffice/platform/logger"
	"crm_backoffice/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
	leadCachePrefix   = "crm:lead:"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

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

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, pool, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	leadCache, closeRedis := initLeadCache(cfg, log)
	defer closeRedis()

	auditSink, closeQueue := initAuditQueue(cfg, log)
	defer closeQueue()

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()
	leadMetrics := metrics.NewLeadMetrics(prometheus.DefaultRegisterer)

	// ========================================================================
	// Domain Modules
	// ========================================================================

	auditModule := audit.NewModule(pool, auditSink, log)
	recorder := auditModule.Recorder()

	notificationModule := notification.New(email.NewSenderFromConfig(cfg), cfg.GetWonNotificationRecipients(), log)
	notificationModule.RegisterHandlers(eventBus)

	leadsModule := leads.NewModule(pool, eventBus, recorder, val, cfg, leadCache, leadMetrics, log)
	clientsModule := clients.NewModule(pool)
	projectsModule := projects.NewModule(pool, eventBus, recorder, val)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		Metrics:  metrics.Handler(),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			leadsModule,
			clientsModule,
			projectsModule,
			auditModule,
		},
	}

	engine := router.New(app)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		eventBus.Wait()
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}
}

// initLeadCache connects the Redis read cache. Without REDIS_URL reads go
// straight to the database.
func initLeadCache(cfg config.CacheConfig, log *logger.Logger) (*cache.JSONCache, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; lead read cache disabled")
		return nil, func() {}
	}

	client, err := cache.NewClient(cfg.GetRedisURL())
	if err != nil {
		log.Error("failed to initialize redis client", "error", err)
		return nil, func() {}
	}

	return cache.New(client, leadCachePrefix, cfg.GetLeadCacheTTL()), closeRedisClient(client)
}

func closeRedisClient(client *redis.Client) func() {
	return func() {
		_ = client.Close()
	}
}

// initAuditQueue returns the asynq sink for audit entries, or nil so the
// audit module writes synchronously.
func initAuditQueue(cfg config.SchedulerConfig, log *logger.Logger) (audit.Sink, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; audit entries written synchronously")
		return nil, func() {}
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize audit queue client", "error", err)
		return nil, func() {}
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", lastErr)

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", name, attempts, lastErr)
}
