package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/diario-de-bordo/internal/api/http"
	"github.com/spec-kit/diario-de-bordo/internal/api/http/handlers"
	"github.com/spec-kit/diario-de-bordo/internal/classifier"
	"github.com/spec-kit/diario-de-bordo/internal/config"
	"github.com/spec-kit/diario-de-bordo/internal/events"
	"github.com/spec-kit/diario-de-bordo/internal/observability"
	"github.com/spec-kit/diario-de-bordo/internal/persistence"
	"github.com/spec-kit/diario-de-bordo/internal/repository"
	"github.com/spec-kit/diario-de-bordo/internal/service"
	"github.com/spec-kit/diario-de-bordo/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	location, err := cfg.App.Location()
	if err != nil {
		logger.Fatal("invalid timezone", zap.String("timezone", cfg.App.Timezone), zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticketRepo, storeCheck, closeStore := openStore(ctx, cfg, logger)
	defer closeStore()

	redisConn := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redisConn.Close()

	var redisClient redis.Cmdable
	if redisConn.Available() {
		redisClient = redisConn.Client
	}

	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(logger, cfg.Notification, redisClient)
	notificationWorker := worker.StartNotificationWorker(ctx, dispatcher, notifications, logger)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		Classifier: classifier.New(cfg.AI, redisConn, logger),
		Dispatcher: dispatcher,
		Logger:     logger,
		Location:   location,
	})

	if _, err := ticketService.Refresh(ctx); err != nil {
		logger.Warn("initial ticket load failed; retry with POST /tickets/refresh", zap.Error(err))
	}

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version,
			storeCheck,
			handlers.DependencyCheck{Name: "redis", Ping: redisConn.Ping, Optional: true},
		),
		Metrics:    handlers.NewMetricsHandler(metrics),
		Tickets:    handlers.NewTicketsHandler(ticketService),
		Dashboard:  handlers.NewDashboardHandler(ticketService),
		Escalation: handlers.NewEscalationHandler(ticketService),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("fiber shutdown", zap.Error(err))
	}
	cancel()
	notificationWorker.Wait()
}

// openStore builds the ticket repository for the configured backend along
// with its readiness check and cleanup.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.TicketRepository, handlers.DependencyCheck, func()) {
	switch cfg.Store.Backend {
	case config.StoreBackendSupabase:
		sb := persistence.NewSupabase(cfg.Supabase, logger)
		return repository.NewSupabaseTicketRepository(sb.Client, cfg.Store.Table),
			handlers.DependencyCheck{Name: "supabase", Ping: sb.Ping},
			func() {}

	case config.StoreBackendMemory:
		logger.Warn("using in-memory ticket store; data is lost on restart")
		return repository.NewMemoryTicketRepository(),
			handlers.DependencyCheck{Name: "store", Ping: func(context.Context) error { return nil }},
			func() {}

	default:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, cfg.Store.Table, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		if err := pg.CheckTable(ctx, cfg.Store.Table); err != nil {
			logger.Warn("ticket table check failed", zap.String("table", cfg.Store.Table), zap.Error(err))
		}
		return repository.NewPostgresTicketRepository(pg.PoolHandle(), cfg.Store.Table),
			handlers.DependencyCheck{Name: "postgres", Ping: pg.Ping},
			pg.Close
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
