package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apihttp "github.com/quickdesk/ticket-engine/internal/api/http"
	"github.com/quickdesk/ticket-engine/internal/api/http/handlers"
	"github.com/quickdesk/ticket-engine/internal/config"
	"github.com/quickdesk/ticket-engine/internal/events"
	"github.com/quickdesk/ticket-engine/internal/identity"
	"github.com/quickdesk/ticket-engine/internal/observability"
	"github.com/quickdesk/ticket-engine/internal/persistence"
	"github.com/quickdesk/ticket-engine/internal/repository"
	"github.com/quickdesk/ticket-engine/internal/service"
	"github.com/quickdesk/ticket-engine/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer db.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, db.PoolHandle(), logger); err != nil {
			logger.Fatal("run migrations", zap.Error(err))
		}
	}

	cache := persistence.NewRedis(cfg.Redis, logger)
	defer cache.Close()

	ticketRepo := repository.NewTicketRepository(db.PoolHandle())
	responseRepo := repository.NewResponseRepository(db.PoolHandle())
	agentRepo := repository.NewAgentRepository(db.PoolHandle())
	assignmentRepo := repository.NewAssignmentRepository(db.PoolHandle())
	statsRepo := repository.NewStatsRepository(db.PoolHandle())

	dispatcher := events.NewInMemoryDispatcher()

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		ResponseRepo:   responseRepo,
		AgentRepo:      agentRepo,
		AssignmentRepo: assignmentRepo,
		Dispatcher:     dispatcher,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		TicketRepo:     ticketRepo,
		AgentRepo:      agentRepo,
		AssignmentRepo: assignmentRepo,
		Dispatcher:     dispatcher,
	})
	agentService := service.NewAgentService(agentRepo)
	bulkService := service.NewBulkService(ticketService, assignmentService)
	statsService := service.NewStatsService(statsRepo, cache.Client, cfg.Redis.StatsCacheTTL())
	notificationService := service.NewNotificationService(dispatcher, responseRepo, logger, cfg.Notification)

	worker.StartNotificationWorker(notificationService)

	metrics := observability.NewMetrics()
	identityMiddleware := identity.NewMiddleware(identity.NewTokenParser(cfg.Identity.JWTSecret))

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})

	apihttp.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	apihttp.RegisterRoutes(app, apihttp.RouteConfig{
		Identity:     identityMiddleware,
		Tickets:      handlers.NewTicketsHandler(ticketService, assignmentService, logger),
		StaffTickets: handlers.NewStaffTicketsHandler(ticketService, assignmentService, bulkService),
		Agents:       handlers.NewAgentsHandler(agentService),
		Stats:        handlers.NewStatsHandler(statsService),
		Health:       handlers.NewHealthHandler(db, cache, cfg.App.Version),
	})

	go func() {
		logger.Info("server starting", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped cleanly")
}
