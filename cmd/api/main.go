package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/board-service/internal/api/http"
	"github.com/spec-kit/board-service/internal/api/http/handlers"
	"github.com/spec-kit/board-service/internal/auth"
	"github.com/spec-kit/board-service/internal/config"
	"github.com/spec-kit/board-service/internal/events"
	"github.com/spec-kit/board-service/internal/observability"
	"github.com/spec-kit/board-service/internal/persistence"
	"github.com/spec-kit/board-service/internal/repository"
	"github.com/spec-kit/board-service/internal/service"
	"github.com/spec-kit/board-service/internal/worker"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	store := repository.NewStore(pg.PoolHandle())
	metrics := observability.NewMetrics()

	dispatcher := events.NewInMemoryDispatcher()
	publisher := events.NewRedisPublisher(redis.Client, cfg.Notification.ChannelPrefix)
	notificationService := service.NewNotificationService(dispatcher, publisher, logger)
	worker.StartNotificationWorker(notificationService)

	authService := service.NewAuthService(cfg.Auth, store)
	boardService := service.NewBoardService(store, dispatcher, logger)
	ticketService := service.NewTicketService(service.TicketDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	watcherService := service.NewWatcherService(store, dispatcher, logger)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), store.Users())

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(redis),
		Users:          handlers.NewUsersHandler(authService),
		Boards:         handlers.NewBoardsHandler(boardService),
		Tickets:        handlers.NewTicketsHandler(ticketService, boardService),
		Comments:       handlers.NewCommentsHandler(ticketService, boardService),
		Watchers:       handlers.NewWatchersHandler(watcherService, ticketService, boardService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
