package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/rbac-service/internal/api/http"
	"github.com/spec-kit/rbac-service/internal/api/http/handlers"
	"github.com/spec-kit/rbac-service/internal/auth"
	"github.com/spec-kit/rbac-service/internal/config"
	"github.com/spec-kit/rbac-service/internal/events"
	"github.com/spec-kit/rbac-service/internal/observability"
	"github.com/spec-kit/rbac-service/internal/persistence"
	"github.com/spec-kit/rbac-service/internal/ratelimit"
	"github.com/spec-kit/rbac-service/internal/repository"
	"github.com/spec-kit/rbac-service/internal/service"
	"github.com/spec-kit/rbac-service/internal/worker"
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

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	postRepo := repository.NewPostRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)

	authService := service.NewAuthService(cfg.Auth, userRepo)
	postService := service.NewPostService(postRepo, dispatcher)
	userService := service.NewUserService(userRepo, dispatcher, cfg.Auth.BcryptCost)
	auditService := service.NewAuditService(dispatcher, auditRepo, logger)
	worker.StartAuditWorker(auditService)

	authenticator := auth.NewAuthenticator(authService.TokenManager(), metrics, logger)
	authorizer := auth.NewAuthorizer(auth.DefaultPermissionTable(), metrics, logger)

	var loginLimiter *ratelimit.LoginLimiter
	if !cfg.RateLimit.DisableLoginThrottle {
		loginLimiter = ratelimit.NewLoginLimiter(
			redis.Client,
			cfg.RateLimit.LoginMaxAttempts,
			cfg.RateLimit.LoginWindow(),
			metrics,
			logger,
		)
	}

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:        handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Metrics:       handlers.NewMetricsHandler(metrics),
		Auth:          handlers.NewAuthHandler(authService, metrics, logger, cfg.App.Production()),
		Posts:         handlers.NewPostsHandler(postService),
		Admin:         handlers.NewAdminHandler(userService),
		Authenticator: authenticator,
		Authorizer:    authorizer,
		LoginLimiter:  loginLimiter,
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
