package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rbac-service/internal/api/http/handlers"
	"github.com/spec-kit/rbac-service/internal/auth"
	"github.com/spec-kit/rbac-service/internal/ratelimit"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health        *handlers.HealthHandler
	Metrics       *handlers.MetricsHandler
	Auth          *handlers.AuthHandler
	Posts         *handlers.PostsHandler
	Admin         *handlers.AdminHandler
	Authenticator *auth.Authenticator
	Authorizer    *auth.Authorizer
	LoginLimiter  *ratelimit.LoginLimiter
}

// RegisterRoutes wires HTTP routes. Every protected route passes the
// authentication gate, then its authorization gate; the ownership rule for
// post mutation lives in the service layer.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	api := app.Group("/api")

	api.Get("/health", cfg.Health.Live)
	api.Get("/health/ready", cfg.Health.Ready)
	api.Get("/metrics", cfg.Metrics.Snapshot)

	authGroup := api.Group("/auth")
	loginHandlers := []fiber.Handler{cfg.Auth.Login}
	if cfg.LoginLimiter != nil {
		loginHandlers = append([]fiber.Handler{cfg.LoginLimiter.Handle}, loginHandlers...)
	}
	authGroup.Post("/login", loginHandlers...)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Post("/logout", cfg.Auth.Logout)

	posts := api.Group("/posts", cfg.Authenticator.Handle)
	posts.Post("/", cfg.Authorizer.RequirePermission(auth.PermPostsCreate), cfg.Posts.Create)
	posts.Get("/", cfg.Authorizer.RequirePermission(auth.PermPostsRead), cfg.Posts.List)
	posts.Put("/:id", cfg.Authorizer.RequirePermission(auth.PermPostsUpdate), cfg.Posts.Update)
	posts.Delete("/:id", cfg.Authorizer.RequirePermission(auth.PermPostsDelete), cfg.Posts.Delete)

	admin := api.Group("/admin", cfg.Authenticator.Handle)
	admin.Get("/users", cfg.Authorizer.RequirePermission(auth.PermUsersManage), cfg.Admin.ListUsers)
	admin.Post("/users", cfg.Authorizer.RequirePermission(auth.PermUsersManage), cfg.Admin.CreateUser)
}
