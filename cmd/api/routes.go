package main

import (
	"github.com/kbukum/notekeeper/internal/auth"
	"github.com/kbukum/notekeeper/internal/config"
	"github.com/kbukum/notekeeper/internal/database"
	"github.com/kbukum/notekeeper/internal/logger"
	"github.com/kbukum/notekeeper/internal/note"
	"github.com/kbukum/notekeeper/internal/observability"
	"github.com/kbukum/notekeeper/internal/server"
	"github.com/kbukum/notekeeper/internal/server/endpoint"
	"github.com/kbukum/notekeeper/internal/server/middleware"
)

// registerRoutes installs the middleware stack and the HTTP surface.
func registerRoutes(
	srv *server.Server,
	cfg *config.Config,
	log *logger.Logger,
	db *database.DB,
	authn *auth.Authenticator,
	authHandler *auth.Handler,
	noteHandler *note.Handler,
) {
	engine := srv.GinEngine()

	engine.Use(middleware.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(log))
	engine.Use(middleware.CORS(&cfg.Server.CORS))
	engine.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	if cfg.Tracing.Enabled {
		engine.Use(observability.Tracing())
	}
	engine.Use(authn.Middleware())

	engine.GET("/health", endpoint.Health(cfg.Name, db.HealthCheck))
	engine.GET("/version", endpoint.Version())

	loginLimit := middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerMinute: cfg.Auth.LoginRequestsPerMinute,
	})

	engine.POST("/login", loginLimit, authHandler.Login)
	engine.POST("/refresh", authHandler.Refresh)
	engine.POST("/logout", authHandler.Logout)
	engine.POST("/register", authHandler.RegisterUser)
	engine.POST("/is-authenticated", auth.RequireUser(), authHandler.IsAuthenticated)

	engine.GET("/notes", auth.RequireUser(), noteHandler.List)
	engine.POST("/notes", auth.RequireUser(), noteHandler.Create)
}
