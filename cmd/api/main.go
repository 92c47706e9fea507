// Command api runs the notekeeper HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/notekeeper/internal/auth"
	"github.com/kbukum/notekeeper/internal/auth/password"
	"github.com/kbukum/notekeeper/internal/config"
	"github.com/kbukum/notekeeper/internal/database"
	"github.com/kbukum/notekeeper/internal/logger"
	"github.com/kbukum/notekeeper/internal/note"
	"github.com/kbukum/notekeeper/internal/observability"
	"github.com/kbukum/notekeeper/internal/server"
	"github.com/kbukum/notekeeper/internal/token"
	"github.com/kbukum/notekeeper/internal/user"
	"github.com/kbukum/notekeeper/internal/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile = flag.String("config", "", "path to config.yml (default: search standard locations)")
		envFile    = flag.String("env", "", "path to .env file (default: search standard locations)")
	)
	flag.Parse()

	cfg, err := config.Load(*configFile, *envFile)
	if err != nil {
		return err
	}

	log := logger.New(&cfg.Logging, cfg.Name)
	log.Info("Starting", map[string]interface{}{
		"version":     version.Get().Version,
		"environment": cfg.Environment,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		tp, err := observability.InitTracer(ctx, cfg.Tracing, cfg.Name, version.Get().Version, cfg.Environment)
		if err != nil {
			return fmt.Errorf("init tracer: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				log.Warn("Tracer shutdown failed", map[string]interface{}{"error": err.Error()})
			}
		}()
	}

	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("Database close failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	if err := db.MigrateUp(); err != nil {
		return err
	}

	// The signing key is validated here, before the first token operation.
	tokens, err := token.NewService(cfg.JWT)
	if err != nil {
		return err
	}

	users := user.NewGormRepository(db.GormDB)
	notes := note.NewGormRepository(db.GormDB)
	hasher := password.NewHasher(cfg.Password)

	authn := auth.NewAuthenticator(tokens, users, log)
	authHandler := auth.NewHandler(users, tokens, hasher, log)
	noteHandler := note.NewHandler(notes, log)

	srv := server.New(cfg.Server, log)
	registerRoutes(srv, cfg, log, db, authn, authHandler, noteHandler)

	if err := srv.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("Shutdown signal received")

	return srv.Stop(context.Background())
}
