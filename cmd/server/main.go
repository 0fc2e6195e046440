// Package main implements the entry point for the Taskboard API server,
// which handles team task management with role-based access, image
// attachments, completion leaderboards, and in-app notifications.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
)

// main is the entry point for the taskboard-api server.
// It initializes configuration, logging, the database connection, and
// all application dependencies, then starts the HTTP server.
func main() {
	ctx := context.Background()

	if err := run(ctx); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

// run performs the full startup sequence. Split from main so errors can
// be returned instead of calling os.Exit mid-initialization.
func run(ctx context.Context) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Set up structured logging using the configured log level
	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	// Establish the database connection
	db, err := setupDatabase(ctx, cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	// Apply pending schema migrations before serving traffic
	if err := runMigrations(db, appLogger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Build the application with all dependencies wired
	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
