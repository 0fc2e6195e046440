package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/platform/gcsimage"
	"github.com/phrazzld/taskboard-api/internal/platform/postgres"
	"github.com/phrazzld/taskboard-api/internal/platform/rediscache"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/phrazzld/taskboard-api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	userStore         store.UserStore
	taskStore         store.TaskStore
	notificationStore store.NotificationStore

	// Platform clients that need explicit shutdown
	imageStore       *gcsimage.Store
	leaderboardCache *rediscache.LeaderboardCache

	// Service interfaces
	jwtService          auth.JWTService
	passwordVerifier    auth.PasswordVerifier
	userService         service.UserService
	taskService         service.TaskService
	leaderboardService  service.LeaderboardService
	notificationService service.NotificationService

	// Event system
	eventEmitter events.EventEmitter
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Initialize JWT service
	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	// Initialize password verifier
	app.passwordVerifier = auth.NewBcryptVerifier()

	// Initialize stores
	app.userStore = postgres.NewPostgresUserStore(db, bcrypt.DefaultCost, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.notificationStore = postgres.NewPostgresNotificationStore(db, logger)

	// Initialize the image attachment store
	app.imageStore, err = gcsimage.New(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize image store: %w", err)
	}
	logger.Info("Image store initialized", "bucket", cfg.Storage.Bucket)

	// Initialize the leaderboard cache when Redis is configured.
	// The leaderboard service tolerates a nil cache, so a missing
	// address just means every request hits the database.
	var leaderboardCache service.LeaderboardCache
	if cfg.Redis.Addr != "" {
		app.leaderboardCache, err = rediscache.New(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize leaderboard cache: %w", err)
		}
		leaderboardCache = app.leaderboardCache
		logger.Info("Leaderboard cache initialized",
			"addr", cfg.Redis.Addr,
			"ttl_seconds", cfg.Redis.LeaderboardTTLSeconds)
	} else {
		logger.Info("Leaderboard cache disabled, no Redis address configured")
	}

	// Initialize event emitter
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)

	// Initialize user service
	app.userService = service.NewUserService(app.userStore, app.passwordVerifier, db, logger)

	// Initialize task service
	app.taskService, err = service.NewTaskService(
		db,
		app.taskStore,
		app.userStore,
		app.imageStore,
		app.eventEmitter,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	// Initialize leaderboard service
	app.leaderboardService = service.NewLeaderboardService(app.userStore, leaderboardCache, logger)

	// Initialize notification service and subscribe it to task events
	app.notificationService = service.NewNotificationService(app.notificationStore, logger)
	if emitter, ok := app.eventEmitter.(*events.InMemoryEventEmitter); ok {
		emitter.RegisterHandler(app.notificationService)
	} else {
		return nil, fmt.Errorf("unexpected event emitter type, cannot register notification handler")
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// tokenLifetime returns the configured access token lifetime as a duration.
func (app *application) tokenLifetime() time.Duration {
	return time.Duration(app.config.Auth.TokenLifetimeMinutes) * time.Minute
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.leaderboardCache != nil {
		if err := app.leaderboardCache.Close(); err != nil {
			app.logger.Error("Error closing leaderboard cache", "error", err)
		}
	}

	if app.imageStore != nil {
		if err := app.imageStore.Close(); err != nil {
			app.logger.Error("Error closing image store", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
