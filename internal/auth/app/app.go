package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	httpapi "github.com/ggjcommunity/auth/internal/auth/http"
	"github.com/ggjcommunity/auth/internal/auth/metrics"
	"github.com/ggjcommunity/auth/internal/auth/service"
	"github.com/ggjcommunity/auth/internal/auth/store"
	"github.com/ggjcommunity/auth/internal/auth/store/drivers/redis"
	"github.com/ggjcommunity/auth/internal/auth/store/drivers/sqlite"
	"github.com/ggjcommunity/auth/pkg/jwtx"
	"github.com/ggjcommunity/auth/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Metrics

	// Core dependencies
	db     store.Store
	tokens *jwtx.Service

	// Services
	authService          *service.AuthService
	impersonationService *service.ImpersonationService
	exchangeService      *service.ExchangeService
	bootstrapService     *service.BootstrapService
	housekeepingService  *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "ggj-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: metrics.New(),
	}

	tokens, err := jwtx.NewService(cfg.JWTSecret, jwtx.WithDefaultLifetime(cfg.TokenLifetime))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	app.tokens = tokens

	ctx := slogx.WithContext(context.Background(), app.logger)
	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}

	app.initServices()

	if _, err := app.bootstrapService.EnsureAdmin(ctx, cfg.BootstrapAdminEmail); err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to bootstrap admin: %w", err)
	}

	app.initHTTP()

	return app, nil
}

// Handler is the fully wired HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		app.housekeepingService.Stop()
		_ = app.db.Close()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

func databaseDSN(file string) string {
	if strings.Contains(file, ":memory:") || strings.HasPrefix(file, "file:") {
		return file
	}
	return fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", file)
}

// initDatabase opens SQLite, applies migrations and, when configured, moves
// exchange codes to Redis.
func (app *Application) initDatabase(ctx context.Context) error {
	db, err := sqlite.NewStore(databaseDSN(app.cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}
	app.logger.Info("database migrations applied successfully")

	app.db = db
	if app.cfg.RedisAddr == "" {
		return nil
	}

	codes, err := redis.Open(ctx, app.cfg.RedisAddr)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	app.db = store.WithExchangeCodes(db, codes)
	app.logger.Info("exchange codes stored in redis")
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:         app.db,
		Tokens:        app.tokens,
		Metrics:       app.metrics,
		TokenLifetime: app.cfg.TokenLifetime,
	}
	app.impersonationService = &service.ImpersonationService{
		Store:           app.db,
		Tokens:          app.tokens,
		Metrics:         app.metrics,
		DefaultLifetime: app.cfg.ImpersonationLifetime,
		MaxLifetime:     app.cfg.ImpersonationMaxLifetime,
	}
	app.exchangeService = &service.ExchangeService{
		Store:         app.db,
		Tokens:        app.tokens,
		Metrics:       app.metrics,
		TTL:           app.cfg.ExchangeCodeTTL,
		TokenLifetime: app.cfg.TokenLifetime,
	}
	app.bootstrapService = &service.BootstrapService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.metrics,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.tokens,
		BuildVersion,
		app.db,
		app.logger,
		app.metrics,
	)

	// Wire services to router
	router.AuthService = app.authService
	router.ImpersonationService = app.impersonationService
	router.ExchangeService = app.exchangeService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
