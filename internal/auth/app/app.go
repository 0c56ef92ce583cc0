package app

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/tether/internal/auth/http"
	"github.com/aussiebroadwan/tether/internal/auth/service"
	"github.com/aussiebroadwan/tether/internal/auth/store"
	"github.com/aussiebroadwan/tether/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/tether/pkg/cryptox"
	"github.com/aussiebroadwan/tether/pkg/jwtx"
	"github.com/aussiebroadwan/tether/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"

	signingKeyID = "tether-ed25519-1"
)

// Application encapsulates the device authority service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	signer   jwtx.Signer
	verifier jwtx.Verifier

	authorityService    *service.AuthorityService
	accountService      *service.AccountService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "tether",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if app.cfg.DeviceSalt == "" {
		salt, err := loadOrGenerateSalt(app.cfg.DeviceSaltFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load device salt: %w", err)
		}
		app.cfg.DeviceSalt = salt
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initSigningKeys(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("tether service starting", "port", app.cfg.Port, "version", BuildVersion)

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
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down tether service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("tether service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore("file:" + app.cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initSigningKeys loads the Ed25519 signing key, generating one on first
// run, and builds the matching verifier.
func (app *Application) initSigningKeys() error {
	pemKey, err := jwtx.LoadOrGenerateKeyFile(app.cfg.SigningKeyFile)
	if err != nil {
		return fmt.Errorf("failed to load signing key: %w", err)
	}

	signer, err := jwtx.NewSignerEdDSA(signingKeyID, pemKey)
	if err != nil {
		return fmt.Errorf("failed to initialize signer: %w", err)
	}

	app.signer = signer
	app.verifier = jwtx.NewVerifierEdDSA(signingKeyID, signer.PublicKey(), app.cfg.Issuer)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.authorityService = &service.AuthorityService{
		Signer:          app.signer,
		Verifier:        app.verifier,
		Store:           app.db,
		Issuer:          app.cfg.Issuer,
		DeviceSalt:      app.cfg.DeviceSalt,
		SessionTTL:      app.cfg.SessionTTL,
		FreshnessWindow: app.cfg.FreshnessWindow,
	}

	app.accountService = &service.AccountService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.StaleRetention,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.signer,
		BuildVersion,
		app.db,
		app.logger,
	)

	// Wire services to router
	router.AuthorityService = app.authorityService
	router.AccountService = app.accountService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// loadOrGenerateSalt reads the device salt file, creating it with fresh
// random material on first run.
func loadOrGenerateSalt(path string) (string, error) {
	if data, err := os.ReadFile(path); err == nil && len(data) > 0 {
		return string(data), nil
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	salt := base64.RawURLEncoding.EncodeToString(raw)

	if err := os.WriteFile(path, []byte(salt), 0600); err != nil {
		return "", err
	}
	return salt, nil
}
