package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/idkit/internal/stub/http"
	"github.com/aussiebroadwan/idkit/internal/stub/service"
	"github.com/aussiebroadwan/idkit/internal/stub/store"
	"github.com/aussiebroadwan/idkit/internal/stub/store/drivers/sqlite"
	"github.com/aussiebroadwan/idkit/pkg/cryptox"
	"github.com/aussiebroadwan/idkit/pkg/slogx"
)

// BuildVersion is overridden at build time via ldflags.
var BuildVersion = "v0.1.0"

// Application is the stub identity service with its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db  store.Store
	box *cryptox.SecretBox

	accountService       *service.AccountService
	apiKeyService        *service.APIKeyService
	loginService         *service.LoginService
	passwordResetService *service.PasswordResetService
	bootstrapService     *service.BootstrapService
	ssoService           *service.SSOService
	housekeepingService  *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "idstub",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(cfg.PepperFile)

	box, ephemeral, err := cryptox.LoadSecretBox(cfg.MasterKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load master key: %w", err)
	}
	if ephemeral {
		app.logger.Warn("no master key configured, api key secrets will not survive a restart")
	}
	app.box = box

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler exposes the router, mainly for in-process tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("idstub starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			_ = app.db.Close()
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

// Shutdown drains in-flight requests then releases the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down idstub...")

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

	app.logger.Info("idstub stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
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

func (app *Application) initServices() error {
	app.accountService = &service.AccountService{Store: app.db}
	app.apiKeyService = &service.APIKeyService{Store: app.db, Box: app.box}
	app.loginService = &service.LoginService{Store: app.db}
	app.passwordResetService = &service.PasswordResetService{
		Store: app.db,
		TTL:   app.cfg.ResetTokenTTL,
	}
	app.bootstrapService = &service.BootstrapService{
		Store: app.db,
		Token: app.cfg.BootstrapToken,
	}

	sso, err := service.NewSSOService(app.cfg.Tenant())
	if err != nil {
		return fmt.Errorf("failed to initialize sso: %w", err)
	}
	app.ssoService = sso

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.cfg.Tenant(), BuildVersion, app.db, app.logger)
	router.PublicURL = app.cfg.PublicURL

	router.AccountService = app.accountService
	router.APIKeyService = app.apiKeyService
	router.LoginService = app.loginService
	router.PasswordResetService = app.passwordResetService
	router.BootstrapService = app.bootstrapService
	router.SSOService = app.ssoService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
