package demo

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

	"github.com/aussiebroadwan/idkit/pkg/nonce"
	"github.com/aussiebroadwan/idkit/pkg/slogx"
)

var BuildVersion = "v0.1.0"

// App runs the demo server.
type App struct {
	cfg            Config
	logger         *slog.Logger
	server         *http.Server
	closeNonces    func()
	sessionJanitor *nonce.Janitor
}

func New(ctx context.Context, cfg Config) (*App, error) {
	logger := slogx.New(slogx.Config{
		Service: "idkit-demo",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})

	nonces, closeNonces, err := openNonceStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	srv, err := NewServer(ctx, cfg, logger, nonces)
	if err != nil {
		closeNonces()
		return nil, err
	}

	sessionJanitor := nonce.NewJanitor(srv.Sessions(), logger, 0)
	sessionJanitor.Start()

	return &App{
		cfg:            cfg,
		logger:         logger,
		closeNonces:    closeNonces,
		sessionJanitor: sessionJanitor,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           srv,
			ReadHeaderTimeout: 3 * time.Second,
		},
	}, nil
}

// Run serves until SIGINT or SIGTERM.
func (a *App) Run() error {
	a.logger.Info("demo starting", "port", a.cfg.Port, "nonce_store", a.cfg.NonceStore)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		a.release()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-shutdown:
		a.logger.Info("shutdown signal received", "signal", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownGracePeriod)
	defer cancel()

	err := a.server.Shutdown(ctx)
	a.release()
	if err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	a.logger.Info("demo stopped")
	return nil
}

func (a *App) release() {
	a.sessionJanitor.Stop()
	a.closeNonces()
}
