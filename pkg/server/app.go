package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"KPIPulse/internal/domain/repository"
	"KPIPulse/pkg/config"
	xhttp "KPIPulse/pkg/http"
	applogger "KPIPulse/pkg/logger"
	pkgpg "KPIPulse/pkg/postgres"
)

// App encapsulates the application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	handler    xhttp.Handler
	pgClient   *pkgpg.Client
	alerts     repository.AlertPublisher
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies. alerts may be
// nil when alerting is disabled.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	pgClient *pkgpg.Client,
	alerts repository.AlertPublisher,
) *App {
	return &App{
		cfg:      cfg,
		logger:   l,
		handler:  handler,
		pgClient: pgClient,
		alerts:   alerts,
	}
}

// Run starts the HTTP server and blocks until interrupted.
func (a *App) Run() error {
	a.httpServer = xhttp.NewServer(a.handler, a.logger,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("server started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.Strings("metrics", a.cfg.ML.Metrics),
		applogger.Bool("alerts", a.cfg.Alerts.Enabled),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops the server and closes infrastructure
// clients.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if closer, ok := a.alerts.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			a.logger.Warn("alert publisher close error", applogger.Error(err))
		}
	}

	if a.pgClient != nil {
		if err := a.pgClient.Close(); err != nil {
			a.logger.Warn("postgres close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
