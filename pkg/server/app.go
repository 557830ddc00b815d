package server

import (
	"context"
	"errors"
	"fmt"

	"TrafficLight/pkg/config"
	xhttp "TrafficLight/pkg/http"
	applogger "TrafficLight/pkg/logger"
)

// Loop is the long-running poller owned by the app.
type Loop interface {
	Run(ctx context.Context) error
}

type closer struct {
	name string
	fn   func() error
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	loop       Loop
	httpServer *xhttp.Server
	closers    []closer
}

// New creates a new App instance.
func New(cfg *config.Config, logger *applogger.Logger, loop Loop) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
		loop:   loop,
	}
}

// SetHTTPServer attaches the optional status server.
func (a *App) SetHTTPServer(s *xhttp.Server) { a.httpServer = s }

// OnClose registers a resource released after the loop has stopped.
// Resources are closed in reverse registration order.
func (a *App) OnClose(name string, fn func() error) {
	if fn == nil {
		return
	}
	a.closers = append(a.closers, closer{name: name, fn: fn})
}

// Run starts the status server and the loop, and blocks until ctx is canceled
// or the status server fails to listen.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var serverErr <-chan error
	if a.httpServer != nil {
		if err := a.httpServer.Start(); err != nil {
			a.logger.Error("http server start error", applogger.Error(err))
			a.close()
			return err
		}
		serverErr = a.httpServer.Err()
	}

	loopDone := make(chan error, 1)
	go func() {
		loopDone <- a.loop.Run(ctx)
	}()
	a.logger.Info("reconciliation loop started",
		applogger.String("environment", a.cfg.Environment),
		applogger.String("indicator", a.cfg.Indicator.Driver),
		applogger.Duration("poll_interval", a.cfg.Loop.PollInterval),
	)

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
		cancel()
		runErr = <-loopDone
	case err := <-serverErr:
		cancel()
		<-loopDone
		runErr = fmt.Errorf("http server: %w", err)
	case err := <-loopDone:
		// the loop only returns before cancellation on unexpected errors
		if err != nil {
			runErr = fmt.Errorf("loop: %w", err)
		}
	}
	return errors.Join(runErr, a.shutdown())
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	a.logger.Info("shutting down")

	var errs []error
	if a.httpServer != nil {
		if err := a.httpServer.Stop(context.Background()); err != nil {
			a.logger.Error("http shutdown error", applogger.Error(err))
			errs = append(errs, err)
		}
	}
	a.close()

	a.logger.Info("shutdown complete")
	return errors.Join(errs...)
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.fn(); err != nil {
			a.logger.Warn("close error", applogger.String("resource", c.name), applogger.Error(err))
		}
	}
	a.closers = nil
}
