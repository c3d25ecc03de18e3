// Package app assembles the chatbot process and runs its servers.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/config"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/logger"
	httpserver "github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/transport/http"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/transport/rpc"
)

const shutdownTimeout = 10 * time.Second

// App holds the servers of one process.
type App struct {
	cfg      *config.Config
	log      *logger.Logger
	external *httpserver.ExternalServer
	internal *httpserver.InternalServer
	rpc      *rpc.Server
}

// NewApp creates the application. rpcServer may be nil.
func NewApp(cfg *config.Config, log *logger.Logger, external *httpserver.ExternalServer, internal *httpserver.InternalServer, rpcServer *rpc.Server) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		external: external,
		internal: internal,
		rpc:      rpcServer,
	}
}

// Logger returns the process logger.
func (a *App) Logger() *logger.Logger {
	return a.log
}

// Run starts every server and blocks until ctx is done or one of them fails,
// then shuts all of them down.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 3)

	// Start external server
	go func() {
		addr := fmt.Sprintf(":%d", a.cfg.HTTPPort)
		if err := a.external.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("external server: %w", err)
		}
	}()

	// Start internal server
	go func() {
		addr := fmt.Sprintf(":%d", a.cfg.InternalHTTPPort)
		if err := a.internal.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("internal server: %w", err)
		}
	}()

	if a.rpc != nil {
		go func() {
			if err := a.rpc.Start(a.cfg.RPCAddr); err != nil {
				errCh <- fmt.Errorf("rpc server: %w", err)
			}
		}()
		a.log.Info().Str("addr", a.cfg.RPCAddr).Msg("JSON-RPC listener started")
	}

	a.log.LogServerStart(a.cfg.HTTPPort, a.cfg.DatabaseURL)
	a.log.Info().Int("port", a.cfg.InternalHTTPPort).Msg("internal API started")

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		a.log.Error().Err(runErr).Msg("server failed")
	}

	if err := a.Shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// Shutdown stops all servers within the shutdown timeout.
func (a *App) Shutdown() error {
	a.log.LogServerShutdown()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.external.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown external server: %w", err))
	}
	if err := a.internal.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown internal server: %w", err))
	}
	if a.rpc != nil {
		if err := a.rpc.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown rpc server: %w", err))
		}
	}
	return errors.Join(errs...)
}
