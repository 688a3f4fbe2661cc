package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/truthmarkets/marketd/internal/server"
	"github.com/truthmarkets/marketd/internal/server/handler"
	"github.com/truthmarkets/marketd/internal/server/ws"
)

// shutdownTimeout bounds how long in-flight requests may take during
// graceful shutdown.
const shutdownTimeout = 10 * time.Second

// ServeMode runs the full API server against the persistent backends.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "running in serve mode")
	return a.runServer(ctx, deps)
}

// DemoMode runs the same API server against in-process backends, so the
// whole system can be exercised without Postgres, Redis, or S3.
func (a *App) DemoMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "running in demo mode, state is not persisted")
	return a.runServer(ctx, deps)
}

// runServer starts the WebSocket hub (when a bus is wired) and the HTTP
// server, and blocks until the context is cancelled or a component fails.
func (a *App) runServer(ctx context.Context, deps *Dependencies) error {
	g, ctx := errgroup.WithContext(ctx)

	var hub *ws.Hub
	if deps.Bus != nil {
		hub = ws.NewHub(deps.Bus, a.logger)
		g.Go(func() error {
			if err := hub.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	handlers := server.Handlers{
		Health:  handler.NewHealthHandler(deps.Health),
		Markets: handler.NewMarketHandler(deps.Engine, a.logger),
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
	}, handlers, hub, a.logger)

	g.Go(srv.Start)

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("server shutdown failed", slog.String("error", err.Error()))
		}
		return ctx.Err()
	})

	return g.Wait()
}
