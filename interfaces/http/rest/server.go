package rest

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"boardedit/infrastructure/di"
)

// Serve runs the HTTP API until ctx is cancelled, then shuts down
// gracefully within the configured timeout.
func Serve(ctx context.Context, c *di.Container) error {
	cfg := c.Config
	router := NewRouter(cfg, c.CommandBus, c.QueryBus, c.Errors, c.Metrics, c.Logger)

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("Starting server",
			zap.String("address", cfg.Server.Address),
			zap.String("environment", string(cfg.Environment)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
