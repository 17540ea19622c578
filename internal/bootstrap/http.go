package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bulkport/bulkport/config"
	httpx "github.com/bulkport/bulkport/internal/http"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	Logger   *slog.Logger
}

// NewHTTPServer builds the HTTP server over the service container.
func NewHTTPServer(cfg HTTPServerConfig) *http.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	handler := httpx.NewRouter(httpx.RouterServices{
		Coordinator: cfg.Services.Coordinator,
		Exporter:    cfg.Services.Exporter,
		JobStatus:   cfg.Services.JobStatus,
		Logger:      logger,
	})

	return &http.Server{
		Addr:              cfg.Config.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Config.HTTP.ReadHeaderTimeout,
	}
}

// RunHTTPServer serves until ctx is canceled, then shuts down gracefully
// within the configured timeout.
func RunHTTPServer(ctx context.Context, server *http.Server, cfg *config.AppConfig) error {
	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
