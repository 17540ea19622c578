// Package httpx wires the bulkport services into a chi router.
package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bulkport/bulkport/internal/exporter"
	"github.com/bulkport/bulkport/internal/importer"
	"github.com/bulkport/bulkport/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Coordinator *importer.Coordinator
	Exporter    *exporter.Service
	JobStatus   *service.JobStatusService
	Logger      *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	importHandlers := &ImportHandlers{Coordinator: services.Coordinator, Status: services.JobStatus}
	exportHandlers := &ExportHandlers{Exporter: services.Exporter}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/import", importHandlers.Submit)
		r.Get("/import/{job_id}", importHandlers.GetJob)
		r.Get("/exports", exportHandlers.Export)
	})
	r.Get("/healthz", healthHandler)
	r.Head("/healthz", healthHandler)

	return r
}

// requestLogger logs one line per request with status and latency.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.InfoContext(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
