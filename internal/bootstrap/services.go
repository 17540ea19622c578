package bootstrap

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/bulkport/bulkport/config"
	"github.com/bulkport/bulkport/internal/data"
	"github.com/bulkport/bulkport/internal/exporter"
	"github.com/bulkport/bulkport/internal/importer"
	"github.com/bulkport/bulkport/internal/observability/statsd"
	"github.com/bulkport/bulkport/internal/service"
)

// ServiceContainer holds the constructed application services.
type ServiceContainer struct {
	Coordinator *importer.Coordinator
	Exporter    *exporter.Service
	JobStatus   *service.JobStatusService
	Reaper      *service.Reaper
	Metrics     *statsd.Client
}

// ServiceDeps groups the infrastructure a service build needs.
type ServiceDeps struct {
	Config *config.AppConfig
	DB     *sql.DB
	Redis  redis.UniversalClient
	Logger *slog.Logger
}

// BuildServices wires repositories and services from infrastructure.
func BuildServices(deps ServiceDeps) (*ServiceContainer, error) {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Observability.Metrics.IsEnabled(),
		Address: cfg.Observability.Metrics.StatsdAddress,
		Prefix:  cfg.Observability.Metrics.StatsdPrefix,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init statsd client: %w", err)
	}

	jobRepo := data.NewJobRepo(deps.DB, logger)
	userRepo := data.NewUserRepo(deps.DB, logger)
	articleRepo := data.NewArticleRepo(deps.DB, logger)
	commentRepo := data.NewCommentRepo(deps.DB, logger)

	coordinator := importer.NewCoordinator(importer.CoordinatorOptions{
		Jobs: jobRepo,
		Repos: importer.Repos{
			Users:    userRepo,
			Articles: articleRepo,
			Comments: commentRepo,
		},
		Config: importer.Config{
			BufferLimit:  cfg.Importer.BufferLimit,
			TempDir:      cfg.Importer.TempDir,
			FetchTimeout: cfg.Importer.FetchTimeout,
			MaxLineBytes: cfg.Importer.MaxLineBytes,
		},
		Logger:  logger,
		Metrics: metrics,
	})

	exportSvc := exporter.NewService(exporter.ServiceOptions{
		Repos: exporter.Repos{
			Users:    userRepo,
			Articles: articleRepo,
			Comments: commentRepo,
		},
		PageSize: cfg.Exporter.PageSize,
		Logger:   logger,
		Metrics:  metrics,
	})

	statusOpts := service.JobStatusOptions{Jobs: jobRepo, Logger: logger}
	if deps.Redis != nil {
		statusOpts.Cache = data.NewRedisJobStatusCache(deps.Redis, cfg.Redis.StatusTTL)
	}
	jobStatus := service.NewJobStatusService(statusOpts)

	var reaper *service.Reaper
	if cfg.Reaper.Enabled {
		reaper = service.NewReaper(service.ReaperOptions{
			Jobs:      jobRepo,
			Interval:  cfg.Reaper.Interval,
			MaxAge:    cfg.Reaper.MaxAge,
			BatchSize: cfg.Reaper.BatchSize,
			Logger:    logger,
			Metrics:   metrics,
		})
	}

	return &ServiceContainer{
		Coordinator: coordinator,
		Exporter:    exportSvc,
		JobStatus:   jobStatus,
		Reaper:      reaper,
		Metrics:     metrics,
	}, nil
}
