package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/bulkport/bulkport/internal/bootstrap"
	"github.com/bulkport/bulkport/internal/migrate"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{DBConfig: cfg.Postgres, Logger: logger})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close database failed", "error", cerr)
		}
	}()

	if cfg.Postgres.RunMigrationsOnStart {
		if err := migrate.Run(ctx, db); err != nil {
			return err
		}
		logger.InfoContext(ctx, "migrations applied")
	}

	deps := bootstrap.ServiceDeps{Config: &cfg, DB: db, Logger: logger}
	if cfg.Redis.Enabled {
		redisClient, rerr := bootstrap.ConnectRedis(bootstrap.DatabaseConfig{RedisConfig: cfg.Redis, Logger: logger})
		if rerr != nil {
			return rerr
		}
		defer func() {
			if cerr := redisClient.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close redis failed", "error", cerr)
			}
		}()
		deps.Redis = redisClient
	}

	services, err := bootstrap.BuildServices(deps)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := services.Metrics.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close statsd failed", "error", cerr)
		}
	}()

	server := bootstrap.NewHTTPServer(bootstrap.HTTPServerConfig{
		Config:   &cfg,
		Services: services,
		Logger:   logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.InfoContext(gctx, "starting HTTP server", "addr", cfg.HTTP.Addr)
		return bootstrap.RunHTTPServer(gctx, server, &cfg)
	})
	if services.Reaper != nil {
		g.Go(func() error {
			err := services.Reaper.Run(gctx)
			if err != nil && gctx.Err() != nil {
				// Normal shutdown path.
				return nil
			}
			return err
		})
	}

	err = g.Wait()

	// Workers are not cancelable; let in-flight imports finish before exit.
	logger.InfoContext(ctx, "waiting for in-flight imports")
	services.Coordinator.Wait()
	logger.InfoContext(ctx, "shutdown complete")
	return err
}
