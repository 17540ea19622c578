package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/bulkport/bulkport/internal/core"
	"github.com/bulkport/bulkport/internal/observability/statsd"
)

const (
	defaultReapInterval  = time.Minute
	defaultReapMaxAge    = 30 * time.Minute
	defaultReapBatchSize = 100
)

// ReaperOptions groups dependencies and tuning for the Reaper.
type ReaperOptions struct {
	Jobs      core.JobRepository
	Interval  time.Duration
	MaxAge    time.Duration
	BatchSize int
	Logger    *slog.Logger
	Metrics   statsd.Sink
}

// Reaper force-finishes jobs abandoned in processing, typically after a crash
// or deploy killed the worker mid-stream. Without it a dead worker's job polls
// as processing forever.
type Reaper struct {
	jobs      core.JobRepository
	interval  time.Duration
	maxAge    time.Duration
	batchSize int
	logger    *slog.Logger
	metrics   statsd.Sink
}

// NewReaper constructs a Reaper.
func NewReaper(opts ReaperOptions) *Reaper {
	if opts.Jobs == nil {
		panic("job repository is required")
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultReapInterval
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = defaultReapMaxAge
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultReapBatchSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = statsd.Noop{}
	}
	return &Reaper{
		jobs:      opts.Jobs,
		interval:  opts.Interval,
		maxAge:    opts.MaxAge,
		batchSize: opts.BatchSize,
		logger:    opts.Logger.With("component", "reaper"),
		metrics:   opts.Metrics,
	}
}

// Run sweeps on the configured interval until ctx is canceled.
func (r *Reaper) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "reaper started",
		"interval", r.interval, "max_age", r.maxAge, "batch_size", r.batchSize)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "reaper stopped")
			return ctx.Err()
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep finishes one batch of stale processing jobs. Failures are logged and
// retried on the next tick.
func (r *Reaper) Sweep(ctx context.Context) {
	reaped, err := r.jobs.FinishStaleProcessing(ctx, r.maxAge, r.batchSize)
	if err != nil {
		r.logger.ErrorContext(ctx, "stale job sweep failed", "error", err)
		return
	}
	if reaped > 0 {
		r.logger.InfoContext(ctx, "finished stale jobs", "count", reaped)
		r.metrics.Count("reaper.jobs_finished", reaped, nil)
	}
}
