// Package service holds pipeline-facing services built on the repository
// ports: job status lookup and the stale-job reaper.
package service

import (
	"context"
	"log/slog"

	"github.com/bulkport/bulkport/internal/core"
	"github.com/bulkport/bulkport/internal/domain/model"
)

// JobStatusOptions groups dependencies for JobStatusService.
type JobStatusOptions struct {
	Jobs core.JobRepository
	// Cache is optional; when nil every lookup goes to the primary store.
	Cache  core.JobStatusCache
	Logger *slog.Logger
}

// JobStatusService answers job status polls. Finished jobs are immutable, so
// they are cached on first read; queued and processing rows always come from
// the primary store.
type JobStatusService struct {
	jobs   core.JobRepository
	cache  core.JobStatusCache
	logger *slog.Logger
}

// NewJobStatusService constructs a JobStatusService.
func NewJobStatusService(opts JobStatusOptions) *JobStatusService {
	if opts.Jobs == nil {
		panic("job repository is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &JobStatusService{
		jobs:   opts.Jobs,
		cache:  opts.Cache,
		logger: opts.Logger.With("component", "job_status"),
	}
}

// GetStatus returns the job with the given row id. Cache faults never fail
// the lookup; the primary store is the source of truth.
func (s *JobStatusService) GetStatus(ctx context.Context, id string) (*model.Job, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err != nil {
			s.logger.WarnContext(ctx, "job status cache read failed", "job_id", id, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && job.Status == model.JobStatusFinished {
		if err := s.cache.Set(ctx, job); err != nil {
			s.logger.WarnContext(ctx, "job status cache write failed", "job_id", id, "error", err)
		}
	}
	return job, nil
}
