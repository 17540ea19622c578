// Package data implements the Postgres repositories behind the core port
// interfaces.
package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bulkport/bulkport/internal/data/pgxutil"
	"github.com/bulkport/bulkport/internal/domain/model"
	apperrors "github.com/bulkport/bulkport/internal/errors"
)

const jobColumns = `id, job_key, resource, status, success, errors, created_at, updated_at`

// JobRepo provides database operations for import job management.
type JobRepo struct {
	DB     *sql.DB
	logger *slog.Logger
}

// NewJobRepo creates a new JobRepo. A nil logger falls back to slog.Default.
func NewJobRepo(db *sql.DB, logger *slog.Logger) *JobRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobRepo{DB: db, logger: logger}
}

// Create inserts a new job row and returns it.
func (r *JobRepo) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	if req == nil {
		return nil, errors.New("create job request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid job")
	}

	var out model.Job
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO jobs (id, job_key, resource, status)
			VALUES ($1, $2, $3, $4)
			RETURNING `+jobColumns,
			uuid.NewString(), req.JobKey, req.Resource, req.Status)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Job])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("create job: %w", err))
	}

	r.logger.InfoContext(ctx, "job created", "job_key", out.JobKey, "resource", out.Resource)
	return &out, nil
}

// CreateIfAbsent admits a job for the request's job key. The insert relies on
// the unique constraint on job_key, so concurrent duplicate submissions
// converge on a single row; losers observe the winner's row with created=false.
func (r *JobRepo) CreateIfAbsent(ctx context.Context, req *model.CreateJobRequest) (*model.Job, bool, error) {
	if req == nil {
		return nil, false, errors.New("create job request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, false, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid job")
	}

	var out model.Job
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO jobs (id, job_key, resource, status)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (job_key) DO NOTHING
			RETURNING `+jobColumns,
			uuid.NewString(), req.JobKey, req.Resource, req.Status)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Job])
		return err
	})
	if err == nil {
		r.logger.InfoContext(ctx, "job admitted", "job_key", out.JobKey, "resource", out.Resource)
		return &out, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, apperrors.MapDBError(fmt.Errorf("admit job: %w", err))
	}

	// Conflict path: another submission holds the key.
	existing, ferr := r.FindByKey(ctx, req.JobKey)
	if ferr != nil {
		return nil, false, ferr
	}
	if existing == nil {
		return nil, false, apperrors.Internal("job vanished between conflicting insert and lookup")
	}
	return existing, false, nil
}

// GetByID retrieves a job by its row id.
func (r *JobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	var out model.Job
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Job])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFoundf("job %s not found", id)
		}
		return nil, apperrors.MapDBError(fmt.Errorf("get job by id: %w", err))
	}
	return &out, nil
}

// FindByKey retrieves a job by its idempotency key, returning nil (no error)
// when no job was admitted for that key.
func (r *JobRepo) FindByKey(ctx context.Context, jobKey string) (*model.Job, error) {
	var out model.Job
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+jobColumns+` FROM jobs WHERE job_key = $1`, jobKey)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Job])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.MapDBError(fmt.Errorf("find job by key: %w", err))
	}
	return &out, nil
}

// UpdateByKey sets the status and counters for the job with the given key.
// A missing row is logged as a warning and is not an error.
func (r *JobRepo) UpdateByKey(ctx context.Context, params model.UpdateJobParams) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE jobs
		SET status = $2, success = $3, errors = $4, updated_at = now()
		WHERE job_key = $1`,
		params.JobKey, params.Status, params.Success, params.Errors)
	if err != nil {
		return apperrors.MapDBError(fmt.Errorf("update job by key: %w", err))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update job rows affected: %w", err)
	}
	if affected == 0 {
		r.logger.WarnContext(ctx, "no job found to update", "job_key", params.JobKey)
		return nil
	}

	r.logger.InfoContext(ctx, "job updated",
		"job_key", params.JobKey,
		"status", params.Status,
		"success", params.Success,
		"errors", params.Errors)
	return nil
}

// FinishStaleProcessing force-finishes jobs stuck in processing longer than
// maxAge, leaving their last reported counters untouched. A job lands here
// when its worker died without reaching finish; there is no retry, the row is
// closed out so callers stop polling a dead job.
func (r *JobRepo) FinishStaleProcessing(ctx context.Context, maxAge time.Duration, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	var finished int64
	err := pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			UPDATE jobs
			SET status = $1, updated_at = now()
			WHERE id IN (
				SELECT id FROM jobs
				WHERE status = $2 AND updated_at < now() - $3::interval
				ORDER BY updated_at
				LIMIT $4
				FOR UPDATE SKIP LOCKED
			)
			RETURNING job_key`,
			model.JobStatusFinished, model.JobStatusProcessing,
			fmt.Sprintf("%f seconds", maxAge.Seconds()), batchSize)
		if err != nil {
			return err
		}
		defer rows.Close()

		keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return err
		}
		for _, key := range keys {
			r.logger.WarnContext(ctx, "force-finished stale processing job", "job_key", key, "max_age", maxAge)
		}
		finished = int64(len(keys))
		return nil
	})
	if err != nil {
		return 0, apperrors.MapDBError(fmt.Errorf("finish stale processing jobs: %w", err))
	}
	return finished, nil
}
