// Package core defines the repository port interfaces between the pipeline
// services and the data layer.
package core

import (
	"context"
	"time"

	"github.com/bulkport/bulkport/internal/domain/model"
)

// JobRepository defines the interface for import job persistence.
type JobRepository interface {
	// Create inserts a new job row and returns it.
	Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error)
	// CreateIfAbsent atomically admits a job for the request's job key. When
	// the key is already admitted the existing row is returned and the bool
	// is false. Admission races converge on a single row.
	CreateIfAbsent(ctx context.Context, req *model.CreateJobRequest) (*model.Job, bool, error)
	// GetByID returns the job with the given row id, or a not_found error.
	GetByID(ctx context.Context, id string) (*model.Job, error)
	// FindByKey returns the job for the given job key, or nil when absent.
	FindByKey(ctx context.Context, jobKey string) (*model.Job, error)
	// UpdateByKey sets status and counters for the job with the given key.
	// A missing row is a logged warning, not an error.
	UpdateByKey(ctx context.Context, params model.UpdateJobParams) error
	// FinishStaleProcessing force-finishes jobs stuck in processing longer
	// than maxAge, up to batchSize rows, and returns how many were finished.
	FinishStaleProcessing(ctx context.Context, maxAge time.Duration, batchSize int) (int64, error)
}

// UserRepository defines bulk persistence and paged scans for user records.
type UserRepository interface {
	// BulkUpsert inserts the batch, updating rows in place on email
	// conflicts, and returns the number of rows written.
	BulkUpsert(ctx context.Context, users []model.User) (int, error)
	// ListPage returns one ordered page of users for export.
	ListPage(ctx context.Context, limit, offset int) ([]model.User, error)
}

// ArticleRepository defines bulk persistence and paged scans for article records.
type ArticleRepository interface {
	// BulkUpsert inserts the batch, updating rows in place on slug
	// conflicts, and returns the number of rows written.
	BulkUpsert(ctx context.Context, articles []model.Article) (int, error)
	// ListPage returns one ordered page of articles for export.
	ListPage(ctx context.Context, limit, offset int) ([]model.Article, error)
}

// CommentRepository defines bulk persistence and paged scans for comment records.
type CommentRepository interface {
	// BulkUpsert inserts the batch, ignoring rows whose id already exists,
	// and returns the number of rows written.
	BulkUpsert(ctx context.Context, comments []model.Comment) (int, error)
	// ListPage returns one ordered page of comments for export.
	ListPage(ctx context.Context, limit, offset int) ([]model.Comment, error)
}

// JobStatusCache caches terminal job rows to spare the primary store on
// repeated status polls. Implementations must only ever be handed finished
// jobs; queued/processing rows are not safe to cache.
type JobStatusCache interface {
	// Get returns the cached job, or nil on a miss.
	Get(ctx context.Context, id string) (*model.Job, error)
	// Set stores a finished job under its row id.
	Set(ctx context.Context, job *model.Job) error
}
