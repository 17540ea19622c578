// Package model defines the core data types shared by the bulkport import and
// export pipelines.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Resource identifies which record kind a job or export operates on.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type Resource string

// JobStatus represents the current status of an import job.
type JobStatus string

// Format identifies the wire format of an export.
type Format string

const (
	// ResourceUsers identifies bulk operations over user records.
	ResourceUsers Resource = "users"
	// ResourceArticles identifies bulk operations over article records.
	ResourceArticles Resource = "articles"
	// ResourceComments identifies bulk operations over comment records.
	ResourceComments Resource = "comments"

	// JobStatusQueued indicates a job was admitted but no worker has claimed it yet.
	JobStatusQueued JobStatus = "queued"
	// JobStatusProcessing indicates a worker is streaming the job's input.
	JobStatusProcessing JobStatus = "processing"
	// JobStatusFinished is the only terminal status. Partial failure is
	// reported through the error counter, never through the status.
	JobStatusFinished JobStatus = "finished"

	// FormatNDJSON is the only supported export format: one JSON object per line.
	FormatNDJSON Format = "ndjson"
)

// MaxJobKeyLen bounds the caller-supplied idempotency key.
const MaxJobKeyLen = 100

// UnmarshalText implements encoding.TextUnmarshaler for Resource to allow env
// and query-string parsing.
func (r *Resource) UnmarshalText(text []byte) error {
	v := Resource(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("invalid resource: %q", string(text))
	}
	*r = v
	return nil
}

// Valid returns true if the Resource is one of the three record kinds.
func (r Resource) Valid() bool {
	return r == ResourceUsers || r == ResourceArticles || r == ResourceComments
}

// Valid returns true if the JobStatus is valid.
func (s JobStatus) Valid() bool {
	return s == JobStatusQueued || s == JobStatusProcessing || s == JobStatusFinished
}

// Valid returns true if the Format is supported.
func (f Format) Valid() bool {
	return f == FormatNDJSON
}

// Job tracks one unit of bulk ingestion work, keyed by a caller-chosen
// idempotency key, with progress counters updated by the worker.
type Job struct {
	ID        string    `json:"id"         db:"id"`
	JobKey    string    `json:"job_key"    db:"job_key"`
	Resource  Resource  `json:"resource"   db:"resource"`
	Status    JobStatus `json:"status"     db:"status"`
	Success   int       `json:"success"    db:"success"`
	Errors    int       `json:"errors"     db:"errors"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreateJobRequest represents a request to admit a new import job.
type CreateJobRequest struct {
	JobKey   string    `json:"job_key"`
	Resource Resource  `json:"resource"`
	Status   JobStatus `json:"status"`
}

// Validate validates the CreateJobRequest fields.
func (r *CreateJobRequest) Validate() error {
	if strings.TrimSpace(r.JobKey) == "" {
		return errors.New("job key is required")
	}
	if len(r.JobKey) > MaxJobKeyLen {
		return fmt.Errorf("job key must be at most %d characters", MaxJobKeyLen)
	}
	if !r.Resource.Valid() {
		return fmt.Errorf("invalid resource: %q", r.Resource)
	}
	if !r.Status.Valid() {
		return fmt.Errorf("invalid job status: %q", r.Status)
	}
	return nil
}

// UpdateJobParams groups parameters for JobRepository.UpdateByKey to keep the
// parameter count small.
type UpdateJobParams struct {
	JobKey  string
	Status  JobStatus
	Success int
	Errors  int
}
