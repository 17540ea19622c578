package importer

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/bulkport/bulkport/internal/core"
	"github.com/bulkport/bulkport/internal/domain/model"
	apperrors "github.com/bulkport/bulkport/internal/errors"
	"github.com/bulkport/bulkport/internal/observability/statsd"
)

const (
	// defaultMaxLineBytes bounds a single input line.
	defaultMaxLineBytes = 1024 * 1024
	defaultFetchTimeout = 30 * time.Second
)

// Config holds tunables for the ingestion coordinator.
type Config struct {
	// BufferLimit is the flush threshold for accumulated records.
	BufferLimit int
	// TempDir is where acquired payloads are staged. Empty means os.TempDir.
	TempDir string
	// FetchTimeout bounds remote source downloads.
	FetchTimeout time.Duration
	// MaxLineBytes bounds a single input line.
	MaxLineBytes int
}

// Repos groups the record repositories the workers flush into.
type Repos struct {
	Users    core.UserRepository
	Articles core.ArticleRepository
	Comments core.CommentRepository
}

// CoordinatorOptions groups dependencies for the Coordinator.
type CoordinatorOptions struct {
	Jobs    core.JobRepository
	Repos   Repos
	Config  Config
	Logger  *slog.Logger
	Metrics statsd.Sink
	// HTTPClient fetches URL sources; defaults to a client with FetchTimeout.
	HTTPClient *http.Client
	// Now is the clock used for comment timestamp defaults; defaults to time.Now.
	Now func() time.Time
}

// Coordinator admits import jobs, stages their payloads, and dispatches one
// isolated worker goroutine per job. Submission returns as soon as the worker
// is dispatched; workers share nothing but the pooled storage connection.
type Coordinator struct {
	jobs    core.JobRepository
	repos   Repos
	cfg     Config
	logger  *slog.Logger
	metrics statsd.Sink
	http    *http.Client
	now     func() time.Time

	wg sync.WaitGroup
}

// NewCoordinator constructs a Coordinator.
func NewCoordinator(opts CoordinatorOptions) *Coordinator {
	if opts.Jobs == nil {
		panic("JobRepository is required")
	}
	if opts.Repos.Users == nil || opts.Repos.Articles == nil || opts.Repos.Comments == nil {
		panic("record repositories are required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = statsd.Noop{}
	}
	if opts.Config.FetchTimeout <= 0 {
		opts.Config.FetchTimeout = defaultFetchTimeout
	}
	if opts.Config.MaxLineBytes <= 0 {
		opts.Config.MaxLineBytes = defaultMaxLineBytes
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Config.FetchTimeout}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Coordinator{
		jobs:    opts.Jobs,
		repos:   opts.Repos,
		cfg:     opts.Config,
		logger:  opts.Logger.With("component", "importer"),
		metrics: opts.Metrics,
		http:    opts.HTTPClient,
		now:     opts.Now,
	}
}

// SubmitRequest describes one import submission. Exactly one of Data and
// SourceURL must be set; when both are present the inline payload wins.
type SubmitRequest struct {
	Resource  model.Resource
	JobKey    string
	Data      []byte
	SourceURL string
}

// SubmitResult is the coordinator's answer to a submission.
type SubmitResult struct {
	// JobID is the public id handed to the caller: the job key for a fresh
	// admission, the stored row id for a replayed one.
	JobID  string
	Status model.JobStatus
	// AlreadyExists reports that the idempotency key was admitted before and
	// no new worker was dispatched.
	AlreadyExists bool
}

// Submit admits an import job for the supplied idempotency key and dispatches
// a worker. Replaying an already-admitted key returns the existing job's
// id and status without dispatching anything. A URL source is fetched
// synchronously before admission; a fetch failure is fatal to the submission
// and leaves no job behind.
func (c *Coordinator) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if !req.Resource.Valid() {
		return nil, apperrors.Validationf("invalid resource: %q", req.Resource)
	}
	if req.JobKey == "" {
		return nil, apperrors.ValidationField("x-key", "idempotency key is required")
	}
	if len(req.Data) == 0 && req.SourceURL == "" {
		return nil, apperrors.Validation("either a file or a file_url is required")
	}

	// Fast path: replay of an admitted key. The authoritative check is the
	// conflict-aware insert below.
	if existing, err := c.jobs.FindByKey(ctx, req.JobKey); err != nil {
		return nil, err
	} else if existing != nil {
		c.logger.InfoContext(ctx, "job already admitted", "job_key", req.JobKey)
		return &SubmitResult{JobID: existing.ID, Status: existing.Status, AlreadyExists: true}, nil
	}

	payload := req.Data
	if len(payload) == 0 {
		fetched, err := c.fetchSource(ctx, req.SourceURL)
		if err != nil {
			return nil, err
		}
		payload = fetched
	}

	path, err := c.stagePayload(payload)
	if err != nil {
		return nil, err
	}

	job, created, err := c.jobs.CreateIfAbsent(ctx, &model.CreateJobRequest{
		JobKey:   req.JobKey,
		Resource: req.Resource,
		Status:   model.JobStatusQueued,
	})
	if err != nil {
		removeQuietly(path)
		return nil, err
	}
	if !created {
		// Lost an admission race; the winner's worker owns the import.
		removeQuietly(path)
		c.logger.InfoContext(ctx, "job already admitted", "job_key", req.JobKey)
		return &SubmitResult{JobID: job.ID, Status: job.Status, AlreadyExists: true}, nil
	}

	c.wg.Add(1)
	go c.runWorker(context.WithoutCancel(ctx), workerParams{
		path:     path,
		jobKey:   req.JobKey,
		resource: req.Resource,
	})

	c.logger.InfoContext(ctx, "import job dispatched", "job_key", req.JobKey, "resource", req.Resource)
	return &SubmitResult{JobID: req.JobKey, Status: model.JobStatusQueued}, nil
}

// Wait blocks until all dispatched workers have finished. Used on shutdown;
// in-flight imports cannot be aborted.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// fetchSource downloads the full payload from a remote URL.
func (c *Coordinator) fetchSource(ctx context.Context, url string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid file_url")
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "failed to download import file")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Validationf("failed to download import file: status %d", resp.StatusCode)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "failed to read import file")
	}
	return payload, nil
}

// stagePayload persists the payload to transient storage for the worker.
func (c *Coordinator) stagePayload(payload []byte) (string, error) {
	f, err := os.CreateTemp(c.cfg.TempDir, "bulkport-import-*")
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "stage import payload")
	}
	if _, err := f.Write(payload); err != nil {
		_ = f.Close()
		removeQuietly(f.Name())
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "stage import payload")
	}
	if err := f.Close(); err != nil {
		removeQuietly(f.Name())
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "stage import payload")
	}
	return f.Name(), nil
}

type workerParams struct {
	path     string
	jobKey   string
	resource model.Resource
}

// runWorker drives one import to completion: claim processing, stream the
// staged file line by line through parse and buffer, then finish the job with
// final counters. The job always ends finished; failures only move counters.
func (c *Coordinator) runWorker(ctx context.Context, params workerParams) {
	defer c.wg.Done()
	defer removeQuietly(params.path)

	logger := c.logger.With("job_key", params.jobKey, "resource", params.resource)
	started := c.now()

	if err := c.jobs.UpdateByKey(ctx, model.UpdateJobParams{
		JobKey: params.jobKey,
		Status: model.JobStatusProcessing,
	}); err != nil {
		logger.ErrorContext(ctx, "failed to mark job processing", "error", err)
	}

	var success, errorCount, lines int
	switch params.resource {
	case model.ResourceUsers:
		success, errorCount, lines = runImport(ctx, c.importSetup(params), c.userBuffer(logger),
			func(line []byte) (model.User, error) { return model.ParseUserLine(string(line)) })
	case model.ResourceArticles:
		success, errorCount, lines = runImport(ctx, c.importSetup(params), c.articleBuffer(logger),
			model.ParseArticleLine)
	case model.ResourceComments:
		success, errorCount, lines = runImport(ctx, c.importSetup(params), c.commentBuffer(logger),
			func(line []byte) (model.Comment, error) { return model.ParseCommentLine(line, c.now) })
	}

	if err := c.jobs.UpdateByKey(ctx, model.UpdateJobParams{
		JobKey:  params.jobKey,
		Status:  model.JobStatusFinished,
		Success: success,
		Errors:  errorCount,
	}); err != nil {
		logger.ErrorContext(ctx, "failed to finish job", "error", err)
		return
	}

	c.metrics.Count("import.lines", int64(lines), map[string]string{"resource": string(params.resource)})
	c.metrics.Timing("import.duration", c.now().Sub(started),
		map[string]string{"resource": string(params.resource)})
	logger.InfoContext(ctx, "import finished", "lines", lines, "success", success, "errors", errorCount)
}

// importSetup bundles the per-run file parameters for runImport.
type importSetup struct {
	path         string
	maxLineBytes int
	logger       *slog.Logger
}

func (c *Coordinator) importSetup(params workerParams) importSetup {
	return importSetup{
		path:         params.path,
		maxLineBytes: c.cfg.MaxLineBytes,
		logger:       c.logger.With("job_key", params.jobKey, "resource", params.resource),
	}
}

func (c *Coordinator) userBuffer(logger *slog.Logger) *buffer[model.User] {
	return newBuffer(bufferOptions[model.User]{
		Limit:    c.cfg.BufferLimit,
		Resource: model.ResourceUsers,
		Key:      model.User.NaturalKey,
		Flush:    c.repos.Users.BulkUpsert,
		Logger:   logger,
		Metrics:  c.metrics,
	})
}

func (c *Coordinator) articleBuffer(logger *slog.Logger) *buffer[model.Article] {
	return newBuffer(bufferOptions[model.Article]{
		Limit:    c.cfg.BufferLimit,
		Resource: model.ResourceArticles,
		Key:      model.Article.NaturalKey,
		Flush:    c.repos.Articles.BulkUpsert,
		Logger:   logger,
		Metrics:  c.metrics,
	})
}

func (c *Coordinator) commentBuffer(logger *slog.Logger) *buffer[model.Comment] {
	return newBuffer(bufferOptions[model.Comment]{
		Limit:    c.cfg.BufferLimit,
		Resource: model.ResourceComments,
		Flush:    c.repos.Comments.BulkUpsert,
		Logger:   logger,
		Metrics:  c.metrics,
	})
}

// runImport streams the staged file through parse and buffer. Every scanned
// line lands in exactly one counter: a parse failure is skipped and counted,
// a parsed record joins a batch whose flush accounts it as written or failed.
func runImport[T any](
	ctx context.Context,
	setup importSetup,
	buf *buffer[T],
	parse func([]byte) (T, error),
) (success, errorCount, lines int) {
	f, err := os.Open(setup.path)
	if err != nil {
		setup.logger.ErrorContext(ctx, "failed to open staged import file", "error", err)
		success, errorCount = buf.Counters()
		return success, errorCount, lines
	}
	defer func() {
		_ = f.Close()
	}()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, setup.maxLineBytes), setup.maxLineBytes)

	for scanner.Scan() {
		lines++
		rec, err := parse(scanner.Bytes())
		if err != nil {
			setup.logger.WarnContext(ctx, "skipping invalid line", "line", lines, "error", err)
			buf.AddError()
			continue
		}
		buf.Add(ctx, rec)
	}
	if err := scanner.Err(); err != nil {
		// An unreadable remainder (e.g. an oversized line) ends the stream;
		// the truncated line is accounted as one error.
		setup.logger.ErrorContext(ctx, "stopped reading import file", "line", lines, "error", err)
		lines++
		buf.AddError()
	}

	buf.Flush(ctx)
	success, errorCount = buf.Counters()
	return success, errorCount, lines
}

func removeQuietly(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Default().Warn("failed to remove staged import file", "path", path, "error", err)
	}
}
