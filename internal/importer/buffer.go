// Package importer implements the bulk ingestion pipeline: job admission,
// per-job worker dispatch, and the buffered deduplicating upsert.
package importer

import (
	"context"
	"log/slog"

	"github.com/bulkport/bulkport/internal/domain/model"
	"github.com/bulkport/bulkport/internal/observability/statsd"
)

// defaultBufferLimit is the flush threshold for accumulated records.
const defaultBufferLimit = 1000

// flushFunc persists one deduplicated batch and returns the rows written.
type flushFunc[T any] func(ctx context.Context, batch []T) (int, error)

// bufferOptions groups the pieces a buffer needs per record kind.
type bufferOptions[T any] struct {
	Limit    int
	Resource model.Resource
	// Key extracts the natural key used for last-wins dedup before a flush.
	// Nil disables dedup (comments).
	Key func(T) string
	// Flush performs the batched upsert.
	Flush   flushFunc[T]
	Logger  *slog.Logger
	Metrics statsd.Sink
}

// buffer accumulates validated records for one job and flushes them in
// batches. It is owned by exactly one worker and is not safe for concurrent
// use; workers never share buffers.
type buffer[T any] struct {
	opts bufferOptions[T]
	data []T

	success int
	errors  int
}

func newBuffer[T any](opts bufferOptions[T]) *buffer[T] {
	if opts.Limit <= 0 {
		opts.Limit = defaultBufferLimit
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = statsd.Noop{}
	}
	return &buffer[T]{
		opts: opts,
		data: make([]T, 0, opts.Limit),
	}
}

// AddError accounts one skipped input line.
func (b *buffer[T]) AddError() {
	b.errors++
}

// Add appends a validated record and flushes when the threshold is reached.
func (b *buffer[T]) Add(ctx context.Context, rec T) {
	b.data = append(b.data, rec)
	if len(b.data) >= b.opts.Limit {
		b.Flush(ctx)
	}
}

// Flush deduplicates the current batch by natural key (last occurrence wins),
// performs the batched upsert, and folds the outcome into the counters.
// Records the upsert did not write, whether collapsed duplicates, conflict
// no-ops, or an entire batch lost to a storage fault, are charged to the
// error counter; a failing batch never aborts the stream.
func (b *buffer[T]) Flush(ctx context.Context) {
	if len(b.data) == 0 {
		return
	}

	batchSize := len(b.data)
	batch := b.data
	b.data = make([]T, 0, b.opts.Limit)

	if b.opts.Key != nil {
		batch = dedupLastWins(batch, b.opts.Key)
	}

	written, err := b.opts.Flush(ctx, batch)
	if err != nil {
		b.opts.Logger.WarnContext(ctx, "batch flush failed, counting batch as errors",
			"resource", b.opts.Resource,
			"batch_size", batchSize,
			"error", err)
		written = 0
		b.opts.Metrics.Count("import.batch_failed", 1, map[string]string{"resource": string(b.opts.Resource)})
	}

	b.success += written
	b.errors += batchSize - written
	b.opts.Metrics.Count("import.records_written", int64(written),
		map[string]string{"resource": string(b.opts.Resource)})
}

// Counters returns the running success and error counts.
func (b *buffer[T]) Counters() (success, errors int) {
	return b.success, b.errors
}

// dedupLastWins collapses the batch by natural key. The slice keeps first-seen
// key order, but the value for each key is its last occurrence.
func dedupLastWins[T any](batch []T, key func(T) string) []T {
	out := make([]T, 0, len(batch))
	index := make(map[string]int, len(batch))
	for _, rec := range batch {
		k := key(rec)
		if at, seen := index[k]; seen {
			out[at] = rec
			continue
		}
		index[k] = len(out)
		out = append(out, rec)
	}
	return out
}
