package importer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bulkport/bulkport/internal/domain/model"
)

type rec struct {
	key string
	val int
}

func recKey(r rec) string { return r.key }

// collectFlush records every batch and reports all rows written.
func collectFlush(batches *[][]rec) flushFunc[rec] {
	return func(_ context.Context, batch []rec) (int, error) {
		cp := make([]rec, len(batch))
		copy(cp, batch)
		*batches = append(*batches, cp)
		return len(batch), nil
	}
}

func TestBufferFlushesAtThreshold(t *testing.T) {
	var batches [][]rec
	b := newBuffer(bufferOptions[rec]{
		Limit:    3,
		Resource: model.ResourceUsers,
		Key:      recKey,
		Flush:    collectFlush(&batches),
	})

	ctx := context.Background()
	for i := 0; i < 7; i++ {
		b.Add(ctx, rec{key: fmt.Sprintf("k%d", i)})
	}
	require.Len(t, batches, 2, "two full batches flushed at the threshold")

	b.Flush(ctx)
	require.Len(t, batches, 3)
	assert.Len(t, batches[2], 1)

	success, errs := b.Counters()
	assert.Equal(t, 7, success)
	assert.Zero(t, errs)
}

func TestBufferDedupLastWins(t *testing.T) {
	var batches [][]rec
	b := newBuffer(bufferOptions[rec]{
		Limit:    100,
		Resource: model.ResourceUsers,
		Key:      recKey,
		Flush:    collectFlush(&batches),
	})

	ctx := context.Background()
	b.Add(ctx, rec{key: "a", val: 1})
	b.Add(ctx, rec{key: "b", val: 2})
	b.Add(ctx, rec{key: "a", val: 3})
	b.Flush(ctx)

	require.Len(t, batches, 1)
	assert.Equal(t, []rec{{key: "a", val: 3}, {key: "b", val: 2}}, batches[0],
		"first-seen order, last occurrence value")

	// The collapsed duplicate is charged as an error so the counters still
	// account for every buffered record.
	success, errs := b.Counters()
	assert.Equal(t, 2, success)
	assert.Equal(t, 1, errs)
}

func TestBufferNoKeySkipsDedup(t *testing.T) {
	var batches [][]rec
	b := newBuffer(bufferOptions[rec]{
		Limit:    100,
		Resource: model.ResourceComments,
		Flush:    collectFlush(&batches),
	})

	ctx := context.Background()
	b.Add(ctx, rec{key: "a"})
	b.Add(ctx, rec{key: "a"})
	b.Flush(ctx)

	require.Len(t, batches, 1)
	assert.Len(t, batches[0], 2)
}

func TestBufferFlushFailureCountsBatchAsErrors(t *testing.T) {
	calls := 0
	b := newBuffer(bufferOptions[rec]{
		Limit:    100,
		Resource: model.ResourceUsers,
		Key:      recKey,
		Flush: func(context.Context, []rec) (int, error) {
			calls++
			if calls == 1 {
				return 0, errors.New("connection reset")
			}
			return 1, nil
		},
	})

	ctx := context.Background()
	b.Add(ctx, rec{key: "a"})
	b.Add(ctx, rec{key: "b"})
	b.Flush(ctx)

	success, errs := b.Counters()
	assert.Zero(t, success)
	assert.Equal(t, 2, errs, "whole failed batch charged to errors")

	// The stream keeps going after a failed batch.
	b.Add(ctx, rec{key: "c"})
	b.Flush(ctx)
	success, errs = b.Counters()
	assert.Equal(t, 1, success)
	assert.Equal(t, 2, errs)
}

func TestBufferEmptyFlushIsNoop(t *testing.T) {
	b := newBuffer(bufferOptions[rec]{
		Resource: model.ResourceUsers,
		Flush: func(context.Context, []rec) (int, error) {
			t.Fatal("flush must not be called on an empty buffer")
			return 0, nil
		},
	})
	b.Flush(context.Background())

	success, errs := b.Counters()
	assert.Zero(t, success)
	assert.Zero(t, errs)
}

func TestDedupLastWins(t *testing.T) {
	in := []rec{
		{key: "x", val: 1},
		{key: "y", val: 2},
		{key: "x", val: 3},
		{key: "z", val: 4},
		{key: "y", val: 5},
	}
	out := dedupLastWins(in, recKey)
	assert.Equal(t, []rec{{key: "x", val: 3}, {key: "y", val: 5}, {key: "z", val: 4}}, out)
}
