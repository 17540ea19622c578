package exporter

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bulkport/bulkport/internal/domain/model"
	apperrors "github.com/bulkport/bulkport/internal/errors"
)

// fakeUserRepo serves pages out of a fixed slice, recording each fetch.
type fakeUserRepo struct {
	rows    []model.User
	fetches int
	err     error
}

func (f *fakeUserRepo) BulkUpsert(context.Context, []model.User) (int, error) {
	panic("not used")
}

func (f *fakeUserRepo) ListPage(_ context.Context, limit, offset int) ([]model.User, error) {
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	if offset >= len(f.rows) {
		return nil, nil
	}
	end := min(offset+limit, len(f.rows))
	return f.rows[offset:end], nil
}

type fakeArticleRepo struct{}

func (fakeArticleRepo) BulkUpsert(context.Context, []model.Article) (int, error) { return 0, nil }
func (fakeArticleRepo) ListPage(context.Context, int, int) ([]model.Article, error) {
	return nil, nil
}

type fakeCommentRepo struct{}

func (fakeCommentRepo) BulkUpsert(context.Context, []model.Comment) (int, error) { return 0, nil }
func (fakeCommentRepo) ListPage(context.Context, int, int) ([]model.Comment, error) {
	return nil, nil
}

func newTestService(users *fakeUserRepo, pageSize int) *Service {
	return NewService(ServiceOptions{
		Repos: Repos{
			Users:    users,
			Articles: fakeArticleRepo{},
			Comments: fakeCommentRepo{},
		},
		PageSize: pageSize,
	})
}

func makeUsers(n int) []model.User {
	out := make([]model.User, n)
	for i := range out {
		out[i] = model.User{
			ID:    fmt.Sprintf("u%06d", i),
			Email: fmt.Sprintf("user%d@example.com", i),
			Name:  fmt.Sprintf("User %d", i),
			Role:  model.UserRoleReader,
		}
	}
	return out
}

func TestStreamEmptyTable(t *testing.T) {
	users := &fakeUserRepo{}
	svc := newTestService(users, 5000)

	var buf bytes.Buffer
	lines, err := svc.Stream(context.Background(), StreamRequest{
		Resource: model.ResourceUsers,
		Format:   model.FormatNDJSON,
	}, &buf)

	require.NoError(t, err)
	assert.Zero(t, lines)
	assert.Zero(t, buf.Len())
	assert.Equal(t, 1, users.fetches)
}

func TestStreamPagesThroughTable(t *testing.T) {
	users := &fakeUserRepo{rows: makeUsers(12000)}
	svc := newTestService(users, 5000)

	var buf bytes.Buffer
	lines, err := svc.Stream(context.Background(), StreamRequest{
		Resource: model.ResourceUsers,
		Format:   model.FormatNDJSON,
	}, &buf)

	require.NoError(t, err)
	assert.EqualValues(t, 12000, lines)
	// 5000 + 5000 + 2000, then one empty fetch ends the loop.
	assert.Equal(t, 4, users.fetches)

	scanner := bufio.NewScanner(&buf)
	prev := ""
	count := 0
	for scanner.Scan() {
		var u model.User
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &u))
		assert.Greater(t, u.ID, prev, "ids must be ascending")
		prev = u.ID
		count++
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, 12000, count)
}

func TestStreamExactPageMultiple(t *testing.T) {
	users := &fakeUserRepo{rows: makeUsers(10000)}
	svc := newTestService(users, 5000)

	lines, err := svc.Stream(context.Background(), StreamRequest{
		Resource: model.ResourceUsers,
		Format:   model.FormatNDJSON,
	}, &bytes.Buffer{})

	require.NoError(t, err)
	assert.EqualValues(t, 10000, lines)
	// A full final page still needs the trailing empty fetch to stop.
	assert.Equal(t, 3, users.fetches)
}

func TestStreamUnsupportedFormat(t *testing.T) {
	svc := newTestService(&fakeUserRepo{}, 5000)

	var buf bytes.Buffer
	lines, err := svc.Stream(context.Background(), StreamRequest{
		Resource: model.ResourceUsers,
		Format:   model.Format("csv"),
	}, &buf)

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Zero(t, lines)
	assert.Zero(t, buf.Len())
}

func TestStreamInvalidResource(t *testing.T) {
	svc := newTestService(&fakeUserRepo{}, 5000)

	_, err := svc.Stream(context.Background(), StreamRequest{
		Resource: model.Resource("projects"),
		Format:   model.FormatNDJSON,
	}, &bytes.Buffer{})

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestStreamCancelStopsFetching(t *testing.T) {
	users := &fakeUserRepo{rows: makeUsers(100)}
	svc := newTestService(users, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lines, err := svc.Stream(ctx, StreamRequest{
		Resource: model.ResourceUsers,
		Format:   model.FormatNDJSON,
	}, &bytes.Buffer{})

	require.Error(t, err)
	assert.True(t, apperrors.IsCanceled(err))
	assert.Zero(t, lines)
	assert.Zero(t, users.fetches)
}

func TestStreamFetchErrorPropagates(t *testing.T) {
	users := &fakeUserRepo{err: fmt.Errorf("connection reset")}
	svc := newTestService(users, 5000)

	_, err := svc.Stream(context.Background(), StreamRequest{
		Resource: model.ResourceUsers,
		Format:   model.FormatNDJSON,
	}, &bytes.Buffer{})

	require.ErrorContains(t, err, "connection reset")
}
