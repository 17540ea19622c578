package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/bulkport/bulkport/internal/domain/model"
	apperrors "github.com/bulkport/bulkport/internal/errors"
	"github.com/bulkport/bulkport/internal/mocks"
)

func finishedJob(id string) *model.Job {
	return &model.Job{
		ID:       id,
		JobKey:   "import-" + id,
		Resource: model.ResourceUsers,
		Status:   model.JobStatusFinished,
		Success:  90,
		Errors:   10,
	}
}

func TestGetStatusCacheHit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	jobs := mocks.NewMockJobRepository(ctrl)
	cache := mocks.NewMockJobStatusCache(ctrl)
	job := finishedJob("abc")

	cache.EXPECT().Get(gomock.Any(), "abc").Return(job, nil)

	svc := NewJobStatusService(JobStatusOptions{Jobs: jobs, Cache: cache})
	got, err := svc.GetStatus(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, job, got)
}

func TestGetStatusCacheMissFinishedJobIsCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	jobs := mocks.NewMockJobRepository(ctrl)
	cache := mocks.NewMockJobStatusCache(ctrl)
	job := finishedJob("abc")

	cache.EXPECT().Get(gomock.Any(), "abc").Return(nil, nil)
	jobs.EXPECT().GetByID(gomock.Any(), "abc").Return(job, nil)
	cache.EXPECT().Set(gomock.Any(), job).Return(nil)

	svc := NewJobStatusService(JobStatusOptions{Jobs: jobs, Cache: cache})
	got, err := svc.GetStatus(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, job, got)
}

func TestGetStatusProcessingJobIsNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	jobs := mocks.NewMockJobRepository(ctrl)
	cache := mocks.NewMockJobStatusCache(ctrl)
	job := &model.Job{ID: "abc", Status: model.JobStatusProcessing}

	cache.EXPECT().Get(gomock.Any(), "abc").Return(nil, nil)
	jobs.EXPECT().GetByID(gomock.Any(), "abc").Return(job, nil)
	// No Set expectation: a non-terminal row must never reach the cache.

	svc := NewJobStatusService(JobStatusOptions{Jobs: jobs, Cache: cache})
	got, err := svc.GetStatus(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusProcessing, got.Status)
}

func TestGetStatusCacheFaultFallsThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	jobs := mocks.NewMockJobRepository(ctrl)
	cache := mocks.NewMockJobStatusCache(ctrl)
	job := finishedJob("abc")

	cache.EXPECT().Get(gomock.Any(), "abc").Return(nil, errors.New("redis down"))
	jobs.EXPECT().GetByID(gomock.Any(), "abc").Return(job, nil)
	cache.EXPECT().Set(gomock.Any(), job).Return(errors.New("redis down"))

	svc := NewJobStatusService(JobStatusOptions{Jobs: jobs, Cache: cache})
	got, err := svc.GetStatus(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, job, got)
}

func TestGetStatusWithoutCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	jobs := mocks.NewMockJobRepository(ctrl)
	job := finishedJob("abc")
	jobs.EXPECT().GetByID(gomock.Any(), "abc").Return(job, nil)

	svc := NewJobStatusService(JobStatusOptions{Jobs: jobs})
	got, err := svc.GetStatus(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, job, got)
}

func TestGetStatusNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	jobs := mocks.NewMockJobRepository(ctrl)
	jobs.EXPECT().GetByID(gomock.Any(), "missing").
		Return(nil, apperrors.NotFoundf("job %q not found", "missing"))

	svc := NewJobStatusService(JobStatusOptions{Jobs: jobs})
	_, err := svc.GetStatus(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}
