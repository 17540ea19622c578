package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bulkport/bulkport/internal/domain/model"
)

// jobStatusKeyPrefix namespaces cached job rows in Redis.
const jobStatusKeyPrefix = "bulkport:job:"

// RedisJobStatusCache caches finished job rows in Redis so repeated status
// polls skip the primary store. Only terminal rows belong here: a finished
// job never changes again, so staleness is bounded by the TTL alone.
type RedisJobStatusCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisJobStatusCache creates a cache over the given Redis client.
// A non-positive TTL defaults to one hour.
func NewRedisJobStatusCache(client redis.UniversalClient, ttl time.Duration) *RedisJobStatusCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisJobStatusCache{client: client, ttl: ttl}
}

// Get returns the cached job, or nil on a miss.
func (c *RedisJobStatusCache) Get(ctx context.Context, id string) (*model.Job, error) {
	raw, err := c.client.Get(ctx, jobStatusKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached job: %w", err)
	}

	var job model.Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("decode cached job: %w", err)
	}
	return &job, nil
}

// Set stores a finished job under its row id.
func (c *RedisJobStatusCache) Set(ctx context.Context, job *model.Job) error {
	if job == nil {
		return errors.New("job is required")
	}
	if job.Status != model.JobStatusFinished {
		return fmt.Errorf("refusing to cache non-terminal job status %q", job.Status)
	}

	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job for cache: %w", err)
	}
	if err := c.client.Set(ctx, jobStatusKeyPrefix+job.ID, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached job: %w", err)
	}
	return nil
}
