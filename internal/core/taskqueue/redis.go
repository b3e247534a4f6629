package taskqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/markdave123-py/docqa/internal/core"
	"github.com/markdave123-py/docqa/internal/models"
)

var _ core.TaskQueue = (*RedisQueue)(nil)

// RedisQueue keeps jobs in a redis list: producers LPUSH, workers BRPOP,
// so jobs are served oldest first.
type RedisQueue struct {
	client *redis.Client
	key    string
	maxLen int64
	poll   time.Duration
	closed atomic.Bool
}

// NewRedisQueue wraps client. maxLen bounds the list; 0 leaves it unbounded.
func NewRedisQueue(client *redis.Client, key string, maxLen int) *RedisQueue {
	return &RedisQueue{
		client: client,
		key:    key,
		maxLen: int64(maxLen),
		poll:   time.Second,
	}
}

func (q *RedisQueue) Submit(ctx context.Context, job models.ChunkJob) error {
	if q.closed.Load() {
		return core.ErrQueueClosed
	}
	if q.maxLen > 0 {
		n, err := q.client.LLen(ctx, q.key).Result()
		if err != nil {
			return fmt.Errorf("redis llen: %w", err)
		}
		if n >= q.maxLen {
			return core.ErrQueueFull
		}
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode chunk job: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("redis lpush: %w", err)
	}
	return nil
}

// Receive polls with BRPOP so that cancellation and Close are observed
// within one poll interval.
func (q *RedisQueue) Receive(ctx context.Context) (models.ChunkJob, error) {
	for {
		if q.closed.Load() {
			return models.ChunkJob{}, core.ErrQueueClosed
		}
		if err := ctx.Err(); err != nil {
			return models.ChunkJob{}, err
		}

		result, err := q.client.BRPop(ctx, q.poll, q.key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if errors.Is(err, redis.ErrClosed) {
				return models.ChunkJob{}, core.ErrQueueClosed
			}
			return models.ChunkJob{}, fmt.Errorf("redis brpop: %w", err)
		}

		// result is [key, value]
		var job models.ChunkJob
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			return models.ChunkJob{}, fmt.Errorf("decode chunk job: %w", err)
		}
		return job, nil
	}
}

// Close stops Submit and Receive. The redis client is owned by the caller.
func (q *RedisQueue) Close() error {
	q.closed.Store(true)
	return nil
}
