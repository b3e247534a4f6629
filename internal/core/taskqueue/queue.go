package taskqueue

import (
	"context"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"

	"github.com/markdave123-py/docqa/internal/config"
	"github.com/markdave123-py/docqa/internal/core"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns the queue selected by QUEUE_DRIVER. The closer releases the
// backing connection and must run after the workers have stopped.
func New(ctx context.Context, cfg *config.Config) (core.TaskQueue, io.Closer, error) {
	switch cfg.QueueDriver {
	case "memory", "":
		return NewMemoryQueue(cfg.QueueSize), nopCloser{}, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		return NewRedisQueue(client, cfg.QueueKey, cfg.QueueSize), client, nil
	default:
		return nil, nil, fmt.Errorf("unknown QUEUE_DRIVER %q", cfg.QueueDriver)
	}
}
