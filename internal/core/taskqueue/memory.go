// Package taskqueue carries chunk jobs from the upload path to the chunk workers.
package taskqueue

import (
	"context"
	"sync"

	"github.com/markdave123-py/docqa/internal/core"
	"github.com/markdave123-py/docqa/internal/models"
)

var _ core.TaskQueue = (*MemoryQueue)(nil)

// MemoryQueue is an in-process bounded queue backed by a buffered channel.
type MemoryQueue struct {
	mu     sync.RWMutex
	jobs   chan models.ChunkJob
	closed bool
}

func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 64
	}
	return &MemoryQueue{jobs: make(chan models.ChunkJob, size)}
}

// Submit enqueues without blocking.
func (q *MemoryQueue) Submit(ctx context.Context, job models.ChunkJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return core.ErrQueueClosed
	}
	select {
	case q.jobs <- job:
		return nil
	default:
		return core.ErrQueueFull
	}
}

// Receive blocks until a job is available, ctx is done or the queue is closed
// and drained.
func (q *MemoryQueue) Receive(ctx context.Context) (models.ChunkJob, error) {
	select {
	case job, ok := <-q.jobs:
		if !ok {
			return models.ChunkJob{}, core.ErrQueueClosed
		}
		return job, nil
	case <-ctx.Done():
		return models.ChunkJob{}, ctx.Err()
	}
}

// Len reports the number of jobs waiting.
func (q *MemoryQueue) Len() int {
	return len(q.jobs)
}

func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	return nil
}
