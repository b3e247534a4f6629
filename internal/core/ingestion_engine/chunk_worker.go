package ingestion_engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/docqa/internal/core"
	"github.com/markdave123-py/docqa/internal/metrics"
	"github.com/markdave123-py/docqa/internal/models"
)

// ChunkRecorder receives the chunk count of every finished job.
type ChunkRecorder interface {
	RecordChunks(job models.ChunkJob, count int)
}

// ChunkWorker drains the task queue and performs chunk accounting.
// Failures stay inside the worker; nothing is reported back to the submitter.
type ChunkWorker struct {
	queue    core.TaskQueue
	window   int
	recorder ChunkRecorder
	logger   *slog.Logger
	backoff  time.Duration
	done     chan error
}

func NewChunkWorker(queue core.TaskQueue, window int, recorder ChunkRecorder, logger *slog.Logger) *ChunkWorker {
	if window <= 0 {
		window = DefaultChunkWindow
	}
	return &ChunkWorker{
		queue:    queue,
		window:   window,
		recorder: recorder,
		logger:   logger.With("component", "chunk-worker"),
		backoff:  time.Second,
	}
}

// Start runs numWorkers goroutines reading from the queue until ctx is
// cancelled or the queue is closed. Use Wait to block until they exit.
func (w *ChunkWorker) Start(ctx context.Context, numWorkers int) {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	w.done = make(chan error, 1)

	g, gctx := errgroup.WithContext(ctx)
	for n := 1; n <= numWorkers; n++ {
		n := n
		g.Go(func() error {
			w.loop(gctx, n)
			return nil
		})
	}

	go func() {
		w.done <- g.Wait()
		close(w.done)
	}()
}

// Wait blocks until every worker started by Start has returned.
func (w *ChunkWorker) Wait() error {
	if w.done == nil {
		return nil
	}
	return <-w.done
}

func (w *ChunkWorker) loop(ctx context.Context, id int) {
	for {
		job, err := w.queue.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, core.ErrQueueClosed) {
				w.logger.Info("chunk worker shutting down", "worker", id)
				return
			}
			w.logger.Error("receive chunk job", "worker", id, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.backoff):
			}
			continue
		}

		if err := w.process(job); err != nil {
			metrics.ChunkJobs.WithLabelValues("failed").Inc()
			w.logger.Error("chunk job failed", "worker", id, "job_id", job.ID, "path", job.Path, "error", err)
		}
	}
}

// process chunks one job. A panic in the job is converted to an error.
func (w *ChunkWorker) process(job models.ChunkJob) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	chunks := Chunk(job.Content, w.window)
	w.recorder.RecordChunks(job, len(chunks))
	w.logger.Info("processed document", "path", job.Path, "job_id", job.ID, "chunks", len(chunks))
	return nil
}
