// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/markdave123-py/docqa/internal/config"
	"github.com/markdave123-py/docqa/internal/core"
	db "github.com/markdave123-py/docqa/internal/core/database"
	"github.com/markdave123-py/docqa/internal/core/ingestion_engine"
	"github.com/markdave123-py/docqa/internal/core/llm"
	objectclient "github.com/markdave123-py/docqa/internal/core/object-client"
	"github.com/markdave123-py/docqa/internal/core/taskqueue"
	"github.com/markdave123-py/docqa/internal/metrics"
	"github.com/markdave123-py/docqa/internal/services"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	DBClient     core.DbClient
	ObjectClient core.ObjectClient
	Queue        core.TaskQueue
	Workers      *ingestion_engine.ChunkWorker
	Documents    *services.DocumentService
	Server       *Server
	Registry     *prometheus.Registry

	cfg     *config.Config
	logger  *slog.Logger
	closers []io.Closer
}

// NewApp wires store, object storage, completion backend, services, the
// ingestion pipeline, the chunk queue and workers, and the HTTP server.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	ready := false
	defer func() {
		if !ready {
			a.Close()
		}
	}()

	dbClient, err := db.New(appCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the document store: %w", err)
	}
	a.DBClient = dbClient
	a.closers = append(a.closers, dbClient)
	logger.Info("Database initialized and ready.", "driver", cfg.DBDriver)

	objClient, err := objectclient.New(appCtx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize object storage: %w", err)
	}
	a.ObjectClient = objClient
	logger.Info("Object client initialized and ready.", "driver", cfg.StorageDriver)

	llmProvider, llmCloser, err := llm.NewProvider(appCtx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the completion backend: %w", err)
	}
	a.closers = append(a.closers, llmCloser)

	queue, queueCloser, err := taskqueue.New(appCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the task queue: %w", err)
	}
	a.Queue = queue
	a.closers = append(a.closers, queueCloser)

	reg := prometheus.NewRegistry()
	metrics.RegisterCollectors(reg)
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.Registry = reg

	extractor := ingestion_engine.NewDocumentExtractor(logger)
	ingestor := ingestion_engine.NewDocumentIngestor(
		objClient, extractor, services.NewSummaryService(llmProvider), queue,
		ingestion_engine.NewIngestConfig(cfg), logger,
	)

	a.Documents = services.NewDocumentService(dbClient, objClient, ingestor, services.NewQAService(llmProvider), logger)
	a.Workers = ingestion_engine.NewChunkWorker(queue, cfg.ChunkWindowSize, metrics.ChunkRecorder{}, logger)
	a.Server = NewServer(cfg, a.Documents, reg, logger)

	ready = true
	return a, nil
}

// Run starts the chunk workers and the HTTP server and blocks until ctx is
// cancelled or the server fails. On the way out the server is shut down, the
// queue is closed and the workers drain what is left.
func (a *App) Run(ctx context.Context) error {
	workerCtx, stopWorkers := context.WithCancel(context.WithoutCancel(ctx))
	defer stopWorkers()
	a.Workers.Start(workerCtx, a.cfg.ChunkWorkers)

	errCh := make(chan error, 1)
	go func() { errCh <- a.Server.Start() }()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http shutdown", "error", err)
	}
	if err := a.Queue.Close(); err != nil {
		a.logger.Error("close task queue", "error", err)
	}

	done := make(chan struct{})
	go func() {
		a.Workers.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		a.logger.Warn("chunk workers did not drain in time")
		stopWorkers()
		<-done
	}
	return runErr
}

func (a *App) Close() {
	for _, c := range a.closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			a.logger.Error("close", "error", err)
		}
	}
	a.closers = nil
}
