package ingestion_engine

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/markdave123-py/docqa/internal/core"
	"github.com/markdave123-py/docqa/internal/metrics"
	"github.com/markdave123-py/docqa/internal/models"
)

// NewDocumentIngestor constructs the ingestion pipeline.
func NewDocumentIngestor(obj core.ObjectClient, extractor core.TextExtractor, summarizer core.Summarizer, queue core.TaskQueue, cfg *IngestConfig, logger *slog.Logger) *DocumentIngestor {
	if cfg == nil {
		cfg = &IngestConfig{UploadDir: "uploads", SummaryPrefix: DefaultSummaryPrefix, ChunkWindow: DefaultChunkWindow}
	}
	return &DocumentIngestor{
		obj: obj, extractor: extractor, summarizer: summarizer, queue: queue, cfg: cfg,
		logger: logger.With("component", "ingestor"),
		now:    time.Now,
	}
}

// Process stores the upload, extracts its text, summarizes the leading text
// and submits a chunk job. Storage and extraction failures abort, and a failed
// extraction removes the stored file again. Summary and enqueue failures
// degrade and are only logged.
func (i *DocumentIngestor) Process(ctx context.Context, file UploadedFile) (*IngestResult, error) {
	name, err := cleanFilename(file.Filename)
	if err != nil {
		return nil, err
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(name))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := path.Join(i.cfg.UploadDir, name)
	storedPath, err := i.obj.UploadFile(ctx, key, file.Data, contentType)
	if err != nil {
		return nil, &core.StorageError{Op: "store upload", Err: err}
	}
	i.logger.Info("upload stored", "path", storedPath, "bytes", len(file.Data))

	content, err := i.extractor.Extract(ctx, storedPath, core.DetectFormat(name), file.Data)
	if err != nil {
		if rmErr := i.obj.DeleteFile(context.WithoutCancel(ctx), storedPath); rmErr != nil {
			i.logger.Error("rollback of stored upload failed", "path", storedPath, "error", rmErr)
		}
		return nil, err
	}

	summary := i.summarize(ctx, storedPath, content)
	i.enqueueChunks(ctx, storedPath, content)

	return &IngestResult{Content: content, StoredPath: storedPath, Summary: summary}, nil
}

func (i *DocumentIngestor) summarize(ctx context.Context, storedPath, content string) string {
	summary, err := i.summarizer.Summarize(ctx, prefix(content, i.cfg.SummaryPrefix))
	if err != nil {
		i.logger.Warn("summary generation failed, using fallback", "path", storedPath, "error", err)
		metrics.SummaryFallbacks.Inc()
		return SummaryFallback
	}
	return summary
}

func (i *DocumentIngestor) enqueueChunks(ctx context.Context, storedPath, content string) {
	job := models.ChunkJob{
		ID:         uuid.NewString(),
		Path:       storedPath,
		Content:    content,
		EnqueuedAt: i.now().UTC(),
	}
	if err := i.queue.Submit(ctx, job); err != nil {
		i.logger.Warn("chunk job not enqueued", "path", storedPath, "job_id", job.ID, "error", err)
		metrics.ChunkJobs.WithLabelValues("dropped").Inc()
		return
	}
	metrics.ChunkJobs.WithLabelValues("enqueued").Inc()
}

// cleanFilename keeps only the leaf name so uploads cannot escape the upload directory.
func cleanFilename(name string) (string, error) {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	base := path.Base(name)
	if base == "." || base == "/" || base == ".." || base == "" {
		return "", fmt.Errorf("%w: filename %q", core.ErrInvalidInput, name)
	}
	return base, nil
}
