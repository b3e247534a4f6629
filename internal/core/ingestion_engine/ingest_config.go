package ingestion_engine

import (
	"log/slog"
	"time"

	"github.com/markdave123-py/docqa/internal/config"
	"github.com/markdave123-py/docqa/internal/core"
)

const (
	DefaultChunkWindow   = 1000
	DefaultSummaryPrefix = 1000
	// SummaryFallback replaces the summary whenever the backend cannot produce one.
	SummaryFallback = "No summary available"
)

// IngestConfig tunes the ingestion pipeline.
//
// UploadDir:     key prefix under which raw uploads are written (e.g., "uploads").
// SummaryPrefix: number of leading characters handed to the summarizer.
// ChunkWindow:   characters per chunk for the background chunk task.
type IngestConfig struct {
	UploadDir     string
	SummaryPrefix int
	ChunkWindow   int
}

// NewIngestConfig derives pipeline settings from the process configuration.
func NewIngestConfig(cfg *config.Config) *IngestConfig {
	return &IngestConfig{
		UploadDir:     cfg.UploadDir,
		SummaryPrefix: DefaultSummaryPrefix,
		ChunkWindow:   cfg.ChunkWindowSize,
	}
}

// DocumentIngestor orchestrates the upload pipeline:
//
// obj:        raw file storage.
// extractor:  per-format text extraction.
// summarizer: summary of the leading text.
// queue:      hand-off to the chunk workers (memory channel or redis list).
// cfg:        runtime tuning knobs for the pipeline.
type DocumentIngestor struct {
	obj        core.ObjectClient
	extractor  core.TextExtractor
	summarizer core.Summarizer
	queue      core.TaskQueue
	cfg        *IngestConfig
	logger     *slog.Logger
	now        func() time.Time
}

// UploadedFile is a file received from a client, fully buffered.
type UploadedFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// IngestResult is what the caller persists as a Document.
type IngestResult struct {
	Content    string
	StoredPath string
	Summary    string
}
