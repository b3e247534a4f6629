package ingestion_engine

import "context"

type Ingestor interface {
	Process(ctx context.Context, file UploadedFile) (*IngestResult, error)
}

var _ Ingestor = (*DocumentIngestor)(nil)
