package core

import (
	"context"

	"github.com/markdave123-py/docqa/internal/models"
)

// DbClient defines all persistence operations your services will need.
// Every read and delete is scoped to an owner; a document owned by someone
// else is reported as ErrNotFound.
type DbClient interface {
	CreateDocument(ctx context.Context, doc *models.Document) error
	ListDocumentsByOwner(ctx context.Context, ownerID string) ([]models.Document, error)
	GetDocumentByIDAndOwner(ctx context.Context, id int64, ownerID string) (*models.Document, error)
	DeleteDocument(ctx context.Context, id int64, ownerID string) error

	Close() error
}

// ObjectClient stores raw uploads. Keys are slash-separated paths such as
// "uploads/note.txt"; writing an existing key replaces it whole.
type ObjectClient interface {
	UploadFile(ctx context.Context, key string, data []byte, contentType string) (location string, err error)
	GetFile(ctx context.Context, key string) ([]byte, error)
	DeleteFile(ctx context.Context, key string) error
}

// TaskQueue carries chunk jobs from the ingestion pipeline to the chunk workers.
// Submit never blocks; when there is no room it returns ErrQueueFull.
type TaskQueue interface {
	Submit(ctx context.Context, job models.ChunkJob) error
	Receive(ctx context.Context) (models.ChunkJob, error)
	Close() error
}
