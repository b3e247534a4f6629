package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/markdave123-py/docqa/internal/core"
	"github.com/markdave123-py/docqa/internal/core/ingestion_engine"
	"github.com/markdave123-py/docqa/internal/models"
)

// DocumentService is the owner-scoped entry point for every document use case.
type DocumentService struct {
	db       core.DbClient
	storage  core.ObjectClient
	ingestor ingestion_engine.Ingestor
	qa       *QAService
	logger   *slog.Logger
}

func NewDocumentService(db core.DbClient, storage core.ObjectClient, ingestor ingestion_engine.Ingestor, qa *QAService, logger *slog.Logger) *DocumentService {
	return &DocumentService{db: db, storage: storage, ingestor: ingestor, qa: qa, logger: logger.With("component", "document-service")}
}

// Upload runs the ingestion pipeline and persists the result. If the record
// cannot be written the stored file is removed again.
func (s *DocumentService) Upload(ctx context.Context, ownerID string, file ingestion_engine.UploadedFile) (*models.Document, error) {
	res, err := s.ingestor.Process(ctx, file)
	if err != nil {
		return nil, err
	}

	summary := res.Summary
	doc := &models.Document{
		Title:    file.Filename,
		Content:  res.Content,
		FilePath: res.StoredPath,
		Summary:  &summary,
		OwnerID:  ownerID,
	}
	if err := s.db.CreateDocument(ctx, doc); err != nil {
		if rmErr := s.storage.DeleteFile(ctx, res.StoredPath); rmErr != nil {
			s.logger.Error("rollback of stored upload failed", "path", res.StoredPath, "error", rmErr)
		}
		return nil, storageErr("create document", err)
	}

	s.logger.Info("document created", "id", doc.ID, "owner", ownerID, "path", doc.FilePath)
	return doc, nil
}

func (s *DocumentService) List(ctx context.Context, ownerID string) ([]models.Document, error) {
	return s.db.ListDocumentsByOwner(ctx, ownerID)
}

func (s *DocumentService) Get(ctx context.Context, id int64, ownerID string) (*models.Document, error) {
	return s.db.GetDocumentByIDAndOwner(ctx, id, ownerID)
}

// Delete removes the raw file and then the record. If the record delete
// fails the file is written back, so neither half is lost on its own.
func (s *DocumentService) Delete(ctx context.Context, id int64, ownerID string) error {
	doc, err := s.db.GetDocumentByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return err
	}

	backup, err := s.storage.GetFile(ctx, doc.FilePath)
	hasBackup := err == nil
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return storageErr("read file before delete", err)
	}

	if hasBackup {
		if err := s.storage.DeleteFile(ctx, doc.FilePath); err != nil {
			return storageErr("delete file", err)
		}
	}

	if err := s.db.DeleteDocument(ctx, id, ownerID); err != nil {
		if hasBackup {
			if _, rErr := s.storage.UploadFile(ctx, doc.FilePath, backup, ""); rErr != nil {
				s.logger.Error("restore of deleted file failed", "path", doc.FilePath, "error", rErr)
			}
		}
		if errors.Is(err, core.ErrNotFound) {
			return err
		}
		return storageErr("delete document", err)
	}

	s.logger.Info("document deleted", "id", id, "owner", ownerID)
	return nil
}

// Ask answers question against the stored content of the owner's document.
// An unknown or foreign document never reaches the backend.
func (s *DocumentService) Ask(ctx context.Context, id int64, ownerID, question string) (string, error) {
	doc, err := s.db.GetDocumentByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return "", err
	}
	return s.qa.Answer(ctx, doc.Content, question)
}

func (s *DocumentService) Explain(ctx context.Context, id int64, ownerID string, concepts []string) (string, error) {
	doc, err := s.db.GetDocumentByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return "", err
	}
	return s.qa.Explain(ctx, doc.Content, concepts)
}

// storageErr wraps err as a StorageError unless it already is one.
func storageErr(op string, err error) error {
	var se *core.StorageError
	if errors.As(err, &se) {
		return err
	}
	return &core.StorageError{Op: op, Err: err}
}
