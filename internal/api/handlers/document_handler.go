package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	middleware "github.com/markdave123-py/docqa/internal/api/middlewares"
	"github.com/markdave123-py/docqa/internal/core"
	"github.com/markdave123-py/docqa/internal/core/ingestion_engine"
)

var errUnauthorized = errors.New("user_id not found in context")

type DocumentHandler struct {
	docs          DocumentService
	maxUploadSize int64
	logger        *slog.Logger
}

func NewDocumentHandler(docs DocumentService, maxUploadSize int64, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{docs: docs, maxUploadSize: maxUploadSize, logger: logger.With("component", "document-handler")}
}

// UploadDocument reads the multipart "file" field and runs it through ingestion.
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		RespondError(w, h.logger, http.StatusUnauthorized, errUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondError(w, h.logger, http.StatusRequestEntityTooLarge, core.ErrFileTooLarge)
			return
		}
		RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid multipart form: %w", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		RespondError(w, h.logger, http.StatusBadRequest, errors.New("invalid file"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("read upload: %w", err))
		return
	}

	doc, err := h.docs.Upload(r.Context(), userID, ingestion_engine.UploadedFile{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		RespondError(w, h.logger, core.MapHTTPStatus(err), fmt.Errorf("error processing document: %w", err))
		return
	}

	RespondJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) GetDocuments(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		RespondError(w, h.logger, http.StatusUnauthorized, errUnauthorized)
		return
	}

	documents, err := h.docs.List(r.Context(), userID)
	if err != nil {
		RespondError(w, h.logger, core.MapHTTPStatus(err), err)
		return
	}

	RespondJSON(w, http.StatusOK, documents)
}

func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		RespondError(w, h.logger, http.StatusUnauthorized, errUnauthorized)
		return
	}

	id, err := documentID(r)
	if err != nil {
		RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: document id", err))
		return
	}

	if err := h.docs.Delete(r.Context(), id, userID); err != nil {
		RespondError(w, h.logger, core.MapHTTPStatus(err), err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]string{"message": "Document deleted successfully"})
}
