package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/markdave123-py/docqa/internal/core"
	"github.com/markdave123-py/docqa/internal/core/ingestion_engine"
	"github.com/markdave123-py/docqa/internal/models"
)

// DocumentService is the slice of services.DocumentService the handlers use.
type DocumentService interface {
	Upload(ctx context.Context, ownerID string, file ingestion_engine.UploadedFile) (*models.Document, error)
	List(ctx context.Context, ownerID string) ([]models.Document, error)
	Delete(ctx context.Context, id int64, ownerID string) error
	Ask(ctx context.Context, id int64, ownerID, question string) (string, error)
	Explain(ctx context.Context, id int64, ownerID string, concepts []string) (string, error)
}

// RespondJSON writes a JSON response with the given status code and data.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs the error and writes {"error": "<message>"}.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("handler error", "error", err, "status", status)
	} else {
		logger.Warn("handler error", "error", err, "status", status)
	}
	RespondJSON(w, status, map[string]string{"error": err.Error()})
}

func documentID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, core.ErrInvalidInput
	}
	return id, nil
}
