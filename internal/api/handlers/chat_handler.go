package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	middleware "github.com/markdave123-py/docqa/internal/api/middlewares"
	"github.com/markdave123-py/docqa/internal/core"
)

const maxQuestionBody = 1 << 20

type ChatHandler struct {
	docs   DocumentService
	logger *slog.Logger
}

func NewChatHandler(docs DocumentService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{docs: docs, logger: logger.With("component", "chat-handler")}
}

type AskRequest struct {
	Question string `json:"question"`
}

type ExplainRequest struct {
	Concepts []string `json:"concepts"`
}

// AskQuestion answers a question about one of the caller's documents. The
// question comes from a JSON body or, when the body is empty, from ?question=.
func (h *ChatHandler) AskQuestion(w http.ResponseWriter, r *http.Request) {
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

	var req AskRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if req.Question == "" {
		req.Question = r.URL.Query().Get("question")
	}

	answer, err := h.docs.Ask(r.Context(), id, userID, req.Question)
	if err != nil {
		RespondError(w, h.logger, core.MapHTTPStatus(err), err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

func (h *ChatHandler) ExplainConcepts(w http.ResponseWriter, r *http.Request) {
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

	var req ExplainRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	explanations, err := h.docs.Explain(r.Context(), id, userID, req.Concepts)
	if err != nil {
		RespondError(w, h.logger, core.MapHTTPStatus(err), err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]string{"explanations": explanations})
}

// decodeOptionalJSON decodes the body into v; an empty body leaves v untouched.
func decodeOptionalJSON(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxQuestionBody)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("%w: invalid request body", core.ErrInvalidInput)
}
