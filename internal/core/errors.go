package core

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors for document operations.
var (
	ErrNotFound     = errors.New("document not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")
	ErrQueueFull    = errors.New("task queue is full")
	ErrQueueClosed  = errors.New("task queue is closed")
)

// ExtractionError reports a file whose bytes do not parse as its declared format.
type ExtractionError struct {
	Format Format
	Path   string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s text from %q: %v", e.Format, e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// BackendUnavailableError wraps any failure of the completion backend:
// transport errors, timeouts, non-2xx statuses and undecodable bodies.
type BackendUnavailableError struct {
	Provider string
	Attempts int
	Err      error
}

func (e *BackendUnavailableError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("%s backend unavailable after %d attempts: %v", e.Provider, e.Attempts, e.Err)
	}
	return fmt.Sprintf("%s backend unavailable: %v", e.Provider, e.Err)
}

func (e *BackendUnavailableError) Unwrap() error { return e.Err }

// StorageError wraps a persistence failure (record store or raw file store).
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// MapHTTPStatus converts domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	var backendErr *BackendUnavailableError

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &backendErr):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
