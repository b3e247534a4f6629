package models

import (
	"time"
)

// Document is an uploaded file together with its extracted text and summary.
type Document struct {
	ID        int64     `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"` // original filename, not unique
	Content   string    `db:"content" json:"content"`
	FilePath  string    `db:"file_path" json:"file_path"`
	Summary   *string   `db:"summary" json:"summary"`
	OwnerID   string    `db:"owner_id" json:"owner_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ChunkJob is the unit of background chunk accounting submitted after ingestion.
type ChunkJob struct {
	ID         string    `json:"id"`
	Path       string    `json:"path"`
	Content    string    `json:"content"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}
