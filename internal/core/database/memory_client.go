package db

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/markdave123-py/docqa/internal/core"
	"github.com/markdave123-py/docqa/internal/models"
)

var _ core.DbClient = (*MemoryClient)(nil)

// MemoryClient is a process-local document store for development and tests.
type MemoryClient struct {
	mu     sync.RWMutex
	docs   map[int64]models.Document
	nextID int64
	now    func() time.Time
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{docs: make(map[int64]models.Document), now: time.Now}
}

func (m *MemoryClient) CreateDocument(ctx context.Context, doc *models.Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	doc.ID = m.nextID
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = m.now().UTC()
	}
	m.docs[doc.ID] = cloneDocument(*doc)
	return nil
}

// ListDocumentsByOwner returns the owner's documents, newest first.
func (m *MemoryClient) ListDocumentsByOwner(ctx context.Context, ownerID string) ([]models.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Document{}
	for _, d := range m.docs {
		if d.OwnerID == ownerID {
			out = append(out, cloneDocument(d))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryClient) GetDocumentByIDAndOwner(ctx context.Context, id int64, ownerID string) (*models.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.docs[id]
	if !ok || d.OwnerID != ownerID {
		return nil, core.ErrNotFound
	}
	out := cloneDocument(d)
	return &out, nil
}

func (m *MemoryClient) DeleteDocument(ctx context.Context, id int64, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.docs[id]
	if !ok || d.OwnerID != ownerID {
		return core.ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

func (m *MemoryClient) Close() error { return nil }

func cloneDocument(d models.Document) models.Document {
	if d.Summary != nil {
		s := *d.Summary
		d.Summary = &s
	}
	return d
}
