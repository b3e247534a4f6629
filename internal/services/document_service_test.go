package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/docqa/internal/core"
	db "github.com/markdave123-py/docqa/internal/core/database"
	"github.com/markdave123-py/docqa/internal/core/ingestion_engine"
	objectclient "github.com/markdave123-py/docqa/internal/core/object-client"
	"github.com/markdave123-py/docqa/internal/core/taskqueue"
	"github.com/markdave123-py/docqa/internal/logger"
	"github.com/markdave123-py/docqa/internal/models"
)

// flakyStore wraps a DbClient and fails the chosen operations.
type flakyStore struct {
	core.DbClient
	failCreate bool
	failDelete bool
}

func (s *flakyStore) CreateDocument(ctx context.Context, doc *models.Document) error {
	if s.failCreate {
		return errors.New("connection reset")
	}
	return s.DbClient.CreateDocument(ctx, doc)
}

func (s *flakyStore) DeleteDocument(ctx context.Context, id int64, ownerID string) error {
	if s.failDelete {
		return errors.New("connection reset")
	}
	return s.DbClient.DeleteDocument(ctx, id, ownerID)
}

type serviceFixture struct {
	svc   *DocumentService
	store *flakyStore
	files *objectclient.FilesystemClient
	llm   *fakeLLM
	queue *taskqueue.MemoryQueue
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	log := logger.Discard()

	files, err := objectclient.NewFilesystemClient(t.TempDir(), log)
	require.NoError(t, err)

	store := &flakyStore{DbClient: db.NewMemoryClient()}
	llm := &fakeLLM{reply: "generated"}
	queue := taskqueue.NewMemoryQueue(16)

	ingestor := ingestion_engine.NewDocumentIngestor(
		files,
		ingestion_engine.NewDocumentExtractor(log),
		NewSummaryService(llm),
		queue,
		&ingestion_engine.IngestConfig{UploadDir: "uploads", SummaryPrefix: 1000, ChunkWindow: 1000},
		log,
	)

	svc := NewDocumentService(store, files, ingestor, NewQAService(llm), log)
	return &serviceFixture{svc: svc, store: store, files: files, llm: llm, queue: queue}
}

func (f *serviceFixture) upload(t *testing.T, owner, name, body string) *models.Document {
	t.Helper()
	doc, err := f.svc.Upload(context.Background(), owner, ingestion_engine.UploadedFile{Filename: name, Data: []byte(body)})
	require.NoError(t, err)
	return doc
}

func TestDocumentService_UploadPersistsDocument(t *testing.T) {
	f := newServiceFixture(t)
	body := strings.Repeat("b", 1200)

	doc := f.upload(t, "u1", "note.txt", body)

	assert.NotZero(t, doc.ID)
	assert.Equal(t, "note.txt", doc.Title)
	assert.Equal(t, body, doc.Content)
	assert.Equal(t, "uploads/note.txt", doc.FilePath)
	require.NotNil(t, doc.Summary)
	assert.Equal(t, "generated", *doc.Summary)
	assert.Equal(t, "u1", doc.OwnerID)

	got, err := f.svc.Get(context.Background(), doc.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, body, got.Content)
	assert.Equal(t, 1, f.queue.Len())
}

func TestDocumentService_UploadWithBackendDownStoresFallback(t *testing.T) {
	f := newServiceFixture(t)
	f.llm.err = &core.BackendUnavailableError{Provider: "ollama", Attempts: 4, Err: errors.New("refused")}

	doc := f.upload(t, "u1", "note.txt", "hello")

	require.NotNil(t, doc.Summary)
	assert.Equal(t, ingestion_engine.SummaryFallback, *doc.Summary)
}

func TestDocumentService_UploadRollsBackFileWhenCreateFails(t *testing.T) {
	f := newServiceFixture(t)
	f.store.failCreate = true

	_, err := f.svc.Upload(context.Background(), "u1", ingestion_engine.UploadedFile{Filename: "note.txt", Data: []byte("hello")})

	var storageErr *core.StorageError
	require.ErrorAs(t, err, &storageErr)
	_, err = f.files.GetFile(context.Background(), "uploads/note.txt")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDocumentService_UploadExtractionFailure(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Upload(context.Background(), "u1", ingestion_engine.UploadedFile{Filename: "bad.docx", Data: []byte("nope")})

	var extErr *core.ExtractionError
	require.ErrorAs(t, err, &extErr)
	docs, err := f.svc.List(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, docs)

	_, err = f.files.GetFile(context.Background(), "uploads/bad.docx")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDocumentService_ListIsOwnerScoped(t *testing.T) {
	f := newServiceFixture(t)
	f.upload(t, "u1", "a.txt", "a")
	f.upload(t, "u1", "b.txt", "b")
	f.upload(t, "u2", "c.txt", "c")

	docs, err := f.svc.List(context.Background(), "u1")

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "b.txt", docs[0].Title)
	assert.Equal(t, "a.txt", docs[1].Title)
}

func TestDocumentService_Delete(t *testing.T) {
	f := newServiceFixture(t)
	doc := f.upload(t, "u1", "note.txt", "hello")

	require.NoError(t, f.svc.Delete(context.Background(), doc.ID, "u1"))

	_, err := f.svc.Get(context.Background(), doc.ID, "u1")
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = f.files.GetFile(context.Background(), doc.FilePath)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDocumentService_DeleteForeignDocument(t *testing.T) {
	f := newServiceFixture(t)
	doc := f.upload(t, "u1", "note.txt", "hello")

	err := f.svc.Delete(context.Background(), doc.ID, "u2")

	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = f.files.GetFile(context.Background(), doc.FilePath)
	assert.NoError(t, err)
}

func TestDocumentService_DeleteRestoresFileWhenRecordDeleteFails(t *testing.T) {
	f := newServiceFixture(t)
	doc := f.upload(t, "u1", "note.txt", "hello")
	f.store.failDelete = true

	err := f.svc.Delete(context.Background(), doc.ID, "u1")

	var storageErr *core.StorageError
	require.ErrorAs(t, err, &storageErr)

	data, err := f.files.GetFile(context.Background(), doc.FilePath)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = f.svc.Get(context.Background(), doc.ID, "u1")
	assert.NoError(t, err)
}

func TestDocumentService_DeleteWithMissingFile(t *testing.T) {
	f := newServiceFixture(t)
	doc := f.upload(t, "u1", "note.txt", "hello")
	require.NoError(t, f.files.DeleteFile(context.Background(), doc.FilePath))

	require.NoError(t, f.svc.Delete(context.Background(), doc.ID, "u1"))

	_, err := f.svc.Get(context.Background(), doc.ID, "u1")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDocumentService_Ask(t *testing.T) {
	f := newServiceFixture(t)
	doc := f.upload(t, "u1", "note.txt", "The sky is blue.")
	f.llm.reply = "blue"

	answer, err := f.svc.Ask(context.Background(), doc.ID, "u1", "What colour is the sky?")

	require.NoError(t, err)
	assert.Equal(t, "blue", answer)
	last := f.llm.calls[len(f.llm.calls)-1]
	assert.Contains(t, last.user, "The sky is blue.")
	assert.Contains(t, last.user, "What colour is the sky?")
}

func TestDocumentService_AskForeignDocumentNeverReachesBackend(t *testing.T) {
	f := newServiceFixture(t)
	doc := f.upload(t, "u1", "note.txt", "secret")
	before := f.llm.callCount()

	_, err := f.svc.Ask(context.Background(), doc.ID, "u2", "What is the secret?")

	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, 404, core.MapHTTPStatus(err))
	assert.Equal(t, before, f.llm.callCount())

	_, err = f.svc.Explain(context.Background(), doc.ID, "u2", []string{"secret"})
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, before, f.llm.callCount())
}

func TestDocumentService_AskBackendUnavailable(t *testing.T) {
	f := newServiceFixture(t)
	doc := f.upload(t, "u1", "note.txt", "content")
	f.llm.err = &core.BackendUnavailableError{Provider: "ollama", Attempts: 4, Err: errors.New("refused")}

	_, err := f.svc.Ask(context.Background(), doc.ID, "u1", "question")

	assert.Equal(t, 503, core.MapHTTPStatus(err))
}

func TestDocumentService_Explain(t *testing.T) {
	f := newServiceFixture(t)
	doc := f.upload(t, "u1", "note.txt", "Channels connect goroutines.")
	f.llm.reply = "channel: a pipe"

	out, err := f.svc.Explain(context.Background(), doc.ID, "u1", []string{"channel"})

	require.NoError(t, err)
	assert.Equal(t, "channel: a pipe", out)
}
