package ingestion_engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/docqa/internal/core"
	objectclient "github.com/markdave123-py/docqa/internal/core/object-client"
	"github.com/markdave123-py/docqa/internal/core/taskqueue"
	"github.com/markdave123-py/docqa/internal/logger"
	"github.com/markdave123-py/docqa/internal/models"
)

type fakeSummarizer struct {
	mu     sync.Mutex
	inputs []string
	out    string
	err    error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, text)
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

type failingStore struct {
	core.ObjectClient
}

func (failingStore) UploadFile(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	return "", errors.New("disk full")
}

type closedQueue struct{}

func (closedQueue) Submit(ctx context.Context, job models.ChunkJob) error { return core.ErrQueueClosed }
func (closedQueue) Receive(ctx context.Context) (models.ChunkJob, error) {
	return models.ChunkJob{}, core.ErrQueueClosed
}
func (closedQueue) Close() error { return nil }

type pipelineFixture struct {
	ingestor   *DocumentIngestor
	store      *objectclient.FilesystemClient
	queue      *taskqueue.MemoryQueue
	summarizer *fakeSummarizer
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	store, err := objectclient.NewFilesystemClient(t.TempDir(), logger.Discard())
	require.NoError(t, err)

	queue := taskqueue.NewMemoryQueue(4)
	summarizer := &fakeSummarizer{out: "a short summary"}
	ing := NewDocumentIngestor(store, NewDocumentExtractor(logger.Discard()), summarizer, queue, nil, logger.Discard())

	return &pipelineFixture{ingestor: ing, store: store, queue: queue, summarizer: summarizer}
}

func TestProcess_PlainTextUpload(t *testing.T) {
	f := newPipelineFixture(t)
	body := strings.Repeat("a", 1200)

	res, err := f.ingestor.Process(context.Background(), UploadedFile{Filename: "note.txt", Data: []byte(body)})

	require.NoError(t, err)
	assert.Equal(t, body, res.Content)
	assert.Equal(t, "uploads/note.txt", res.StoredPath)
	assert.Equal(t, "a short summary", res.Summary)

	stored, err := f.store.GetFile(context.Background(), res.StoredPath)
	require.NoError(t, err)
	assert.Equal(t, body, string(stored))

	require.Len(t, f.summarizer.inputs, 1)
	assert.Len(t, f.summarizer.inputs[0], DefaultSummaryPrefix)

	require.Equal(t, 1, f.queue.Len())
	job, err := f.queue.Receive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, res.StoredPath, job.Path)
	assert.NotEmpty(t, job.ID)

	chunks := Chunk(job.Content, DefaultChunkWindow)
	require.Len(t, chunks, 2)
	assert.Len(t, chunks[0], 1000)
	assert.Len(t, chunks[1], 200)
}

func TestProcess_UnknownExtensionStoresEmptyContent(t *testing.T) {
	f := newPipelineFixture(t)

	res, err := f.ingestor.Process(context.Background(), UploadedFile{Filename: "note.xyz", Data: []byte("whatever")})

	require.NoError(t, err)
	assert.Equal(t, "", res.Content)
	assert.Equal(t, "a short summary", res.Summary)
	require.Len(t, f.summarizer.inputs, 1)
	assert.Equal(t, "", f.summarizer.inputs[0])

	_, err = f.store.GetFile(context.Background(), "uploads/note.xyz")
	assert.NoError(t, err)
}

func TestProcess_UppercaseExtensionIsUnknown(t *testing.T) {
	f := newPipelineFixture(t)

	res, err := f.ingestor.Process(context.Background(), UploadedFile{Filename: "NOTE.TXT", Data: []byte("hello")})

	require.NoError(t, err)
	assert.Equal(t, "", res.Content)
}

func TestProcess_SummaryFailureUsesFallback(t *testing.T) {
	f := newPipelineFixture(t)
	f.summarizer.err = &core.BackendUnavailableError{Provider: "ollama", Attempts: 4, Err: errors.New("connection refused")}

	res, err := f.ingestor.Process(context.Background(), UploadedFile{Filename: "note.txt", Data: []byte("hello world")})

	require.NoError(t, err)
	assert.Equal(t, SummaryFallback, res.Summary)
	assert.Equal(t, "hello world", res.Content)
}

func TestProcess_ExtractionFailureAborts(t *testing.T) {
	f := newPipelineFixture(t)

	_, err := f.ingestor.Process(context.Background(), UploadedFile{Filename: "broken.docx", Data: []byte("not a zip")})

	var extErr *core.ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, "uploads/broken.docx", extErr.Path)
	assert.Empty(t, f.summarizer.inputs)
	assert.Equal(t, 0, f.queue.Len())

	_, err = f.store.GetFile(context.Background(), "uploads/broken.docx")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestProcess_StorageFailureAborts(t *testing.T) {
	f := newPipelineFixture(t)
	f.ingestor.obj = failingStore{}

	_, err := f.ingestor.Process(context.Background(), UploadedFile{Filename: "note.txt", Data: []byte("hi")})

	var storeErr *core.StorageError
	require.ErrorAs(t, err, &storeErr)
	assert.Empty(t, f.summarizer.inputs)
}

func TestProcess_QueueFailureDoesNotFailUpload(t *testing.T) {
	f := newPipelineFixture(t)
	f.ingestor.queue = closedQueue{}

	res, err := f.ingestor.Process(context.Background(), UploadedFile{Filename: "note.txt", Data: []byte("hi")})

	require.NoError(t, err)
	assert.Equal(t, "hi", res.Content)
}

func TestProcess_FullQueueDropsJob(t *testing.T) {
	f := newPipelineFixture(t)
	for i := 0; i < 4; i++ {
		require.NoError(t, f.queue.Submit(context.Background(), models.ChunkJob{ID: fmt.Sprint(i)}))
	}

	res, err := f.ingestor.Process(context.Background(), UploadedFile{Filename: "note.txt", Data: []byte("hi")})

	require.NoError(t, err)
	assert.Equal(t, "hi", res.Content)
	assert.Equal(t, 4, f.queue.Len())
}

func TestProcess_FilenameIsReducedToBaseName(t *testing.T) {
	f := newPipelineFixture(t)

	res, err := f.ingestor.Process(context.Background(), UploadedFile{Filename: "../../etc/passwd.txt", Data: []byte("x")})

	require.NoError(t, err)
	assert.Equal(t, "uploads/passwd.txt", res.StoredPath)
}

func TestProcess_RejectsEmptyFilename(t *testing.T) {
	f := newPipelineFixture(t)

	for _, name := range []string{"", "..", "/"} {
		_, err := f.ingestor.Process(context.Background(), UploadedFile{Filename: name, Data: []byte("x")})
		assert.ErrorIs(t, err, core.ErrInvalidInput, "filename %q", name)
	}
}

func TestProcess_ConcurrentSameNameUploads(t *testing.T) {
	f := newPipelineFixture(t)
	f.queue = taskqueue.NewMemoryQueue(16)
	f.ingestor.queue = f.queue

	bodies := []string{strings.Repeat("A", 4096), strings.Repeat("B", 4096)}
	var wg sync.WaitGroup
	errs := make([]error, len(bodies))
	for i, body := range bodies {
		wg.Add(1)
		go func(i int, body string) {
			defer wg.Done()
			_, errs[i] = f.ingestor.Process(context.Background(), UploadedFile{Filename: "same.txt", Data: []byte(body)})
		}(i, body)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	stored, err := f.store.GetFile(context.Background(), "uploads/same.txt")
	require.NoError(t, err)
	assert.Contains(t, bodies, string(stored))
}
