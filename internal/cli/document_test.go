package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command against a test server and returns its output.
func run(t *testing.T, srvURL string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append([]string{"--server", srvURL, "--token", "tok"}, args...))
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"upload", "list", "delete", "ask", "explain"} {
		assert.Contains(t, names, want)
	}
}

func TestUploadCmd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		json.NewEncoder(w).Encode(map[string]any{"id": 4, "title": header.Filename, "summary": "short"})
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "report.md")
	require.NoError(t, os.WriteFile(path, []byte("# Report"), 0o644))

	out, err := run(t, srv.URL, "upload", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Uploaded report.md as document 4")
	assert.Contains(t, out, "short")
}

func TestUploadCmd_MissingFile(t *testing.T) {
	_, err := run(t, "http://127.0.0.1:1", "upload", filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorContains(t, err, "failed to open file")
}

func TestListCmd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":2,"title":"b.txt","created_at":"2024-05-01T10:00:00Z"},{"id":1,"title":"a.txt","created_at":"2024-04-01T10:00:00Z"}]`))
	}))
	defer srv.Close()

	out, err := run(t, srv.URL, "list")

	require.NoError(t, err)
	assert.Contains(t, out, "2\tb.txt\t2024-05-01 10:00")
	assert.Contains(t, out, "Total: 2 documents")
}

func TestListCmd_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	out, err := run(t, srv.URL, "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No documents found")
}

func TestDeleteCmd(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		w.Write([]byte(`{"message":"Document deleted successfully"}`))
	}))
	defer srv.Close()

	out, err := run(t, srv.URL, "delete", "7")

	require.NoError(t, err)
	assert.Equal(t, "DELETE /api/documents/7", gotPath)
	assert.Contains(t, out, "Deleted document 7")
}

func TestDeleteCmd_InvalidID(t *testing.T) {
	_, err := run(t, "http://127.0.0.1:1", "delete", "abc")
	assert.ErrorContains(t, err, "invalid document id")
}

func TestAskCmd_JoinsQuestionWords(t *testing.T) {
	var question string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		question = body["question"]
		w.Write([]byte(`{"answer":"Paris"}`))
	}))
	defer srv.Close()

	out, err := run(t, srv.URL, "ask", "3", "what", "is", "the", "capital?")

	require.NoError(t, err)
	assert.Equal(t, "what is the capital?", question)
	assert.Equal(t, "Paris\n", out)
}

func TestAskCmd_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"document not found"}`))
	}))
	defer srv.Close()

	_, err := run(t, srv.URL, "ask", "3", "hi")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "document not found")
}

func TestExplainCmd(t *testing.T) {
	var concepts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string][]string
		json.NewDecoder(r.Body).Decode(&body)
		concepts = body["concepts"]
		w.Write([]byte(`{"explanations":"done"}`))
	}))
	defer srv.Close()

	out, err := run(t, srv.URL, "explain", "3", "goroutine", "channel")

	require.NoError(t, err)
	assert.Equal(t, []string{"goroutine", "channel"}, concepts)
	assert.Contains(t, out, "done")
}

func TestAskCmd_RequiresQuestion(t *testing.T) {
	_, err := run(t, "http://127.0.0.1:1", "ask", "3")
	assert.ErrorContains(t, err, "requires at least 2 arg(s)")
}
