package ingestion_engine

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_Windows(t *testing.T) {
	tests := []struct {
		name    string
		length  int
		window  int
		lengths []int
	}{
		{"exact multiple", 2000, 1000, []int{1000, 1000}},
		{"short tail", 1200, 1000, []int{1000, 200}},
		{"shorter than window", 10, 1000, []int{10}},
		{"window of one", 3, 1, []int{1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := strings.Repeat("x", tt.length)
			chunks := Chunk(text, tt.window)

			require.Len(t, chunks, len(tt.lengths))
			for i, want := range tt.lengths {
				assert.Len(t, chunks[i], want)
			}
			assert.Equal(t, text, strings.Join(chunks, ""))
		})
	}
}

func TestChunk_Empty(t *testing.T) {
	assert.Empty(t, Chunk("", 1000))
}

func TestChunk_CountsCharactersNotBytes(t *testing.T) {
	text := strings.Repeat("é", 1500)

	chunks := Chunk(text, 1000)

	require.Len(t, chunks, 2)
	assert.Equal(t, 1000, utf8.RuneCountInString(chunks[0]))
	assert.Equal(t, 500, utf8.RuneCountInString(chunks[1]))
	assert.Equal(t, text, chunks[0]+chunks[1])
}

func TestChunk_KeepsInvalidBytes(t *testing.T) {
	text := "ab\xffcd"
	chunks := Chunk(text, 2)
	assert.Equal(t, text, strings.Join(chunks, ""))
	assert.Equal(t, []string{"ab", "\xffc", "d"}, chunks)
}

func TestChunk_DefaultWindow(t *testing.T) {
	chunks := Chunk(strings.Repeat("y", DefaultChunkWindow+1), 0)
	require.Len(t, chunks, 2)
	assert.Len(t, chunks[1], 1)
}

func TestPrefix(t *testing.T) {
	assert.Equal(t, "", prefix("", 1000))
	assert.Equal(t, "abc", prefix("abc", 1000))
	assert.Equal(t, "ab", prefix("abc", 2))
	assert.Equal(t, "żó", prefix("żółw", 2))
}
