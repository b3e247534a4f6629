package ingestion_engine

// Chunk splits text into consecutive windows of windowSize characters.
// Every chunk but the last holds exactly windowSize characters and the
// chunks concatenate back to text. Empty text yields no chunks.
func Chunk(text string, windowSize int) []string {
	if windowSize <= 0 {
		windowSize = DefaultChunkWindow
	}
	if text == "" {
		return nil
	}

	var (
		chunks []string
		start  int
		count  int
	)
	// Slicing on rune boundaries of the original string keeps invalid
	// byte sequences intact.
	for i := range text {
		if count == windowSize {
			chunks = append(chunks, text[start:i])
			start = i
			count = 0
		}
		count++
	}
	return append(chunks, text[start:])
}

// prefix returns at most n leading characters of text.
func prefix(text string, n int) string {
	if n <= 0 {
		return text
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}
