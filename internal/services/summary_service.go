package services

import (
	"context"
	"fmt"

	"github.com/markdave123-py/docqa/internal/core"
)

var _ core.Summarizer = (*SummaryService)(nil)

type SummaryService struct {
	llm core.LLMProvider
}

func NewSummaryService(llm core.LLMProvider) *SummaryService {
	return &SummaryService{llm: llm}
}

// Summarize asks the backend for a summary of text. The ingestion pipeline
// hands over only the leading characters. Backend errors are returned unchanged.
func (s *SummaryService) Summarize(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf("Generate a summary of the following text:\n%s", text)
	return s.llm.Generate(ctx, "", prompt)
}
