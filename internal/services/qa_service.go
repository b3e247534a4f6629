package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/markdave123-py/docqa/internal/core"
)

const answerSystemPrompt = "You are an assistant that answers questions using only the document content provided. " +
	"If the answer is not in the content, say that you cannot find it in the document."

// QAService answers questions and explains concepts against a document's full content.
type QAService struct {
	llm core.LLMProvider
}

func NewQAService(llm core.LLMProvider) *QAService {
	return &QAService{llm: llm}
}

// Answer grounds the question in content. The whole content is sent; there is
// no retrieval step. Backend failures are returned, never replaced.
func (s *QAService) Answer(ctx context.Context, content, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("%w: question is empty", core.ErrInvalidInput)
	}

	userPrompt := fmt.Sprintf("Based on the following context:\n%s\n\nAnswer this question:\n%s", content, question)
	return s.llm.Generate(ctx, answerSystemPrompt, userPrompt)
}

// Explain asks for an explanation of each concept drawn from content.
func (s *QAService) Explain(ctx context.Context, content string, concepts []string) (string, error) {
	cleaned := make([]string, 0, len(concepts))
	for _, c := range concepts {
		if c = strings.TrimSpace(c); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	if len(cleaned) == 0 {
		return "", fmt.Errorf("%w: no concepts given", core.ErrInvalidInput)
	}

	list, err := json.MarshalIndent(cleaned, "", "  ")
	if err != nil {
		return "", err
	}

	userPrompt := fmt.Sprintf("For these concepts, provide explanations from the content:\n\nContent:\n%s\n\nConcepts:\n%s\n\nExplanations:", content, list)
	return s.llm.Generate(ctx, "", userPrompt)
}
