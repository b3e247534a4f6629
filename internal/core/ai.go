package core

import "context"

// LLMProvider is the completion backend: a prompt in, generated text out.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// Summarizer produces a summary for the leading text of a document.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}
