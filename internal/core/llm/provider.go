package llm

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/markdave123-py/docqa/internal/config"
	"github.com/markdave123-py/docqa/internal/core"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewProvider builds the configured completion backend wrapped in retries.
// The returned closer releases the underlying client.
func NewProvider(ctx context.Context, cfg *config.Config, logger *slog.Logger) (core.LLMProvider, io.Closer, error) {
	switch cfg.LLMProvider {
	case "ollama", "":
		base := NewOllamaLLM(cfg.OllamaBaseURL, cfg.OllamaModel, cfg.OllamaTimeout)
		return NewRetryingLLM(base, "ollama", cfg.OllamaMaxRetries, cfg.OllamaRetryDelay, logger), nopCloser{}, nil
	case "gemini":
		base, err := NewGeminiLLM(ctx, cfg.AIAPIKey, cfg.GenModel)
		if err != nil {
			return nil, nil, fmt.Errorf("couldn't initialize gemini: %w", err)
		}
		return NewRetryingLLM(base, "gemini", cfg.OllamaMaxRetries, cfg.OllamaRetryDelay, logger), base, nil
	default:
		return nil, nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}
