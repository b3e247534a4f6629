package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/markdave123-py/docqa/internal/core"
	"github.com/markdave123-py/docqa/internal/metrics"
)

// RetryingLLM wraps a provider with bounded retries and exponential backoff:
// at most 1+maxRetries calls, waiting delay, 2*delay, 4*delay, ... between them.
type RetryingLLM struct {
	next       core.LLMProvider
	provider   string
	maxRetries int
	delay      time.Duration
	logger     *slog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewRetryingLLM(next core.LLMProvider, provider string, maxRetries int, delay time.Duration, logger *slog.Logger) *RetryingLLM {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &RetryingLLM{
		next:       next,
		provider:   provider,
		maxRetries: maxRetries,
		delay:      delay,
		logger:     logger.With("component", "llm", "provider", provider),
		sleep:      sleepContext,
	}
}

func (r *RetryingLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			wait := r.delay << (attempt - 1)
			r.logger.Warn("retrying completion", "attempt", attempt+1, "wait", wait, "error", lastErr)
			metrics.LLMRequests.WithLabelValues(r.provider, "retry").Inc()
			if err := r.sleep(ctx, wait); err != nil {
				break
			}
		}

		attempts++
		text, err := r.next.Generate(ctx, systemPrompt, userPrompt)
		if err == nil {
			metrics.LLMRequests.WithLabelValues(r.provider, "success").Inc()
			return text, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	metrics.LLMRequests.WithLabelValues(r.provider, "failure").Inc()
	return "", &core.BackendUnavailableError{Provider: r.provider, Attempts: attempts, Err: unwrapBackend(ctx, lastErr)}
}

// unwrapBackend strips a per-call BackendUnavailableError so the outer one
// carries the real cause.
func unwrapBackend(ctx context.Context, err error) error {
	if err == nil {
		return ctx.Err()
	}
	var be *core.BackendUnavailableError
	if errors.As(err, &be) && be.Err != nil {
		return be.Err
	}
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
