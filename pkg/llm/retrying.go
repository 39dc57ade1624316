package llm

import "context"

type retryingAdapter struct {
	inner Adapter
	cfg   RetryConfig
}

// WithRetry wraps an adapter so transient generation failures are retried
// with exponential backoff. Context cancellation and deadline expiry are not
// retried; the turn budget owns those.
func WithRetry(inner Adapter, cfg RetryConfig) Adapter {
	return &retryingAdapter{inner: inner, cfg: cfg}
}

func (a *retryingAdapter) Name() string { return a.inner.Name() }

func (a *retryingAdapter) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return Retry(ctx, a.cfg, func(ctx context.Context) (string, error) {
		return a.inner.Generate(ctx, prompt, maxTokens)
	})
}
