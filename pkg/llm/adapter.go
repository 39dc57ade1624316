package llm

import "context"

// Default output-token budgets per call kind. Questions are short, feedback
// is a paragraph, the overall summary is comprehensive.
const (
	MaxTokensQuestion = 200
	MaxTokensFeedback = 300
	MaxTokensDefault  = 250
	MaxTokensSummary  = 800
)

// Adapter defines the contract for any structured-response language model.
// The returned text is expected to parse as a JSON object (possibly wrapped
// in a fenced code block, which ParseObject strips).
type Adapter interface {
	// Name returns the adapter name for logging/metrics.
	Name() string
	// Generate sends one prompt and returns the raw model text.
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}
