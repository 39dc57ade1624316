package gemini

import (
	"context"
	"strings"

	"google.golang.org/genai"

	"github.com/hireloop/hireloop/pkg/errorsx"
)

const defaultModel = "gemini-2.0-flash"

// LLM wraps the Google GenAI client behind the structured-response contract.
type LLM struct {
	client *genai.Client
	model  string
}

func New(ctx context.Context, apiKey, model string) (*LLM, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errorsx.New("gemini api key is required", errorsx.ReasonLLMGenerate)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonLLMGenerate)
	}
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	return &LLM{client: client, model: model}, nil
}

func (g *LLM) Name() string { return "gemini" }

func (g *LLM) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if g == nil || g.client == nil {
		return "", errorsx.New("gemini client is not initialized", errorsx.ReasonLLMGenerate)
	}
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	if maxTokens > 0 {
		cfg.MaxOutputTokens = int32(maxTokens)
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", errorsx.Wrap(err, errorsx.ReasonLLMGenerate)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}
	out := strings.TrimSpace(builder.String())
	if out == "" {
		return "", errorsx.New("gemini returned an empty response", errorsx.ReasonLLMGenerate)
	}
	return out, nil
}
