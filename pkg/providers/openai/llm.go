package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/hireloop/hireloop/pkg/errorsx"
)

const defaultBaseURL = "https://api.openai.com/v1"

// LLM calls the OpenAI chat completions API with JSON-object response
// formatting enforced.
type LLM struct {
	APIKey  string
	Model   string
	BaseURL string
	Client  *http.Client
}

func NewLLM(apiKey, model string) *LLM {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &LLM{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: defaultBaseURL,
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (a *LLM) Name() string { return "openai" }

func (a *LLM) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if a.APIKey == "" {
		return "", errorsx.New("openai api key not configured", errorsx.ReasonLLMGenerate)
	}
	payload := map[string]any{
		"model":       a.Model,
		"messages":    []map[string]any{{"role": "user", "content": prompt}},
		"max_tokens":  maxTokens,
		"temperature": 0.7,
		"response_format": map[string]any{
			"type": "json_object",
		},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+a.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client().Do(req)
	if err != nil {
		return "", errorsx.Wrap(err, errorsx.ReasonLLMGenerate)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", errorsx.Wrap(errors.New("openai: "+resp.Status+": "+string(body)), errorsx.ReasonLLMGenerate)
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errorsx.Wrap(err, errorsx.ReasonLLMGenerate)
	}
	choices, _ := out["choices"].([]any)
	if len(choices) == 0 {
		return "", errorsx.New("openai: empty choices", errorsx.ReasonLLMGenerate)
	}
	first, _ := choices[0].(map[string]any)
	msg, _ := first["message"].(map[string]any)
	content, _ := msg["content"].(string)
	if content == "" {
		return "", errorsx.New("openai: no content in response", errorsx.ReasonLLMGenerate)
	}
	return content, nil
}

func (a *LLM) client() *http.Client {
	if a.Client != nil {
		return a.Client
	}
	return http.DefaultClient
}
