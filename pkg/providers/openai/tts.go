package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/hireloop/hireloop/pkg/errorsx"
)

var openaiVoices = map[string]bool{
	"alloy": true, "echo": true, "fable": true,
	"onyx": true, "nova": true, "shimmer": true,
}

// Synthesizer streams speech from the OpenAI TTS endpoint as MP3.
type Synthesizer struct {
	APIKey  string
	Model   string
	BaseURL string
	Client  *http.Client
}

func NewSynthesizer(apiKey string) *Synthesizer {
	return &Synthesizer{
		APIKey:  apiKey,
		Model:   "tts-1",
		BaseURL: defaultBaseURL,
		// No client timeout; the response body is a long-lived stream.
		Client: &http.Client{},
	}
}

func (s *Synthesizer) Name() string   { return "openai_tts" }
func (s *Synthesizer) Format() string { return "mp3" }

func (s *Synthesizer) Synthesize(ctx context.Context, text, voiceID string) (io.ReadCloser, error) {
	if s.APIKey == "" {
		return nil, errorsx.New("openai api key not configured", errorsx.ReasonTTSSynthesize)
	}
	if !openaiVoices[voiceID] {
		voiceID = "alloy"
	}
	payload := map[string]any{
		"model":           s.Model,
		"voice":           voiceID,
		"input":           text,
		"response_format": "mp3",
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/audio/speech", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client().Do(req)
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonTTSSynthesize)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, errorsx.Wrap(errors.New("openai tts: "+resp.Status+": "+string(raw)), errorsx.ReasonTTSSynthesize)
	}
	return resp.Body, nil
}

func (s *Synthesizer) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return http.DefaultClient
}
