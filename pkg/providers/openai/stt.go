package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/hireloop/hireloop/pkg/adapters/stt"
	"github.com/hireloop/hireloop/pkg/audio"
	"github.com/hireloop/hireloop/pkg/errorsx"
)

// Transcriber submits utterances to the Whisper transcription endpoint.
type Transcriber struct {
	APIKey   string
	Model    string
	Language string
	BaseURL  string
	Client   *http.Client
}

func NewTranscriber(apiKey string, cfg stt.Config) *Transcriber {
	return &Transcriber{
		APIKey:   apiKey,
		Model:    "whisper-1",
		Language: cfg.Language,
		BaseURL:  defaultBaseURL,
		Client:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (t *Transcriber) Name() string { return "openai_whisper" }

func (t *Transcriber) Transcribe(ctx context.Context, container *audio.Container) (string, error) {
	if t.APIKey == "" {
		return "", errorsx.New("openai api key not configured", errorsx.ReasonSTTTranscribe)
	}
	if container == nil || len(container.Payload()) == 0 {
		return "", stt.ErrNoSpeech
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "utterance.wav")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(container.Bytes()); err != nil {
		return "", err
	}
	_ = w.WriteField("model", t.Model)
	// Whisper auto-detects English; only pin other languages.
	if t.Language != "" && t.Language != "en" {
		_ = w.WriteField("language", t.Language)
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+t.APIKey)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := t.client().Do(req)
	if err != nil {
		return "", errorsx.Wrap(err, errorsx.ReasonSTTTranscribe)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return "", errorsx.Wrap(errors.New("whisper: "+resp.Status+": "+string(raw)), errorsx.ReasonSTTTranscribe)
	}
	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errorsx.Wrap(err, errorsx.ReasonSTTTranscribe)
	}
	text := strings.TrimSpace(out.Text)
	if text == "" {
		return "", stt.ErrNoSpeech
	}
	return text, nil
}

func (t *Transcriber) client() *http.Client {
	if t.Client != nil {
		return t.Client
	}
	return http.DefaultClient
}
