package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/hireloop/hireloop/pkg/errorsx"
)

type Config struct {
	APIKey       string `mapstructure:"api_key"`
	ModelID      string `mapstructure:"model_id"`
	OutputFormat string `mapstructure:"output_format"`
}

func (c Config) withDefaults() Config {
	if c.ModelID == "" {
		c.ModelID = "eleven_turbo_v2_5"
	}
	if c.OutputFormat == "" {
		c.OutputFormat = "mp3_44100_128"
	}
	return c
}

// Synthesizer streams speech from the ElevenLabs HTTP streaming endpoint.
type Synthesizer struct {
	cfg    Config
	client *http.Client
}

func New(cfg Config) *Synthesizer {
	return &Synthesizer{
		cfg: cfg.withDefaults(),
		// No client timeout; the response body is a long-lived stream.
		client: &http.Client{},
	}
}

func (s *Synthesizer) Name() string   { return "elevenlabs" }
func (s *Synthesizer) Format() string { return "mp3" }

func (s *Synthesizer) Synthesize(ctx context.Context, text, voiceID string) (io.ReadCloser, error) {
	if s.cfg.APIKey == "" {
		return nil, errorsx.New("elevenlabs api key not configured", errorsx.ReasonTTSSynthesize)
	}
	voice := MapVoice(voiceID)

	u := url.URL{
		Scheme: "https",
		Host:   "api.elevenlabs.io",
		Path:   "/v1/text-to-speech/" + voice + "/stream",
	}
	q := u.Query()
	q.Set("output_format", s.cfg.OutputFormat)
	u.RawQuery = q.Encode()

	payload := map[string]any{
		"model_id": s.cfg.ModelID,
		"text":     text,
		"voice_settings": map[string]any{
			"stability":        0.5,
			"similarity_boost": 0.8,
		},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonTTSSynthesize)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, errorsx.Wrap(errors.New("elevenlabs: "+resp.Status+": "+string(raw)), errorsx.ReasonTTSSynthesize)
	}
	return resp.Body, nil
}
