package deepgram

import (
	"bytes"
	"context"
	"strings"

	listenapi "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/rest"
	interfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	client "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/listen"

	"github.com/hireloop/hireloop/pkg/adapters/stt"
	"github.com/hireloop/hireloop/pkg/audio"
	"github.com/hireloop/hireloop/pkg/errorsx"
)

type Config struct {
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	Language string `mapstructure:"language"`
}

func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = "nova-2"
	}
	if c.Language == "" {
		c.Language = "en"
	}
	return c
}

// Transcriber submits fully buffered utterances to the Deepgram prerecorded
// endpoint. The realtime interview buffers whole utterances anyway, so batch
// transcription of one WAV per turn is a better fit than a streaming socket.
type Transcriber struct {
	cfg Config
	api *listenapi.Client
}

func New(cfg Config) *Transcriber {
	cfg = cfg.withDefaults()
	c := client.NewREST(cfg.APIKey, &interfaces.ClientOptions{})
	return &Transcriber{
		cfg: cfg,
		api: listenapi.New(c),
	}
}

func (t *Transcriber) Name() string { return "deepgram" }

func (t *Transcriber) Transcribe(ctx context.Context, container *audio.Container) (string, error) {
	if t.cfg.APIKey == "" {
		return "", errorsx.New("deepgram api key not configured", errorsx.ReasonSTTTranscribe)
	}
	if container == nil || len(container.Payload()) == 0 {
		return "", stt.ErrNoSpeech
	}

	options := &interfaces.PreRecordedTranscriptionOptions{
		Model:       t.cfg.Model,
		Language:    t.cfg.Language,
		SmartFormat: true,
	}
	res, err := t.api.FromStream(ctx, bytes.NewReader(container.Bytes()), options)
	if err != nil {
		return "", errorsx.Wrap(err, errorsx.ReasonSTTTranscribe)
	}
	if res == nil || res.Results == nil || len(res.Results.Channels) == 0 {
		return "", stt.ErrNoSpeech
	}
	alts := res.Results.Channels[0].Alternatives
	if len(alts) == 0 {
		return "", stt.ErrNoSpeech
	}
	text := strings.TrimSpace(alts[0].Transcript)
	if text == "" {
		return "", stt.ErrNoSpeech
	}
	return text, nil
}
