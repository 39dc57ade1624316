package mock

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// Synthesizer returns canned audio bytes for tests.
type Synthesizer struct {
	mu    sync.Mutex
	Audio []byte
	Err   error
	Texts []string
}

func (m *Synthesizer) Name() string   { return "mock_tts" }
func (m *Synthesizer) Format() string { return "mp3" }

func (m *Synthesizer) Synthesize(ctx context.Context, text, voiceID string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Texts = append(m.Texts, text)
	if m.Err != nil {
		return nil, m.Err
	}
	return io.NopCloser(bytes.NewReader(m.Audio)), nil
}

func (m *Synthesizer) SpokenTexts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Texts...)
}
