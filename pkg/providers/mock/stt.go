package mock

import (
	"context"
	"sync"

	"github.com/hireloop/hireloop/pkg/audio"
)

// Transcriber returns a fixed transcript or error for tests.
type Transcriber struct {
	mu    sync.Mutex
	Text  string
	Err   error
	Calls int
}

func (m *Transcriber) Name() string { return "mock_stt" }

func (m *Transcriber) Transcribe(ctx context.Context, container *audio.Container) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return "", m.Err
	}
	return m.Text, nil
}

func (m *Transcriber) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}
