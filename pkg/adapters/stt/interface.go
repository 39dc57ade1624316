package stt

import (
	"context"
	"errors"

	"github.com/hireloop/hireloop/pkg/audio"
)

// ErrNoSpeech marks a "transcription failed" / "no speech detected" outcome.
// The pipeline discards the utterance silently instead of treating it as a
// candidate answer; it is not surfaced to the client.
var ErrNoSpeech = errors.New("no speech detected")

// Transcriber defines the contract for any speech-to-text vendor.
// Implementations return ErrNoSpeech (possibly wrapped) for recognized
// no-speech outcomes; any other error is a genuine fault.
type Transcriber interface {
	// Name returns the adapter name for logging/metrics.
	Name() string
	// Transcribe submits one fully buffered utterance and returns its text.
	Transcribe(ctx context.Context, container *audio.Container) (string, error)
}

// Config contains vendor-agnostic transcription configuration.
type Config struct {
	Language   string
	SampleRate int
}
