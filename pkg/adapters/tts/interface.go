package tts

import (
	"context"
	"io"
)

// Synthesizer defines the contract for any text-to-speech vendor.
type Synthesizer interface {
	// Name returns the adapter name for logging/metrics.
	Name() string
	// Format names the container format of the produced audio (e.g. "mp3").
	Format() string
	// Synthesize converts text to an audio byte stream. The caller owns the
	// returned reader and must close it.
	Synthesize(ctx context.Context, text, voiceID string) (io.ReadCloser, error)
}
