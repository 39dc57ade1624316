// Package speech frames synthesized audio for a client connection: one
// audio_start marker declaring the format, the audio itself in ordered chunks,
// then one audio_end marker. A client can rely on the pairing: an end marker
// means the utterance between the markers is complete.
package speech

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/hireloop/hireloop/pkg/adapters/tts"
	"github.com/hireloop/hireloop/pkg/errorsx"
	"github.com/hireloop/hireloop/pkg/logging"
)

// DefaultChunkSize keeps individual frames small enough for browser clients
// to begin playback while the rest of the utterance is still in flight.
const DefaultChunkSize = 8 * 1024

// EventSink is the write side of one client connection. Implementations
// serialize their own writes; the streamer calls them strictly in order.
type EventSink interface {
	// WriteEvent sends a JSON control event.
	WriteEvent(v any) error
	// WriteAudio sends one binary audio chunk.
	WriteAudio(chunk []byte) error
}

// AudioStart announces that binary audio chunks follow.
type AudioStart struct {
	Type   string `json:"type"`
	Format string `json:"format"`
}

// AudioEnd closes an utterance. It is sent only after every chunk of a
// successful synthesis; a failed synthesis never produces one.
type AudioEnd struct {
	Type   string `json:"type"`
	Chunks int    `json:"chunks"`
}

// ErrorEvent replaces audio when synthesis fails. The session stays alive;
// the client simply shows the text it already has.
type ErrorEvent struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	ReasonCode string `json:"reason_code"`
}

// Streamer turns text into framed audio on an EventSink.
type Streamer struct {
	synth     tts.Synthesizer
	chunkSize int
	logger    *slog.Logger
}

func NewStreamer(synth tts.Synthesizer, chunkSize int, logger *slog.Logger) *Streamer {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Streamer{
		synth:     synth,
		chunkSize: chunkSize,
		logger:    logging.NewComponentLogger(logger, "speech_streamer"),
	}
}

// Stream synthesizes text and writes the framed result to sink. Synthesis
// failure emits an error event instead of audio and returns the fault for the
// caller's log; sink write failures are returned without an error event since
// the connection is already gone. A panic inside a synthesizer is contained
// here and converted to the same error-event path.
func (s *Streamer) Stream(ctx context.Context, sink EventSink, text, voiceID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errorsx.New(fmt.Sprintf("synthesizer panic: %v", r), errorsx.ReasonTTSSynthesize)
			s.sendError(sink, err)
		}
	}()

	if strings.TrimSpace(text) == "" {
		return nil
	}

	body, err := s.synth.Synthesize(ctx, text, voiceID)
	if err != nil {
		err = errorsx.Wrap(err, errorsx.ReasonTTSSynthesize)
		s.logger.Error("synthesis failed",
			slog.String("synthesizer", s.synth.Name()),
			slog.String("error", err.Error()))
		s.sendError(sink, err)
		return err
	}
	defer body.Close()

	if werr := sink.WriteEvent(AudioStart{Type: "audio_start", Format: s.synth.Format()}); werr != nil {
		return errorsx.Wrap(werr, errorsx.ReasonTransportSend)
	}

	buf := make([]byte, s.chunkSize)
	chunks := 0
	for {
		n, rerr := io.ReadFull(body, buf)
		if n > 0 {
			if werr := sink.WriteAudio(buf[:n]); werr != nil {
				return errorsx.Wrap(werr, errorsx.ReasonTransportSend)
			}
			chunks++
		}
		if rerr == io.EOF || rerr == io.ErrUnexpectedEOF {
			break
		}
		if rerr != nil {
			// Mid-stream failure: no end marker, so the client knows the
			// utterance is truncated.
			rerr = errorsx.Wrap(rerr, errorsx.ReasonTTSSynthesize)
			s.sendError(sink, rerr)
			return rerr
		}
	}

	if werr := sink.WriteEvent(AudioEnd{Type: "audio_end", Chunks: chunks}); werr != nil {
		return errorsx.Wrap(werr, errorsx.ReasonTransportSend)
	}
	return nil
}

func (s *Streamer) sendError(sink EventSink, err error) {
	_ = sink.WriteEvent(ErrorEvent{
		Type:       "error",
		Message:    "speech synthesis unavailable",
		ReasonCode: string(errorsx.Reason(err)),
	})
}
