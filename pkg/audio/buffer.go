package audio

import (
	"log/slog"
	"math"
	"time"

	"github.com/hireloop/hireloop/pkg/logging"
)

// BufferConfig describes the PCM stream an UtteranceBuffer accumulates.
type BufferConfig struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
	// MinDuration is the shortest utterance worth transcribing.
	MinDuration time.Duration
	// SilenceRMS is the normalized energy floor below which a finalized
	// utterance is treated as background noise.
	SilenceRMS float64
}

func (c BufferConfig) withDefaults() BufferConfig {
	if c.SampleRate <= 0 {
		c.SampleRate = 16000
	}
	if c.Channels <= 0 {
		c.Channels = 1
	}
	if c.BitsPerSample <= 0 {
		c.BitsPerSample = 16
	}
	if c.MinDuration <= 0 {
		c.MinDuration = 500 * time.Millisecond
	}
	if c.SilenceRMS <= 0 {
		c.SilenceRMS = 0.01
	}
	return c
}

func (c BufferConfig) minBytes() int {
	bytesPerSecond := c.SampleRate * c.Channels * c.BitsPerSample / 8
	return int(float64(bytesPerSecond) * c.MinDuration.Seconds())
}

// UtteranceBuffer accumulates raw audio frames for one candidate turn and
// decides on finalize whether the accumulated audio is substantive speech.
// It is owned by a single transport connection and is not safe for
// concurrent use.
type UtteranceBuffer struct {
	cfg          BufferConfig
	chunks       [][]byte
	total        int
	lastActivity time.Time
	logger       *slog.Logger
}

func NewUtteranceBuffer(cfg BufferConfig, logger *slog.Logger) *UtteranceBuffer {
	return &UtteranceBuffer{
		cfg:    cfg.withDefaults(),
		logger: logging.NewComponentLogger(logger, "utterance_buffer"),
	}
}

// Append adds a chunk unconditionally.
func (b *UtteranceBuffer) Append(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	buf := make([]byte, len(chunk))
	copy(buf, chunk)
	b.chunks = append(b.chunks, buf)
	b.total += len(buf)
	b.lastActivity = time.Now()
}

// Len returns the accumulated byte count.
func (b *UtteranceBuffer) Len() int { return b.total }

// LastActivity returns when audio was last appended.
func (b *UtteranceBuffer) LastActivity() time.Time { return b.lastActivity }

// Finalize is invoked on an explicit end-of-speech signal. It returns a
// playable container when the accumulated audio passes the duration and
// energy heuristics, and nil when the buffer was discarded. The buffer is
// cleared completely either way.
func (b *UtteranceBuffer) Finalize() *Container {
	total := b.total
	if total == 0 {
		return nil
	}
	pcm := b.drain()

	if total < b.cfg.minBytes() {
		b.logger.Debug("utterance discarded: too short",
			slog.Int("bytes", total),
			slog.Int("min_bytes", b.cfg.minBytes()))
		return nil
	}
	if energy := RMS(pcm); energy < b.cfg.SilenceRMS {
		b.logger.Debug("utterance discarded: below silence threshold",
			slog.Float64("rms", energy),
			slog.Float64("threshold", b.cfg.SilenceRMS))
		return nil
	}

	container, err := Encode(pcm, b.cfg.SampleRate, b.cfg.Channels, b.cfg.BitsPerSample)
	if err != nil {
		// Unreachable with a defaulted config; treat like a discard.
		b.logger.Error("utterance encode failed", slog.String("error", err.Error()))
		return nil
	}
	return container
}

// Reset discards any accumulated audio.
func (b *UtteranceBuffer) Reset() {
	b.chunks = nil
	b.total = 0
}

func (b *UtteranceBuffer) drain() []byte {
	pcm := make([]byte, 0, b.total)
	for _, c := range b.chunks {
		pcm = append(pcm, c...)
	}
	b.Reset()
	return pcm
}

// RMS computes the root-mean-square energy of 16-bit little-endian signed
// PCM, with each sample normalized to [-1, 1]. A trailing odd byte is
// ignored.
func RMS(pcm []byte) float64 {
	n := len(pcm) / 2
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		s := int16(uint16(pcm[2*i]) | uint16(pcm[2*i+1])<<8)
		v := float64(s) / 32768.0
		sum += v * v
	}
	return math.Sqrt(sum / float64(n))
}
