package audio

import (
	"testing"
	"time"
)

func defaultTestConfig() BufferConfig {
	return BufferConfig{
		SampleRate:    16000,
		Channels:      1,
		BitsPerSample: 16,
		MinDuration:   500 * time.Millisecond,
		SilenceRMS:    0.01,
	}
}

// loudPCM produces n bytes of alternating full-scale samples.
func loudPCM(n int) []byte {
	buf := make([]byte, n)
	for i := 0; i+3 < n; i += 4 {
		// +32767 little-endian
		buf[i] = 0xFF
		buf[i+1] = 0x7F
		// -32768 little-endian
		buf[i+2] = 0x00
		buf[i+3] = 0x80
	}
	return buf
}

func TestFinalizeDiscardsShortUtterance(t *testing.T) {
	b := NewUtteranceBuffer(defaultTestConfig(), nil)
	b.Append(loudPCM(15999))
	if c := b.Finalize(); c != nil {
		t.Fatalf("expected short utterance discarded")
	}
	if b.Len() != 0 {
		t.Fatalf("expected buffer cleared, got %d bytes", b.Len())
	}
}

func TestFinalizeDiscardsSilence(t *testing.T) {
	b := NewUtteranceBuffer(defaultTestConfig(), nil)
	b.Append(make([]byte, 32000)) // 1s of digital silence
	if c := b.Finalize(); c != nil {
		t.Fatalf("expected silent utterance discarded")
	}
	if b.Len() != 0 {
		t.Fatalf("expected buffer cleared after silence discard")
	}
}

func TestFinalizeAcceptsSpeech(t *testing.T) {
	b := NewUtteranceBuffer(defaultTestConfig(), nil)
	b.Append(loudPCM(16000))
	b.Append(loudPCM(16000))
	c := b.Finalize()
	if c == nil {
		t.Fatalf("expected container for substantive audio")
	}
	if len(c.Payload()) != 32000 {
		t.Fatalf("expected 32000 payload bytes, got %d", len(c.Payload()))
	}
	if b.Len() != 0 {
		t.Fatalf("expected buffer cleared after finalize")
	}
}

func TestFinalizeEmptyBufferIsNoop(t *testing.T) {
	b := NewUtteranceBuffer(defaultTestConfig(), nil)
	if c := b.Finalize(); c != nil {
		t.Fatalf("expected nil for empty buffer")
	}
	// finalize may be called repeatedly; each call sees only new audio
	b.Append(loudPCM(32000))
	if c := b.Finalize(); c == nil {
		t.Fatalf("expected container after re-accumulation")
	}
	if c := b.Finalize(); c != nil {
		t.Fatalf("second finalize should see an empty buffer")
	}
}

func TestRMSAllZero(t *testing.T) {
	if got := RMS(make([]byte, 2048)); got != 0.0 {
		t.Fatalf("expected exactly 0.0, got %f", got)
	}
}

func TestRMSFullScale(t *testing.T) {
	got := RMS(loudPCM(4096))
	if got < 0.999 || got > 1.001 {
		t.Fatalf("expected ~1.0 for alternating full-scale samples, got %f", got)
	}
}
