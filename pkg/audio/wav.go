package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const headerSize = 44

// Container is an immutable, fully buffered WAV encoding of one utterance:
// the canonical 44-byte RIFF header followed by raw little-endian PCM.
type Container struct {
	sampleRate    int
	channels      int
	bitsPerSample int
	data          []byte
}

// Encode wraps raw PCM samples into a playable WAV container.
func Encode(pcm []byte, sampleRate, channels, bitsPerSample int) (*Container, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("invalid channel count %d", channels)
	}
	if bitsPerSample <= 0 {
		return nil, fmt.Errorf("invalid bits per sample %d", bitsPerSample)
	}

	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	buf := make([]byte, headerSize+len(pcm))
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+len(pcm)))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], uint16(bitsPerSample))
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(len(pcm)))
	copy(buf[headerSize:], pcm)

	return &Container{
		sampleRate:    sampleRate,
		channels:      channels,
		bitsPerSample: bitsPerSample,
		data:          buf,
	}, nil
}

// Decode parses a WAV container produced by Encode (or any standard PCM WAV
// with the fixed 44-byte layout).
func Decode(b []byte) (*Container, error) {
	if len(b) < headerSize {
		return nil, errors.New("wav: truncated header")
	}
	if string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return nil, errors.New("wav: missing RIFF/WAVE markers")
	}
	if string(b[36:40]) != "data" {
		return nil, errors.New("wav: missing data chunk")
	}
	payloadLen := int(binary.LittleEndian.Uint32(b[40:44]))
	if payloadLen != len(b)-headerSize {
		return nil, fmt.Errorf("wav: declared payload %d, actual %d", payloadLen, len(b)-headerSize)
	}
	return &Container{
		sampleRate:    int(binary.LittleEndian.Uint32(b[24:28])),
		channels:      int(binary.LittleEndian.Uint16(b[22:24])),
		bitsPerSample: int(binary.LittleEndian.Uint16(b[34:36])),
		data:          append([]byte(nil), b...),
	}, nil
}

func (c *Container) SampleRate() int    { return c.sampleRate }
func (c *Container) Channels() int      { return c.channels }
func (c *Container) BitsPerSample() int { return c.bitsPerSample }

// Bytes returns the full container, header included.
func (c *Container) Bytes() []byte { return c.data }

// Payload returns the PCM bytes without the header.
func (c *Container) Payload() []byte { return c.data[headerSize:] }

// Samples returns the number of PCM frames in the payload.
func (c *Container) Samples() int {
	blockAlign := c.channels * c.bitsPerSample / 8
	if blockAlign == 0 {
		return 0
	}
	return len(c.Payload()) / blockAlign
}
