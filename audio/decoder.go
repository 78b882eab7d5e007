package audio

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
)

// Output profile of the speech synthesis service: mono PCM, 16-bit signed
// little-endian, 24kHz.
const (
	SampleRate = 24000
	Channels   = 1
	MimeType   = "audio/pcm;rate=24000"
)

const (
	bytesPerSample = 2
	pcmScale       = 32768.0
)

// ErrDecode is returned when an audio payload cannot be decoded
var ErrDecode = errors.New("audio decode failed")

// Buffer is decoded, de-interleaved PCM audio normalized to [-1, 1]
type Buffer struct {
	sampleRate int
	channels   [][]float32
}

// NewBuffer wraps per-channel sample slices. All channels must have the same length.
func NewBuffer(sampleRate int, channels ...[]float32) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: invalid sample rate %d", ErrDecode, sampleRate)
	}
	if len(channels) == 0 {
		return nil, fmt.Errorf("%w: no channels", ErrDecode)
	}
	for i := 1; i < len(channels); i++ {
		if len(channels[i]) != len(channels[0]) {
			return nil, fmt.Errorf("%w: channel %d has %d frames, want %d", ErrDecode, i, len(channels[i]), len(channels[0]))
		}
	}
	return &Buffer{sampleRate: sampleRate, channels: channels}, nil
}

// SampleRate returns the declared sample rate in Hz
func (b *Buffer) SampleRate() int {
	return b.sampleRate
}

// NumberOfChannels returns the channel count
func (b *Buffer) NumberOfChannels() int {
	return len(b.channels)
}

// Length returns the number of frames (samples per channel)
func (b *Buffer) Length() int {
	if len(b.channels) == 0 {
		return 0
	}
	return len(b.channels[0])
}

// Channel returns the samples of channel i
func (b *Buffer) Channel(i int) []float32 {
	return b.channels[i]
}

// Duration returns the playback length of the buffer
func (b *Buffer) Duration() time.Duration {
	if b.sampleRate == 0 {
		return 0
	}
	return time.Duration(b.Length()) * time.Second / time.Duration(b.sampleRate)
}

// Scaled returns a copy with every sample multiplied by gain and clamped to [-1, 1]
func (b *Buffer) Scaled(gain float64) *Buffer {
	out := &Buffer{sampleRate: b.sampleRate, channels: make([][]float32, len(b.channels))}
	for c, samples := range b.channels {
		scaled := make([]float32, len(samples))
		for i, s := range samples {
			scaled[i] = float32(clamp(float64(s)*gain, -1, 1))
		}
		out.channels[c] = scaled
	}
	return out
}

// DecodeBase64Audio converts a base64 payload into raw bytes
func DecodeBase64Audio(encoded string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64: %v", ErrDecode, err)
	}
	return data, nil
}

// DecodePCM interprets data as interleaved 16-bit signed little-endian samples.
// Trailing bytes that do not form a complete frame are discarded.
func DecodePCM(data []byte, sampleRate, channelCount int) (*Buffer, error) {
	if channelCount < 1 {
		return nil, fmt.Errorf("%w: invalid channel count %d", ErrDecode, channelCount)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: invalid sample rate %d", ErrDecode, sampleRate)
	}

	frames := len(data) / bytesPerSample / channelCount
	channels := make([][]float32, channelCount)
	for c := range channels {
		channels[c] = make([]float32, frames)
	}

	for i := 0; i < frames; i++ {
		for c := 0; c < channelCount; c++ {
			offset := (i*channelCount + c) * bytesPerSample
			sample := int16(binary.LittleEndian.Uint16(data[offset : offset+bytesPerSample]))
			channels[c][i] = float32(float64(sample) / pcmScale)
		}
	}

	return &Buffer{sampleRate: sampleRate, channels: channels}, nil
}

// EncodePCM interleaves the buffer back into 16-bit signed little-endian bytes
func EncodePCM(b *Buffer) []byte {
	channelCount := b.NumberOfChannels()
	frames := b.Length()
	out := make([]byte, frames*channelCount*bytesPerSample)
	for i := 0; i < frames; i++ {
		for c := 0; c < channelCount; c++ {
			v := math.Round(float64(b.channels[c][i]) * pcmScale)
			sample := int16(clamp(v, math.MinInt16, math.MaxInt16))
			offset := (i*channelCount + c) * bytesPerSample
			binary.LittleEndian.PutUint16(out[offset:offset+bytesPerSample], uint16(sample))
		}
	}
	return out
}

// EncodeBase64Audio encodes the buffer as base64 PCM
func EncodeBase64Audio(b *Buffer) string {
	return base64.StdEncoding.EncodeToString(EncodePCM(b))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
