package audio

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePCMExtremes(t *testing.T) {
	buf, err := DecodePCM([]byte{0x00, 0x80, 0xFF, 0x7F}, SampleRate, 1)
	require.NoError(t, err)

	require.Equal(t, 1, buf.NumberOfChannels())
	require.Equal(t, 2, buf.Length())
	assert.Equal(t, SampleRate, buf.SampleRate())
	assert.InDelta(t, -1.0, buf.Channel(0)[0], 1e-6)
	assert.InDelta(t, 0.99997, buf.Channel(0)[1], 1e-5)
}

func TestDecodePCMStereoDeinterleaves(t *testing.T) {
	// L=1, R=-1, L=2, R=-2, plus one trailing byte
	data := []byte{0x01, 0x00, 0xFF, 0xFF, 0x02, 0x00, 0xFE, 0xFF, 0x09}
	buf, err := DecodePCM(data, 48000, 2)
	require.NoError(t, err)

	require.Equal(t, 2, buf.NumberOfChannels())
	require.Equal(t, 2, buf.Length())
	assert.InDeltaSlice(t, []float32{1 / 32768.0, 2 / 32768.0}, buf.Channel(0), 1e-9)
	assert.InDeltaSlice(t, []float32{-1 / 32768.0, -2 / 32768.0}, buf.Channel(1), 1e-9)
}

func TestDecodePCMDiscardsPartialFrame(t *testing.T) {
	buf, err := DecodePCM([]byte{0x00, 0x40, 0x00, 0x40, 0x00}, SampleRate, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, buf.Length())

	empty, err := DecodePCM([]byte{0x01}, SampleRate, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Length())
}

func TestDecodePCMRejectsInvalidProfile(t *testing.T) {
	_, err := DecodePCM([]byte{0, 0}, SampleRate, 0)
	assert.ErrorIs(t, err, ErrDecode)

	_, err = DecodePCM([]byte{0, 0}, 0, 1)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestDecodeBase64Audio(t *testing.T) {
	data, err := DecodeBase64Audio(base64.StdEncoding.EncodeToString([]byte{1, 2, 3}))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)

	_, err = DecodeBase64Audio("not base64 !!")
	assert.ErrorIs(t, err, ErrDecode)
}

func TestPCMRoundTrip(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 0.25, -0.999, 0.3333, -0.12345, 0.99996}
	original, err := NewBuffer(SampleRate, samples)
	require.NoError(t, err)

	decoded, err := DecodePCM(EncodePCM(original), SampleRate, 1)
	require.NoError(t, err)
	require.Equal(t, len(samples), decoded.Length())

	for i, want := range samples {
		assert.InDelta(t, want, decoded.Channel(0)[i], 1.0/32768, "sample %d", i)
	}
}

func TestDecodeIsDeterministic(t *testing.T) {
	data := []byte{0x10, 0x20, 0x30, 0x40, 0x50, 0x60}
	a, err := DecodePCM(data, SampleRate, 1)
	require.NoError(t, err)
	b, err := DecodePCM(data, SampleRate, 1)
	require.NoError(t, err)
	assert.Equal(t, a.Channel(0), b.Channel(0))
}

func TestEncodeClampsOutOfRange(t *testing.T) {
	buf, err := NewBuffer(SampleRate, []float32{1.0, -1.0})
	require.NoError(t, err)

	pcm := EncodePCM(buf)
	assert.Equal(t, []byte{0xFF, 0x7F, 0x00, 0x80}, pcm)
}

func TestDurationAndScaled(t *testing.T) {
	buf, err := NewBuffer(SampleRate, make([]float32, SampleRate/2))
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, buf.Duration())

	loud, err := NewBuffer(SampleRate, []float32{0.4, -0.8})
	require.NoError(t, err)
	scaled := loud.Scaled(2)
	assert.InDeltaSlice(t, []float32{0.8, -1}, scaled.Channel(0), 1e-6)
	assert.InDeltaSlice(t, []float32{0.4, -0.8}, loud.Channel(0), 1e-6)
}

func TestNewBufferRejectsRaggedChannels(t *testing.T) {
	_, err := NewBuffer(SampleRate, []float32{0, 0}, []float32{0})
	assert.ErrorIs(t, err, ErrDecode)
}
