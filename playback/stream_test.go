package playback

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/room4-2/aurashield/audio"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type memStream struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
}

func (m *memStream) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buf.Write(p)
}

func (m *memStream) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func TestStreamOutputWritesPCMAndEnds(t *testing.T) {
	stream := &memStream{}
	out := NewStreamOutput(stream, nil)

	buf, err := audio.NewBuffer(audio.SampleRate, []float32{0, 0.5, -1, 0.25})
	require.NoError(t, err)

	done := make(chan struct{})
	require.NoError(t, out.Start(buf, func() { close(done) }))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("buffer did not end")
	}

	require.NoError(t, out.Close())
	assert.True(t, stream.closed)
	assert.Equal(t, audio.EncodePCM(buf), stream.buf.Bytes())
}

func TestStreamOutputClosed(t *testing.T) {
	out := NewStreamOutput(&memStream{}, nil)
	require.NoError(t, out.Close())
	require.NoError(t, out.Close())

	buf, err := audio.NewBuffer(audio.SampleRate, []float32{0})
	require.NoError(t, err)
	assert.ErrorIs(t, out.Start(buf, func() {}), ErrOutputClosed)
}

func TestControllerWithStreamOutput(t *testing.T) {
	out := NewStreamOutput(&memStream{}, nil)
	defer out.Close()

	ctrl := NewController(out, 1, nil)
	changes := make(chan bool, 2)
	ctrl.SetOnChange(func(speaking bool) { changes <- speaking })

	buf, err := audio.NewBuffer(audio.SampleRate, make([]float32, 240))
	require.NoError(t, err)
	ctrl.Play(buf)

	assert.True(t, <-changes)
	select {
	case speaking := <-changes:
		assert.False(t, speaking)
	case <-time.After(2 * time.Second):
		t.Fatal("speaking signal was not cleared")
	}
	assert.False(t, ctrl.IsSpeaking())
}

func TestStreamOutputChainsBackToBackBuffers(t *testing.T) {
	out := NewStreamOutput(&memStream{}, nil)
	defer out.Close()

	// 100ms each
	first, err := audio.NewBuffer(audio.SampleRate, make([]float32, 2400))
	require.NoError(t, err)
	second, err := audio.NewBuffer(audio.SampleRate, make([]float32, 2400))
	require.NoError(t, err)

	begin := time.Now()
	firstDone := make(chan time.Duration, 1)
	secondDone := make(chan time.Duration, 1)
	require.NoError(t, out.Start(first, func() { firstDone <- time.Since(begin) }))
	require.NoError(t, out.Start(second, func() { secondDone <- time.Since(begin) }))

	select {
	case elapsed := <-firstDone:
		assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
	case <-time.After(2 * time.Second):
		t.Fatal("first buffer did not end")
	}
	select {
	case elapsed := <-secondDone:
		assert.GreaterOrEqual(t, elapsed, 200*time.Millisecond)
	case <-time.After(2 * time.Second):
		t.Fatal("second buffer did not end")
	}
}

type failingStream struct{ memStream }

func (f *failingStream) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestStreamOutputLogsWriteErrors(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	out := NewStreamOutput(&failingStream{}, zap.New(core))

	buf, err := audio.NewBuffer(audio.SampleRate, []float32{0})
	require.NoError(t, err)
	require.NoError(t, out.Start(buf, func() {}))
	require.NoError(t, out.Close())

	assert.Equal(t, 1, logs.FilterMessage("❌ Failed to write audio to output stream").Len())
}
