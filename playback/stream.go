package playback

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/room4-2/aurashield/audio"

	"go.uber.org/zap"
)

// ErrOutputClosed is returned when starting a buffer on a closed output
var ErrOutputClosed = errors.New("audio output closed")

const streamQueueSize = 16

// StreamOutput writes PCM16LE to a long-lived stream, e.g. a sox process.
// Buffers are played back to back in the order they were started.
type StreamOutput struct {
	w      io.WriteCloser
	queue  chan []byte
	done   chan struct{}
	wait   func() error
	logger *zap.Logger

	mu      sync.Mutex
	closed  bool
	playEnd time.Time
}

// NewSoxOutput starts sox reading raw PCM from stdin and playing it on the
// default audio device.
func NewSoxOutput(sampleRate, channels int, logger *zap.Logger) (*StreamOutput, error) {
	cmd := exec.Command("sox",
		"-t", "raw",
		"-r", strconv.Itoa(sampleRate),
		"-b", "16",
		"-c", strconv.Itoa(channels),
		"-e", "signed-integer",
		"-",
		"-d",
	)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("sox stdin error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("sox start error: %w", err)
	}

	out := NewStreamOutput(stdin, logger)
	out.wait = cmd.Wait
	return out, nil
}

// NewStreamOutput plays into w
func NewStreamOutput(w io.WriteCloser, logger *zap.Logger) *StreamOutput {
	if logger == nil {
		logger = zap.NewNop()
	}
	out := &StreamOutput{
		w:      w,
		queue:  make(chan []byte, streamQueueSize),
		done:   make(chan struct{}),
		logger: logger,
	}
	go out.writeLoop()
	return out
}

// Start implements Output. A buffer starts when the previous one finishes and
// is reported ended after its own duration from there.
func (o *StreamOutput) Start(buf *audio.Buffer, ended func()) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrOutputClosed
	}

	select {
	case o.queue <- audio.EncodePCM(buf):
	default:
		return fmt.Errorf("audio queue full (%d buffers)", streamQueueSize)
	}

	now := time.Now()
	start := o.playEnd
	if start.Before(now) {
		start = now
	}
	o.playEnd = start.Add(buf.Duration())
	time.AfterFunc(o.playEnd.Sub(now), ended)
	return nil
}

func (o *StreamOutput) writeLoop() {
	defer close(o.done)
	for pcm := range o.queue {
		if _, err := o.w.Write(pcm); err != nil {
			o.logger.Error("❌ Failed to write audio to output stream", zap.Error(err))
			return
		}
	}
}

// Close flushes queued audio and stops the stream
func (o *StreamOutput) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	close(o.queue)
	o.mu.Unlock()

	<-o.done
	err := o.w.Close()
	if o.wait != nil {
		if werr := o.wait(); err == nil {
			err = werr
		}
	}
	return err
}
