package playback

import (
	"errors"
	"fmt"
	"sync"

	"github.com/room4-2/aurashield/audio"
	"github.com/room4-2/aurashield/metrics"

	"go.uber.org/zap"
)

// ErrNoOutput is returned when the controller has no output attached
var ErrNoOutput = errors.New("no audio output")

// ErrEmptyBuffer is returned when asked to play a buffer without frames
var ErrEmptyBuffer = errors.New("empty audio buffer")

// Output is the sink at the end of the audio graph. Start begins playback
// immediately and must call ended once when the buffer finishes naturally.
type Output interface {
	Start(buf *audio.Buffer, ended func()) error
}

// Controller schedules decoded buffers on a shared output and tracks whether
// audio is currently speaking.
type Controller struct {
	out    Output
	gain   float64
	logger *zap.Logger

	mu       sync.Mutex
	speaking bool
	current  uint64
	onChange func(speaking bool)
}

// NewController creates a controller around a long-lived output. gain is
// applied to every buffer before it reaches the output.
func NewController(out Output, gain float64, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		out:    out,
		gain:   gain,
		logger: logger,
	}
}

// SetOnChange registers the callback fired whenever the speaking signal flips
func (c *Controller) SetOnChange(fn func(speaking bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// IsSpeaking reports whether a buffer is currently playing
func (c *Controller) IsSpeaking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speaking
}

// Play starts buf immediately. It never blocks on playback and never leaves
// the speaking signal set when the output fails.
func (c *Controller) Play(buf *audio.Buffer) {
	c.mu.Lock()
	c.current++
	id := c.current
	c.mu.Unlock()

	c.setSpeaking(true)

	if err := c.start(buf, id); err != nil {
		c.logger.Error("❌ Failed to play audio", zap.Error(err))
		metrics.PlaybackTotal.WithLabelValues("failed").Inc()
		c.setSpeaking(false)
		return
	}
	metrics.PlaybackTotal.WithLabelValues("started").Inc()
}

func (c *Controller) start(buf *audio.Buffer, id uint64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("output panic: %v", r)
		}
	}()

	if c.out == nil {
		return ErrNoOutput
	}
	if buf == nil || buf.Length() == 0 {
		return ErrEmptyBuffer
	}

	scaled := buf
	if c.gain != 1 {
		scaled = buf.Scaled(c.gain)
	}
	return c.out.Start(scaled, func() { c.ended(id) })
}

// ended only clears the signal for the most recently started buffer, so a
// stale source finishing late does not cut the indicator of a newer one.
func (c *Controller) ended(id uint64) {
	c.mu.Lock()
	latest := id == c.current
	c.mu.Unlock()
	if latest {
		c.setSpeaking(false)
	}
}

func (c *Controller) setSpeaking(v bool) {
	c.mu.Lock()
	if c.speaking == v {
		c.mu.Unlock()
		return
	}
	c.speaking = v
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn(v)
	}
}
