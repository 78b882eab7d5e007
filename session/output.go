package session

import (
	"errors"
	"sync"
	"time"

	"github.com/room4-2/aurashield/audio"
	"github.com/room4-2/aurashield/messages"
)

var errQueueFull = errors.New("write queue full or session closed")

type pendingBuffer struct {
	ended func()
	timer *time.Timer
}

// wsOutput plays buffers on the page. A buffer ends when the page acks it
// or when its duration plus grace elapses, whichever comes first.
type wsOutput struct {
	sessionID string
	send      func(msg any) bool
	grace     time.Duration

	mu      sync.Mutex
	next    uint64
	pending map[uint64]pendingBuffer
}

func newWSOutput(sessionID string, send func(msg any) bool, grace time.Duration) *wsOutput {
	return &wsOutput{
		sessionID: sessionID,
		send:      send,
		grace:     grace,
		pending:   make(map[uint64]pendingBuffer),
	}
}

// Start implements playback.Output
func (o *wsOutput) Start(buf *audio.Buffer, ended func()) error {
	o.mu.Lock()
	o.next++
	id := o.next
	timer := time.AfterFunc(buf.Duration()+o.grace, func() { o.finish(id) })
	o.pending[id] = pendingBuffer{ended: ended, timer: timer}
	o.mu.Unlock()

	msg := messages.NewAudioMessage(o.sessionID, id, audio.EncodeBase64Audio(buf), buf.NumberOfChannels(), buf.Duration())
	if !o.send(msg) {
		o.mu.Lock()
		delete(o.pending, id)
		o.mu.Unlock()
		timer.Stop()
		return errQueueFull
	}
	return nil
}

// Ack handles the page reporting that buffer id finished playing
func (o *wsOutput) Ack(id uint64) {
	o.finish(id)
}

func (o *wsOutput) finish(id uint64) {
	o.mu.Lock()
	p, ok := o.pending[id]
	delete(o.pending, id)
	o.mu.Unlock()

	if !ok {
		return
	}
	p.timer.Stop()
	p.ended()
}

// Close drops every pending buffer without reporting an end
func (o *wsOutput) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for id, p := range o.pending {
		p.timer.Stop()
		delete(o.pending, id)
	}
}
