package speech

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrUnavailable is returned when speech recognition is not supported by the runtime
var ErrUnavailable = errors.New("speech capture unavailable")

// Commands sent to the page's recognizer
const (
	ActionStart = "start"
	ActionStop  = "stop"
)

// Unavailable is the capture used when no recognizer exists. Listening is a no-op.
type Unavailable struct{}

func (Unavailable) Available() bool { return false }

func (Unavailable) Start(context.Context) error { return ErrUnavailable }

func (Unavailable) Stop(context.Context) error { return nil }

// Remote drives a recognizer that runs in the browser page. Start and Stop
// are forwarded as commands; recognition results come back as speech events
// on the same connection.
type Remote struct {
	send func(action string) error

	mu        sync.RWMutex
	available bool
	active    bool
}

// NewRemote creates a capture that forwards commands through send
func NewRemote(send func(action string) error, available bool) *Remote {
	return &Remote{send: send, available: available}
}

// SetAvailable records whether the page reported a working recognizer
func (r *Remote) SetAvailable(available bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.available = available
}

// Available reports whether the page can capture speech
func (r *Remote) Available() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.available
}

// Active reports whether a start command is outstanding
func (r *Remote) Active() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Start asks the page to begin recognition
func (r *Remote) Start(ctx context.Context) error {
	if !r.Available() {
		return ErrUnavailable
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.send(ActionStart); err != nil {
		return fmt.Errorf("failed to start remote capture: %w", err)
	}
	r.mu.Lock()
	r.active = true
	r.mu.Unlock()
	return nil
}

// Stop asks the page to end recognition
func (r *Remote) Stop(ctx context.Context) error {
	r.mu.Lock()
	wasActive := r.active
	r.active = false
	r.mu.Unlock()

	if !wasActive {
		return nil
	}
	if err := r.send(ActionStop); err != nil {
		return fmt.Errorf("failed to stop remote capture: %w", err)
	}
	return nil
}

// Ended marks the page's recognizer as stopped without sending a command
func (r *Remote) Ended() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = false
}
