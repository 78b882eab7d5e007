package conversation

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"

	"github.com/room4-2/aurashield/audio"
)

type fakeChat struct {
	mu       sync.Mutex
	replies  []*StructuredReply
	err      error
	received []string
	release  chan struct{}
}

func (c *fakeChat) SendMessage(ctx context.Context, message string) (*StructuredReply, error) {
	if c.release != nil {
		select {
		case <-c.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.received = append(c.received, message)
	if c.err != nil {
		return nil, c.err
	}
	if len(c.replies) == 0 {
		return &StructuredReply{ResponseText: "ok", ContentType: ContentNone}, nil
	}
	reply := c.replies[0]
	c.replies = c.replies[1:]
	return reply, nil
}

func (c *fakeChat) messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.received...)
}

type fakeAssistant struct {
	chat     *fakeChat
	startErr error

	mu        sync.Mutex
	speech    string
	speechErr error
	spoken    []string
}

func (a *fakeAssistant) StartChat(context.Context) (Chat, error) {
	if a.startErr != nil {
		return nil, a.startErr
	}
	return a.chat, nil
}

func (a *fakeAssistant) GenerateSpeech(_ context.Context, text string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.spoken = append(a.spoken, text)
	return a.speech, a.speechErr
}

type fakePlayer struct {
	mu     sync.Mutex
	played []*audio.Buffer
}

func (p *fakePlayer) Play(buf *audio.Buffer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.played = append(p.played, buf)
}

func (p *fakePlayer) IsSpeaking() bool {
	return false
}

func (p *fakePlayer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.played)
}

type fakeCapture struct {
	available bool
	startErr  error
	starts    int
	stops     int
}

func (c *fakeCapture) Available() bool { return c.available }

func (c *fakeCapture) Start(context.Context) error {
	if c.startErr != nil {
		return c.startErr
	}
	c.starts++
	return nil
}

func (c *fakeCapture) Stop(context.Context) error {
	c.stops++
	return nil
}

var errBackend = errors.New("backend unavailable")

func pcmBase64(samples ...int16) string {
	buf := make([]byte, 0, len(samples)*2)
	for _, s := range samples {
		buf = append(buf, byte(uint16(s)), byte(uint16(s)>>8))
	}
	return base64.StdEncoding.EncodeToString(buf)
}
