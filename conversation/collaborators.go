package conversation

import (
	"context"
	"errors"

	"github.com/room4-2/aurashield/audio"
)

// ErrNoChat is returned when a turn runs without an initialized chat session
var ErrNoChat = errors.New("chat session not initialized")

// Chat is an open conversation with the AI service
type Chat interface {
	SendMessage(ctx context.Context, message string) (*StructuredReply, error)
}

// Synthesizer turns reply text into base64 PCM audio (mono, 24kHz, 16-bit LE)
type Synthesizer interface {
	GenerateSpeech(ctx context.Context, text string) (string, error)
}

// Assistant is the generative-AI backend
type Assistant interface {
	Synthesizer
	StartChat(ctx context.Context) (Chat, error)
}

// SpeechCapture is an optional speech-to-text source. Recognition results
// are delivered through Orchestrator.HandleSpeechEvent.
type SpeechCapture interface {
	Available() bool
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Player plays decoded audio and exposes the speaking signal
type Player interface {
	Play(buf *audio.Buffer)
	IsSpeaking() bool
}

// Unavailable is an Assistant that could not be initialized. Every chat
// start and synthesis request fails with Err.
type Unavailable struct {
	Err error
}

func (u Unavailable) StartChat(context.Context) (Chat, error) {
	return nil, u.Err
}

func (u Unavailable) GenerateSpeech(context.Context, string) (string, error) {
	return "", u.Err
}
