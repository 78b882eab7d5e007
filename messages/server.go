package messages

import (
	"time"

	"github.com/room4-2/aurashield/audio"
	"github.com/room4-2/aurashield/conversation"
)

// Error codes
const (
	ErrCodeInvalidMessage = "INVALID_MESSAGE"
	ErrCodeSessionFailed  = "SESSION_FAILED"
	ErrCodeBusy           = "BUSY"
)

// Server-only message types
const (
	TypeState  = "state"
	TypeAudio  = "audio"
	TypeStatus = "status"
	TypeError  = "error"
)

// ServerMessage represents a message sent to the browser page
type ServerMessage struct {
	Type      string      `json:"type"` // "state", "audio", "speech", "status", "error"
	SessionID string      `json:"sessionId,omitempty"`
	Payload   interface{} `json:"payload"`
}

// AudioResponsePayload contains one speech buffer for the page to play
type AudioResponsePayload struct {
	ID         uint64 `json:"id"`
	Data       string `json:"data"`     // Base64-encoded PCM audio
	MimeType   string `json:"mimeType"` // "audio/pcm;rate=24000"
	Channels   int    `json:"channels"`
	DurationMs int64  `json:"durationMs"`
}

// SpeechCommandPayload starts or stops the page's recognizer
type SpeechCommandPayload struct {
	Action string `json:"action"`
}

// StatusPayload contains status updates
type StatusPayload struct {
	Status  string `json:"status"` // "connected", "pong"
	Message string `json:"message,omitempty"`
}

// ErrorPayload contains error information
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewStateMessage creates a full state snapshot message
func NewStateMessage(sessionID string, snap conversation.Snapshot) *ServerMessage {
	return &ServerMessage{
		Type:      TypeState,
		SessionID: sessionID,
		Payload:   snap,
	}
}

// NewAudioMessage creates an audio message from a base64 PCM16LE buffer
func NewAudioMessage(sessionID string, id uint64, data string, channels int, duration time.Duration) *ServerMessage {
	return &ServerMessage{
		Type:      TypeAudio,
		SessionID: sessionID,
		Payload: AudioResponsePayload{
			ID:         id,
			Data:       data,
			MimeType:   audio.MimeType,
			Channels:   channels,
			DurationMs: duration.Milliseconds(),
		},
	}
}

// NewSpeechCommandMessage creates a recognizer command
func NewSpeechCommandMessage(sessionID, action string) *ServerMessage {
	return &ServerMessage{
		Type:      TypeSpeech,
		SessionID: sessionID,
		Payload:   SpeechCommandPayload{Action: action},
	}
}

// NewStatusMessage creates a status message
func NewStatusMessage(sessionID, status, message string) *ServerMessage {
	return &ServerMessage{
		Type:      TypeStatus,
		SessionID: sessionID,
		Payload: StatusPayload{
			Status:  status,
			Message: message,
		},
	}
}

// NewErrorMessage creates an error message
func NewErrorMessage(sessionID, code, message string) *ServerMessage {
	return &ServerMessage{
		Type:      TypeError,
		SessionID: sessionID,
		Payload: ErrorPayload{
			Code:    code,
			Message: message,
		},
	}
}
