package messages

import (
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
)

// Message types. "speech" is used in both directions: recognition events
// from the page and recognizer commands to the page.
const (
	TypeText         = "text"
	TypeSuggestion   = "suggestion"
	TypeProduct      = "product"
	TypeListen       = "listen"
	TypeSpeech       = "speech"
	TypeListenEnded  = "listen_ended"
	TypePlayback     = "playback"
	TypeControl      = "control"
	TypeCapabilities = "capabilities"
)

// ClientMessage represents a message from the browser page
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ParseClientMessage decodes a text frame into its envelope
func ParseClientMessage(data []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := sonic.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("invalid message format: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("invalid message format: missing type")
	}
	return &msg, nil
}

// Decode unmarshals the payload into v. A missing payload leaves v untouched.
func (m *ClientMessage) Decode(v any) error {
	if len(m.Payload) == 0 || string(m.Payload) == "null" {
		return nil
	}
	return sonic.Unmarshal(m.Payload, v)
}

// TextPayload carries typed input or a selected suggestion
type TextPayload struct {
	Text string `json:"text"`
}

// ProductPayload identifies a selected product card
type ProductPayload struct {
	Name string `json:"name"`
}

// ListenPayload toggles voice input
type ListenPayload struct {
	Action string `json:"action"` // "start", "stop"
}

// SpeechPayload is one recognition result from the page's recognizer
type SpeechPayload struct {
	Final   []string `json:"final,omitempty"`
	Interim string   `json:"interim"`
}

// PlaybackPayload reports playback progress on the page
type PlaybackPayload struct {
	Event string `json:"event"` // "ended"
	ID    uint64 `json:"id"`
}

// ControlPayload contains control commands
type ControlPayload struct {
	Action string `json:"action"` // "ping"
}

// CapabilitiesPayload describes what the page's browser supports
type CapabilitiesPayload struct {
	SpeechRecognition bool `json:"speechRecognition"`
}
