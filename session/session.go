package session

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/room4-2/aurashield/conversation"
	"github.com/room4-2/aurashield/messages"
	"github.com/room4-2/aurashield/playback"
	"github.com/room4-2/aurashield/speech"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeBufferSize = 256
	writeTimeout    = 10 * time.Second
	readLimit       = 64 * 1024
	playbackGrace   = 500 * time.Millisecond
)

// Options tunes a ClientSession
type Options struct {
	AITimeout     time.Duration
	PlaybackGain  float64
	SpeechEnabled bool
	KeepAlive     time.Duration
}

// ClientSession is one browser page: a websocket connection driving its own
// conversation orchestrator.
type ClientSession struct {
	ID           string
	ClientConn   *websocket.Conn
	Orchestrator *conversation.Orchestrator
	CreatedAt    time.Time

	capture      *speech.Remote
	output       *wsOutput
	keepAlive    time.Duration
	lastActivity atomic.Int64

	// Use channels for non-blocking writes
	writeChan chan any

	mu        sync.RWMutex
	closed    bool
	CloseChan chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
	logger    *zap.Logger
}

// NewClientSession wires a conversation to clientConn. assistant is shared
// across sessions; every session opens its own chat on Start.
func NewClientSession(id string, clientConn *websocket.Conn, assistant conversation.Assistant, opts Options, logger *zap.Logger) *ClientSession {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	// Configure WebSocket for better performance
	clientConn.SetReadLimit(readLimit)
	clientConn.EnableWriteCompression(true)
	clientConn.SetCompressionLevel(6)

	cs := &ClientSession{
		ID:         id,
		ClientConn: clientConn,
		CreatedAt:  time.Now(),
		keepAlive:  opts.KeepAlive,
		writeChan:  make(chan any, writeBufferSize),
		CloseChan:  make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
		logger:     logger.With(zap.String("session", shortID(id))),
	}
	cs.touch()

	cs.output = newWSOutput(id, cs.queueMessage, playbackGrace)
	player := playback.NewController(cs.output, opts.PlaybackGain, cs.logger)

	var capture conversation.SpeechCapture = speech.Unavailable{}
	if !opts.SpeechEnabled {
		cs.logger.Info("🎙️ Speech capture disabled, listening unavailable")
	} else {
		// Unavailable until the page reports a recognizer
		cs.capture = speech.NewRemote(cs.sendSpeechCommand, false)
		capture = cs.capture
	}

	cs.Orchestrator = conversation.New(assistant, capture, player, conversation.Options{AITimeout: opts.AITimeout}, cs.logger)
	player.SetOnChange(func(bool) { cs.Orchestrator.Refresh() })
	cs.Orchestrator.Subscribe(func(snap conversation.Snapshot) {
		cs.queueMessage(messages.NewStateMessage(cs.ID, snap))
	})

	return cs
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Start begins the bidirectional message handling and opens the chat
func (cs *ClientSession) Start() {
	go cs.writePump()
	cs.queueMessage(messages.NewStatusMessage(cs.ID, "connected", "Session established"))
	go cs.Orchestrator.Start(cs.ctx)
	go cs.handleClientMessages()
}

// LastActivity returns the time of the last inbound or outbound message
func (cs *ClientSession) LastActivity() time.Time {
	return time.Unix(0, cs.lastActivity.Load())
}

func (cs *ClientSession) touch() {
	cs.lastActivity.Store(time.Now().UnixNano())
}

// writePump handles all outgoing messages in a single goroutine
func (cs *ClientSession) writePump() {
	var ping <-chan time.Time
	if cs.keepAlive > 0 {
		ticker := time.NewTicker(cs.keepAlive)
		defer ticker.Stop()
		ping = ticker.C
	}

	defer func() {
		// Send close message before exiting
		cs.ClientConn.SetWriteDeadline(time.Now().Add(writeTimeout))
		cs.ClientConn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
	}()

	for {
		select {
		case <-cs.CloseChan:
			return
		case <-ping:
			cs.ClientConn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := cs.ClientConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case msg := <-cs.writeChan:
			if err := cs.writeMessage(msg); err != nil {
				return
			}

			n := len(cs.writeChan)
			for i := 0; i < n; i++ {
				select {
				case msg := <-cs.writeChan:
					if err := cs.writeMessage(msg); err != nil {
						return
					}
				default:
					// No more messages, continue outer loop
				}
			}
		}
	}
}

func (cs *ClientSession) writeMessage(msg any) error {
	data, err := sonic.Marshal(msg)
	if err != nil {
		cs.logger.Error("❌ Failed to encode message", zap.Error(err))
		return nil
	}
	cs.ClientConn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return cs.ClientConn.WriteMessage(websocket.TextMessage, data)
}

// queueMessage adds a message to the write queue (non-blocking). It reports
// false when the session is closed or the queue is full.
func (cs *ClientSession) queueMessage(msg any) bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	if cs.closed {
		return false
	}
	select {
	case cs.writeChan <- msg:
		cs.touch()
		return true
	default:
		cs.logger.Warn("⚠️ Write queue full, dropping message")
		return false
	}
}

func (cs *ClientSession) sendSpeechCommand(action string) error {
	if !cs.queueMessage(messages.NewSpeechCommandMessage(cs.ID, action)) {
		return errQueueFull
	}
	return nil
}

// Close terminates the session and cleans up resources. It waits for the
// in-flight AI turn, if any, to observe cancellation.
func (cs *ClientSession) Close() error {
	cs.mu.Lock()
	if cs.closed {
		cs.mu.Unlock()
		return nil
	}
	cs.closed = true
	cs.mu.Unlock()

	cs.cancel()

	// Signal close (stops writePump and the read loop)
	close(cs.CloseChan)

	cs.output.Close()
	cs.Orchestrator.Close()

	if cs.ClientConn != nil {
		cs.ClientConn.Close()
	}

	cs.logger.Info("🔌 Session closed")
	return nil
}

// IsClosed returns whether the session is closed
func (cs *ClientSession) IsClosed() bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.closed
}

func (cs *ClientSession) handleClientMessages() {
	defer cs.Close()

	if cs.keepAlive > 0 {
		deadline := func() time.Time { return time.Now().Add(2 * cs.keepAlive) }
		cs.ClientConn.SetReadDeadline(deadline())
		cs.ClientConn.SetPongHandler(func(string) error {
			return cs.ClientConn.SetReadDeadline(deadline())
		})
	}

	for {
		select {
		case <-cs.CloseChan:
			return
		default:
			messageType, data, err := cs.ClientConn.ReadMessage()
			if err != nil {
				if !cs.IsClosed() && websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					cs.logger.Warn("⚠️ WebSocket read error", zap.Error(err))
				}
				return
			}
			cs.touch()
			if cs.keepAlive > 0 {
				cs.ClientConn.SetReadDeadline(time.Now().Add(2 * cs.keepAlive))
			}

			if messageType != websocket.TextMessage {
				cs.queueMessage(messages.NewErrorMessage(cs.ID, messages.ErrCodeInvalidMessage, "Binary frames are not supported"))
				continue
			}

			msg, err := messages.ParseClientMessage(data)
			if err != nil {
				cs.queueMessage(messages.NewErrorMessage(cs.ID, messages.ErrCodeInvalidMessage, "Invalid message format"))
				continue
			}

			cs.processClientMessage(msg)
		}
	}
}

func (cs *ClientSession) processClientMessage(msg *messages.ClientMessage) {
	switch msg.Type {
	case messages.TypeText, messages.TypeSuggestion:
		var payload messages.TextPayload
		if !cs.decode(msg, &payload) {
			return
		}
		if msg.Type == messages.TypeSuggestion {
			cs.submitted(payload.Text, cs.Orchestrator.SelectSuggestion(payload.Text))
		} else {
			cs.submitted(payload.Text, cs.Orchestrator.Submit(payload.Text))
		}

	case messages.TypeProduct:
		var payload messages.ProductPayload
		if !cs.decode(msg, &payload) {
			return
		}
		cs.submitted(payload.Name, cs.Orchestrator.SelectProduct(payload.Name))

	case messages.TypeListen:
		var payload messages.ListenPayload
		if !cs.decode(msg, &payload) {
			return
		}
		switch payload.Action {
		case speech.ActionStart:
			cs.Orchestrator.StartListening(cs.ctx)
		case speech.ActionStop:
			cs.Orchestrator.StopListening(cs.ctx)
		default:
			cs.queueMessage(messages.NewErrorMessage(cs.ID, messages.ErrCodeInvalidMessage, "Unknown listen action: "+payload.Action))
		}

	case messages.TypeSpeech:
		var payload messages.SpeechPayload
		if !cs.decode(msg, &payload) {
			return
		}
		cs.Orchestrator.HandleSpeechEvent(conversation.SpeechEvent{Final: payload.Final, Interim: payload.Interim})

	case messages.TypeListenEnded:
		if cs.capture != nil {
			cs.capture.Ended()
		}
		cs.Orchestrator.CaptureEnded()

	case messages.TypePlayback:
		var payload messages.PlaybackPayload
		if !cs.decode(msg, &payload) {
			return
		}
		if payload.Event == "ended" {
			cs.output.Ack(payload.ID)
		}

	case messages.TypeCapabilities:
		var payload messages.CapabilitiesPayload
		if !cs.decode(msg, &payload) {
			return
		}
		if cs.capture != nil {
			cs.capture.SetAvailable(payload.SpeechRecognition)
		}
		if !payload.SpeechRecognition {
			cs.logger.Info("🎙️ Speech capture unavailable in browser, listening disabled")
		}
		cs.Orchestrator.Refresh()

	case messages.TypeControl:
		var payload messages.ControlPayload
		if !cs.decode(msg, &payload) {
			return
		}
		cs.handleControlMessage(&payload)

	default:
		cs.queueMessage(messages.NewErrorMessage(cs.ID, messages.ErrCodeInvalidMessage, "Unknown message type: "+msg.Type))
	}
}

func (cs *ClientSession) decode(msg *messages.ClientMessage, v any) bool {
	if err := msg.Decode(v); err != nil {
		cs.queueMessage(messages.NewErrorMessage(cs.ID, messages.ErrCodeInvalidMessage, "Invalid "+msg.Type+" payload"))
		return false
	}
	return true
}

// submitted tells the page why a non-blank submission was dropped: a reply
// is in flight or a voice input session is open
func (cs *ClientSession) submitted(text string, accepted bool) {
	if accepted || strings.TrimSpace(text) == "" {
		return
	}
	cs.queueMessage(messages.NewErrorMessage(cs.ID, messages.ErrCodeBusy, "Submission rejected while a reply or voice input is in progress"))
}

func (cs *ClientSession) handleControlMessage(payload *messages.ControlPayload) {
	switch payload.Action {
	case "ping":
		cs.queueMessage(messages.NewStatusMessage(cs.ID, "pong", ""))
	default:
		cs.queueMessage(messages.NewErrorMessage(cs.ID, messages.ErrCodeInvalidMessage, "Unknown control action: "+payload.Action))
	}
}
