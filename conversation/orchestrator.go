package conversation

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/room4-2/aurashield/audio"
	"github.com/room4-2/aurashield/metrics"

	"go.uber.org/zap"
)

const (
	defaultAITimeout     = 30 * time.Second
	defaultSpeechTimeout = 60 * time.Second
)

// Options tunes an Orchestrator. Zero values fall back to defaults.
type Options struct {
	AITimeout     time.Duration
	SpeechTimeout time.Duration
	SampleRate    int
	Channels      int
}

func (o Options) withDefaults() Options {
	if o.AITimeout <= 0 {
		o.AITimeout = defaultAITimeout
	}
	if o.SpeechTimeout <= 0 {
		o.SpeechTimeout = defaultSpeechTimeout
	}
	if o.SampleRate <= 0 {
		o.SampleRate = audio.SampleRate
	}
	if o.Channels <= 0 {
		o.Channels = audio.Channels
	}
	return o
}

// Snapshot is the complete renderable state, published after every transition
type Snapshot struct {
	Seq             uint64    `json:"seq"`
	Messages        []Message `json:"messages"`
	Suggestions     []string  `json:"suggestions"`
	Content         Panel     `json:"content"`
	IsLoading       bool      `json:"isLoading"`
	IsSpeaking      bool      `json:"isSpeaking"`
	IsListening     bool      `json:"isListening"`
	Transcript      string    `json:"transcript"`
	SpeechAvailable bool      `json:"speechAvailable"`
}

// Orchestrator owns one conversation: the message log, suggestions, content
// panel, session flags and transcript. At most one AI round-trip is in flight;
// submissions made while loading are rejected, not queued.
type Orchestrator struct {
	assistant Assistant
	capture   SpeechCapture
	player    Player
	opts      Options
	logger    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	tasks  sync.WaitGroup

	mu          sync.Mutex
	chat        Chat
	started     bool
	messages    []Message
	suggestions []string
	panel       Panel
	loading     bool
	listening   bool
	transcript  Transcript
	seq         uint64

	emitMu    sync.Mutex
	listeners []func(Snapshot)
	turnHooks []func(fallback bool)
}

// New creates an orchestrator. capture and player may be nil, in which case
// listening and audio playback are disabled.
func New(assistant Assistant, capture SpeechCapture, player Player, opts Options, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		assistant: assistant,
		capture:   capture,
		player:    player,
		opts:      opts.withDefaults(),
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		panel:     Panel{Type: ContentNone},
		loading:   true,
	}
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn must not call back into the orchestrator synchronously.
func (o *Orchestrator) Subscribe(fn func(Snapshot)) {
	o.emitMu.Lock()
	defer o.emitMu.Unlock()
	o.listeners = append(o.listeners, fn)
}

// OnTurnComplete registers fn to run after each AI reply is applied
func (o *Orchestrator) OnTurnComplete(fn func(fallback bool)) {
	o.emitMu.Lock()
	defer o.emitMu.Unlock()
	o.turnHooks = append(o.turnHooks, fn)
}

// Start opens the chat session and shows the welcome turn. If the AI service
// cannot be initialized the conversation stays open with a support panel.
func (o *Orchestrator) Start(ctx context.Context) {
	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		return
	}
	o.started = true
	o.mu.Unlock()

	if o.capture == nil {
		o.logger.Info("🎙️ Speech capture unavailable, listening disabled")
	}

	chat, err := o.assistant.StartChat(ctx)

	o.mu.Lock()
	if err != nil {
		o.logger.Error("❌ Failed to start chat session", zap.Error(err))
		o.messages = []Message{newMessage(SenderAI, InitFailureText)}
		o.panel = initFailurePanel()
		o.suggestions = nil
	} else {
		initial := InitialReply()
		o.chat = chat
		o.messages = []Message{newMessage(SenderAI, initial.ResponseText)}
		o.suggestions = append([]string(nil), initial.Suggestions...)
		o.panel = initial.Panel()
	}
	o.loading = false
	o.mu.Unlock()

	o.publish()
}

// Submit appends a user message and starts an AI round-trip. It returns false,
// changing nothing, when text is blank, a round-trip is already in flight or
// a listening session is open.
func (o *Orchestrator) Submit(text string) bool {
	o.mu.Lock()
	if strings.TrimSpace(text) == "" || o.loading || o.listening {
		o.mu.Unlock()
		return false
	}
	o.messages = append(o.messages, newMessage(SenderUser, text))
	o.suggestions = nil
	o.panel = Panel{Type: ContentNone}
	o.loading = true
	chat := o.chat
	o.mu.Unlock()

	o.publish()

	o.tasks.Add(1)
	go o.runTurn(chat, text)
	return true
}

// SelectSuggestion submits a suggestion chip verbatim
func (o *Orchestrator) SelectSuggestion(text string) bool {
	return o.Submit(text)
}

// SelectProduct asks about the selected product card
func (o *Orchestrator) SelectProduct(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	return o.Submit(ProductQuestion(name))
}

func (o *Orchestrator) runTurn(chat Chat, text string) {
	defer o.tasks.Done()

	reply, err := o.ask(chat, text)
	fallback := err != nil
	if fallback {
		o.logger.Error("❌ AI request failed, using fallback reply", zap.Error(err))
		reply = FallbackReply()
	}
	o.receive(reply, fallback)
}

func (o *Orchestrator) ask(chat Chat, text string) (reply *StructuredReply, err error) {
	if chat == nil {
		return nil, ErrNoChat
	}
	defer func() {
		if r := recover(); r != nil {
			reply, err = nil, &panicError{value: r}
		}
	}()

	ctx, cancel := context.WithTimeout(o.ctx, o.opts.AITimeout)
	defer cancel()

	reply, err = chat.SendMessage(ctx, text)
	if err == nil && reply == nil {
		err = ErrNoChat
	}
	return reply, err
}

func (o *Orchestrator) receive(reply *StructuredReply, fallback bool) {
	o.mu.Lock()
	o.messages = append(o.messages, newMessage(SenderAI, reply.ResponseText))
	o.suggestions = append([]string(nil), reply.Suggestions...)
	o.panel = reply.Panel()
	o.loading = false
	o.mu.Unlock()

	outcome := "ok"
	if fallback {
		outcome = "fallback"
	}
	metrics.TurnsTotal.WithLabelValues(outcome).Inc()

	o.publish()
	o.emitTurn(fallback)

	o.tasks.Add(1)
	go o.speak(reply.ResponseText)
}

// speak synthesizes and plays text. Any failure only means no audio.
func (o *Orchestrator) speak(text string) {
	defer o.tasks.Done()
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("❌ Speech playback panicked", zap.Any("panic", r))
		}
	}()

	if o.player == nil || o.assistant == nil || strings.TrimSpace(text) == "" {
		return
	}

	ctx, cancel := context.WithTimeout(o.ctx, o.opts.SpeechTimeout)
	defer cancel()

	encoded, err := o.assistant.GenerateSpeech(ctx, text)
	if err != nil {
		metrics.SpeechSynthesisTotal.WithLabelValues("error").Inc()
		o.logger.Warn("⚠️ Speech synthesis failed", zap.Error(err))
		return
	}
	if encoded == "" {
		metrics.SpeechSynthesisTotal.WithLabelValues("empty").Inc()
		return
	}
	metrics.SpeechSynthesisTotal.WithLabelValues("ok").Inc()

	pcm, err := audio.DecodeBase64Audio(encoded)
	if err != nil {
		metrics.PlaybackTotal.WithLabelValues("skipped").Inc()
		o.logger.Warn("⚠️ Failed to decode speech audio", zap.Error(err))
		return
	}
	buf, err := audio.DecodePCM(pcm, o.opts.SampleRate, o.opts.Channels)
	if err != nil || buf.Length() == 0 {
		metrics.PlaybackTotal.WithLabelValues("skipped").Inc()
		o.logger.Warn("⚠️ Speech audio has no playable frames", zap.Error(err), zap.Int("bytes", len(pcm)))
		return
	}

	o.player.Play(buf)
}

// StartListening resets the transcript and starts speech capture. It is a
// no-op while loading, while already listening, or when capture is unavailable.
func (o *Orchestrator) StartListening(ctx context.Context) bool {
	if o.capture == nil || !o.capture.Available() {
		o.logger.Debug("Speech capture unavailable, ignoring start")
		return false
	}

	o.mu.Lock()
	if o.listening || o.loading {
		o.mu.Unlock()
		return false
	}
	o.transcript.Reset()
	o.listening = true
	o.mu.Unlock()

	if err := o.capture.Start(ctx); err != nil {
		o.logger.Warn("⚠️ Failed to start speech capture", zap.Error(err))
		o.mu.Lock()
		o.listening = false
		o.mu.Unlock()
		return false
	}

	metrics.ListeningSessionsTotal.Inc()
	o.publish()
	return true
}

// HandleSpeechEvent applies a recognition result. Events outside a listening
// session are dropped.
func (o *Orchestrator) HandleSpeechEvent(ev SpeechEvent) {
	o.mu.Lock()
	if !o.listening {
		o.mu.Unlock()
		return
	}
	o.transcript.Apply(ev)
	o.mu.Unlock()

	o.publish()
}

// StopListening stops capture and submits the accumulated final transcript
// if it is not blank. The transcript is cleared either way.
func (o *Orchestrator) StopListening(ctx context.Context) {
	o.endListening(ctx, true)
}

// CaptureEnded handles the capture collaborator ending the session on its own
func (o *Orchestrator) CaptureEnded() {
	o.endListening(o.ctx, false)
}

func (o *Orchestrator) endListening(ctx context.Context, stopCapture bool) {
	o.mu.Lock()
	if !o.listening {
		o.mu.Unlock()
		return
	}
	o.listening = false
	final := o.transcript.Final
	o.transcript.Reset()
	o.mu.Unlock()

	if stopCapture && o.capture != nil {
		if err := o.capture.Stop(ctx); err != nil {
			o.logger.Warn("⚠️ Failed to stop speech capture", zap.Error(err))
		}
	}

	o.publish()

	if strings.TrimSpace(final) != "" && !o.Submit(final) {
		o.logger.Warn("⚠️ Spoken message dropped, a reply is already in progress", zap.Int("length", len(final)))
	}
}

// Refresh republishes the current state, e.g. after the speaking signal changed
func (o *Orchestrator) Refresh() {
	o.publish()
}

// Snapshot returns a copy of the current state
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	snap := Snapshot{
		Seq:         o.seq,
		Messages:    append([]Message(nil), o.messages...),
		Suggestions: append([]string(nil), o.suggestions...),
		Content:     o.panel,
		IsLoading:   o.loading,
		IsListening: o.listening,
		Transcript:  o.transcript.Display(),
	}
	if o.player != nil {
		snap.IsSpeaking = o.player.IsSpeaking()
	}
	if o.capture != nil {
		snap.SpeechAvailable = o.capture.Available()
	}
	return snap
}

// publish emits snapshots in sequence order
func (o *Orchestrator) publish() {
	o.emitMu.Lock()
	defer o.emitMu.Unlock()

	o.mu.Lock()
	o.seq++
	snap := o.snapshotLocked()
	o.mu.Unlock()

	for _, fn := range o.listeners {
		fn(snap)
	}
}

// emitTurn runs hooks outside emitMu so a slow hook never delays publish
func (o *Orchestrator) emitTurn(fallback bool) {
	o.emitMu.Lock()
	hooks := append(([]func(bool))(nil), o.turnHooks...)
	o.emitMu.Unlock()

	for _, fn := range hooks {
		fn(fallback)
	}
}

// Wait blocks until every in-flight turn and speech task has finished
func (o *Orchestrator) Wait() {
	o.tasks.Wait()
}

// Close cancels in-flight work and waits for it to stop
func (o *Orchestrator) Close() {
	o.cancel()
	o.tasks.Wait()
}
