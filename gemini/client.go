package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/room4-2/aurashield/conversation"
	"github.com/room4-2/aurashield/metrics"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	DefaultChatModel = "gemini-2.5-flash"
	DefaultTTSModel  = "gemini-2.5-flash-preview-tts"
	DefaultVoice     = "Kore" // Available voices: Puck, Charon, Kore, Fenrir, Aoede, Leda, Orus, Zephyr
)

// ErrMissingAPIKey is returned when no API key is configured
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY is not set")

// Options configures the Gemini client
type Options struct {
	APIKey            string
	ChatModel         string
	TTSModel          string
	Voice             string
	SystemInstruction string
}

// Client talks to the Gemini API: one chat per conversation plus text-to-speech
type Client struct {
	client  *genai.Client
	opts    Options
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewClient creates the GenAI client. It does not contact the API.
func NewClient(ctx context.Context, opts Options, logger *zap.Logger) (*Client, error) {
	if opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if opts.ChatModel == "" {
		opts.ChatModel = DefaultChatModel
	}
	if opts.TTSModel == "" {
		opts.TTSModel = DefaultTTSModel
	}
	if opts.Voice == "" {
		opts.Voice = DefaultVoice
	}
	if opts.SystemInstruction == "" {
		opts.SystemInstruction = SystemInstruction
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Client{
		client:  client,
		opts:    opts,
		breaker: newBreaker(logger),
		logger:  logger,
	}, nil
}

// StartChat opens a chat session whose replies follow ResponseSchema
func (c *Client) StartChat(ctx context.Context) (conversation.Chat, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: c.opts.SystemInstruction},
			},
		},
		ResponseMIMEType: "application/json",
		ResponseSchema:   ResponseSchema(),
	}

	chat, err := c.client.Chats.Create(ctx, c.opts.ChatModel, config, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat session: %w", err)
	}

	c.logger.Info("✅ Chat session started", zap.String("model", c.opts.ChatModel))

	send := func(ctx context.Context, message string) (string, error) {
		resp, err := chat.SendMessage(ctx, genai.Part{Text: message})
		if err != nil {
			return "", err
		}
		return resp.Text(), nil
	}
	return newChat(send, c.breaker, c.logger), nil
}

func newBreaker(logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "gemini-chat",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("⚡ Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// Chat is one conversation handle. Calls go through the client's circuit breaker.
type Chat struct {
	send    func(ctx context.Context, message string) (string, error)
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

func newChat(send func(ctx context.Context, message string) (string, error), breaker *gobreaker.CircuitBreaker, logger *zap.Logger) *Chat {
	return &Chat{send: send, breaker: breaker, logger: logger}
}

// SendMessage sends the user's message and parses the structured reply.
// Transport errors, an open breaker and non-conforming JSON are all errors.
func (c *Chat) SendMessage(ctx context.Context, message string) (*conversation.StructuredReply, error) {
	start := time.Now()
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.send(ctx, message)
	})
	metrics.AIRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	c.logger.Debug("📥 Received reply from Gemini", zap.Duration("latency", time.Since(start)))
	return ParseReply(out.(string))
}
