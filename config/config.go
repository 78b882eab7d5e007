package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all server configuration
type Config struct {
	Port            int
	RedisURL        string
	RedisPassword   string
	MaxSessions     int
	SessionTimeout  time.Duration
	GeminiAPIKey    string
	ChatModel       string
	TTSModel        string
	TTSVoice        string
	AllowedOrigins  []string
	KeepAlivePeriod time.Duration
	AITimeout       time.Duration
	SpeechEnabled   bool
	PlaybackGain    float64
	LogLevel        string
	LogFormat       string // "json" or "console"
}

// LoadConfig loads configuration from environment variables with defaults
func LoadConfig() (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	config := &Config{
		Port:            8080,
		RedisURL:        "localhost:6379",
		RedisPassword:   "",
		MaxSessions:     100,
		SessionTimeout:  30 * time.Minute,
		ChatModel:       "gemini-2.5-flash",
		TTSModel:        "gemini-2.5-flash-preview-tts",
		TTSVoice:        "Kore",
		AllowedOrigins:  []string{"*"},
		KeepAlivePeriod: 30 * time.Second,
		AITimeout:       30 * time.Second,
		SpeechEnabled:   true,
		PlaybackGain:    1.0,
		LogLevel:        "info",
		LogFormat:       "json",
	}

	// Optional: a missing key fails each session's chat start, not the process
	config.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	// Optional: PORT
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		config.Port = p
	}

	// Optional: REDIS_URL (set to "none" to disable the registry)
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		config.RedisURL = redisURL
		if redisURL == "none" {
			config.RedisURL = ""
		}
	}

	// Optional: REDIS_PASSWORD
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.RedisPassword = redisPassword
	}

	// Optional: MAX_SESSIONS
	if maxSessions := os.Getenv("MAX_SESSIONS"); maxSessions != "" {
		m, err := strconv.Atoi(maxSessions)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_SESSIONS: %w", err)
		}
		if m < 1 {
			return nil, fmt.Errorf("invalid MAX_SESSIONS: must be at least 1")
		}
		config.MaxSessions = m
	}

	// Optional: SESSION_TIMEOUT (in minutes)
	if timeout := os.Getenv("SESSION_TIMEOUT"); timeout != "" {
		t, err := strconv.Atoi(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TIMEOUT: %w", err)
		}
		config.SessionTimeout = time.Duration(t) * time.Minute
	}

	if model := os.Getenv("CHAT_MODEL"); model != "" {
		config.ChatModel = model
	}
	if model := os.Getenv("TTS_MODEL"); model != "" {
		config.TTSModel = model
	}
	if voice := os.Getenv("TTS_VOICE"); voice != "" {
		config.TTSVoice = voice
	}

	// Optional: ALLOWED_ORIGINS (comma-separated)
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.AllowedOrigins = nil
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				config.AllowedOrigins = append(config.AllowedOrigins, origin)
			}
		}
	}

	// Optional: KEEPALIVE_PERIOD (in seconds)
	if keepalive := os.Getenv("KEEPALIVE_PERIOD"); keepalive != "" {
		k, err := strconv.Atoi(keepalive)
		if err != nil {
			return nil, fmt.Errorf("invalid KEEPALIVE_PERIOD: %w", err)
		}
		config.KeepAlivePeriod = time.Duration(k) * time.Second
	}

	// Optional: AI_TIMEOUT (in seconds)
	if aiTimeout := os.Getenv("AI_TIMEOUT"); aiTimeout != "" {
		a, err := strconv.Atoi(aiTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid AI_TIMEOUT: %w", err)
		}
		config.AITimeout = time.Duration(a) * time.Second
	}

	// Optional: SPEECH_ENABLED
	if speech := os.Getenv("SPEECH_ENABLED"); speech != "" {
		s, err := strconv.ParseBool(speech)
		if err != nil {
			return nil, fmt.Errorf("invalid SPEECH_ENABLED: %w", err)
		}
		config.SpeechEnabled = s
	}

	// Optional: PLAYBACK_GAIN
	if gain := os.Getenv("PLAYBACK_GAIN"); gain != "" {
		g, err := strconv.ParseFloat(gain, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid PLAYBACK_GAIN: %w", err)
		}
		if g < 0 {
			return nil, fmt.Errorf("invalid PLAYBACK_GAIN: must not be negative")
		}
		config.PlaybackGain = g
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.LogLevel = level
	}

	// Optional: LOG_FORMAT ("json" or "console")
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		switch format {
		case "json", "console":
			config.LogFormat = format
		default:
			return nil, fmt.Errorf("invalid LOG_FORMAT: must be 'json' or 'console'")
		}
	}

	return config, nil
}
