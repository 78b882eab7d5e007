package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/room4-2/aurashield/config"
	"github.com/room4-2/aurashield/conversation"
	"github.com/room4-2/aurashield/metrics"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrMaxSessions is returned when the server is at its session limit
var ErrMaxSessions = errors.New("maximum sessions reached")

const (
	activeSessionsKey = "active_sessions"
	redisTimeout      = 2 * time.Second
)

// Manager manages all client sessions
type Manager struct {
	sessions  map[string]*ClientSession
	mu        sync.RWMutex
	redis     *redis.Client
	config    *config.Config
	assistant conversation.Assistant
	logger    *zap.Logger
}

// NewManager creates a session manager. The Redis registry is optional: when
// it cannot be reached sessions are only tracked in memory.
func NewManager(cfg *config.Config, assistant conversation.Assistant, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisURL,
			Password: cfg.RedisPassword,
			DB:       0,
		})

		// Test Redis connection
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("⚠️ Redis unavailable, continuing without session registry", zap.Error(err))
			redisClient.Close()
			redisClient = nil
		} else {
			logger.Info("✅ Connected to Redis", zap.String("addr", cfg.RedisURL))
		}
	}

	return &Manager{
		sessions:  make(map[string]*ClientSession),
		redis:     redisClient,
		config:    cfg,
		assistant: assistant,
		logger:    logger,
	}
}

// CreateSession creates a new client session
func (sm *Manager) CreateSession(ctx context.Context, clientConn *websocket.Conn) (*ClientSession, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if len(sm.sessions) >= sm.config.MaxSessions {
		return nil, ErrMaxSessions
	}

	sessionID := uuid.New().String()

	session := NewClientSession(sessionID, clientConn, sm.assistant, Options{
		AITimeout:     sm.config.AITimeout,
		PlaybackGain:  sm.config.PlaybackGain,
		SpeechEnabled: sm.config.SpeechEnabled,
		KeepAlive:     sm.config.KeepAlivePeriod,
	}, sm.logger)
	session.Orchestrator.OnTurnComplete(func(fallback bool) {
		sm.recordTurn(sessionID, fallback)
	})

	sm.storeSession(ctx, sessionID, session)
	return session, nil
}

// storeSession saves a session to memory and Redis
func (sm *Manager) storeSession(ctx context.Context, sessionID string, session *ClientSession) {
	sm.sessions[sessionID] = session
	metrics.ActiveSessions.Inc()

	if sm.redis != nil {
		sm.redis.HSet(ctx, "session:"+sessionID, map[string]interface{}{
			"created_at":    session.CreatedAt.Format(time.RFC3339),
			"last_activity": session.LastActivity().Format(time.RFC3339),
			"status":        "active",
			"turns":         0,
			"fallbacks":     0,
		})
		sm.redis.SAdd(ctx, activeSessionsKey, sessionID)
		sm.redis.Expire(ctx, "session:"+sessionID, sm.config.SessionTimeout)
	}
}

// recordTurn updates the registry after each AI reply. It runs on the
// orchestrator's turn goroutine and must not take sm.mu.
func (sm *Manager) recordTurn(sessionID string, fallback bool) {
	if sm.redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	key := "session:" + sessionID
	pipe := sm.redis.TxPipeline()
	pipe.HIncrBy(ctx, key, "turns", 1)
	if fallback {
		pipe.HIncrBy(ctx, key, "fallbacks", 1)
	}
	pipe.HSet(ctx, key, "last_activity", time.Now().Format(time.RFC3339))
	pipe.Expire(ctx, key, sm.config.SessionTimeout)
	if _, err := pipe.Exec(ctx); err != nil {
		sm.logger.Warn("⚠️ Failed to record turn", zap.String("session", shortID(sessionID)), zap.Error(err))
	}
}

// GetSession retrieves a session by ID
func (sm *Manager) GetSession(sessionID string) (*ClientSession, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.sessions[sessionID]
	return session, exists
}

// RemoveSession cleans up and removes a session
func (sm *Manager) RemoveSession(ctx context.Context, sessionID string) error {
	sm.mu.Lock()
	session, exists := sm.sessions[sessionID]
	if exists {
		delete(sm.sessions, sessionID)
	}
	sm.mu.Unlock()

	if !exists {
		return nil
	}

	sm.forget(ctx, sessionID)
	return session.Close()
}

func (sm *Manager) forget(ctx context.Context, sessionID string) {
	metrics.ActiveSessions.Dec()
	if sm.redis != nil {
		sm.redis.Del(ctx, "session:"+sessionID)
		sm.redis.SRem(ctx, activeSessionsKey, sessionID)
	}
}

// GetActiveSessionCount returns current session count
func (sm *Manager) GetActiveSessionCount() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// CleanupInactiveSessions removes sessions that have been inactive
func (sm *Manager) CleanupInactiveSessions(ctx context.Context) {
	now := time.Now()
	var expired []*ClientSession

	sm.mu.Lock()
	for id, session := range sm.sessions {
		if now.Sub(session.LastActivity()) > sm.config.SessionTimeout {
			expired = append(expired, session)
			delete(sm.sessions, id)
		}
	}
	sm.mu.Unlock()

	// Closing waits for in-flight turns, so it happens outside the lock
	for _, session := range expired {
		sm.logger.Info("🧹 Removing inactive session", zap.String("session", shortID(session.ID)))
		sm.forget(ctx, session.ID)
		session.Close()
	}
}

// StartCleanupRoutine starts periodic cleanup of inactive sessions
func (sm *Manager) StartCleanupRoutine(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sm.CleanupInactiveSessions(ctx)
		}
	}
}

// Shutdown closes all sessions
func (sm *Manager) Shutdown() {
	sm.mu.Lock()
	sessions := sm.sessions
	sm.sessions = make(map[string]*ClientSession)
	sm.mu.Unlock()

	for id, session := range sessions {
		sm.forget(context.Background(), id)
		session.Close()
	}

	if sm.redis != nil {
		sm.redis.Close()
	}
}
