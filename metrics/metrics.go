package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Conversation turns by outcome ("ok" or "fallback")
	TurnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aurashield_turns_total",
		Help: "Total number of completed conversation turns",
	}, []string{"outcome"})

	AIRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "aurashield_ai_request_seconds",
		Help:    "Latency of AI conversation calls",
		Buckets: prometheus.DefBuckets,
	})

	// Speech synthesis outcomes ("ok", "empty", "error")
	SpeechSynthesisTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aurashield_speech_synthesis_total",
		Help: "Total number of speech synthesis requests",
	}, []string{"status"})

	// Playback outcomes ("started", "failed", "skipped")
	PlaybackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aurashield_playback_total",
		Help: "Total number of playback attempts",
	}, []string{"status"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "aurashield_active_sessions",
		Help: "Current number of open conversation sessions",
	})

	ListeningSessionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aurashield_listening_sessions_total",
		Help: "Total number of speech capture sessions started",
	})
)
