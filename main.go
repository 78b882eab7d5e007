package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/room4-2/aurashield/config"
	"github.com/room4-2/aurashield/conversation"
	"github.com/room4-2/aurashield/gemini"
	"github.com/room4-2/aurashield/server"
	"github.com/room4-2/aurashield/session"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A missing or broken AI backend is reported per session, not fatal here
	var assistant conversation.Assistant
	client, err := gemini.NewClient(ctx, gemini.Options{
		APIKey:    cfg.GeminiAPIKey,
		ChatModel: cfg.ChatModel,
		TTSModel:  cfg.TTSModel,
		Voice:     cfg.TTSVoice,
	}, logger)
	if err != nil {
		logger.Warn("⚠️ Gemini client unavailable, sessions will start in the failed state", zap.Error(err))
		assistant = conversation.Unavailable{Err: err}
	} else {
		assistant = client
	}

	// Create session manager
	sessionManager := session.NewManager(cfg, assistant, logger)

	// Start cleanup routine
	go sessionManager.StartCleanupRoutine(ctx)

	srv := server.NewServerWebsocket(cfg, sessionManager, logger)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Received shutdown signal...")
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", zap.Error(err))
		}
	}()

	if err := srv.Start(); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Server stopped")
}
