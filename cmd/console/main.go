package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/room4-2/aurashield/audio"
	"github.com/room4-2/aurashield/config"
	"github.com/room4-2/aurashield/conversation"
	"github.com/room4-2/aurashield/gemini"
	"github.com/room4-2/aurashield/playback"
	"github.com/room4-2/aurashield/speech"

	"go.uber.org/zap"
)

// renderer prints each snapshot's new messages and, once a reply lands,
// the numbered suggestions and a summary of the content panel.
type renderer struct {
	mu      sync.Mutex
	printed int
	loading bool
}

func (r *renderer) render(snap conversation.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, msg := range snap.Messages[min(r.printed, len(snap.Messages)):] {
		if msg.Sender == conversation.SenderAI {
			fmt.Printf("\n🤖 %s\n", msg.Text)
		}
	}
	r.printed = len(snap.Messages)

	if snap.IsLoading && !r.loading {
		fmt.Println("⏳ thinking...")
	}
	if !snap.IsLoading && r.loading {
		printPanel(snap.Content)
		for i, s := range snap.Suggestions {
			fmt.Printf("  /%d %s\n", i+1, s)
		}
	}
	r.loading = snap.IsLoading
}

func printPanel(panel conversation.Panel) {
	data := panel.Data
	switch panel.Type {
	case conversation.ContentInsuranceList:
		fmt.Println("📋 Plans:")
		for i, p := range data.Products {
			fmt.Printf("  /p%d %s (%s) %s/month, %s coverage\n", i+1, p.Name, p.Category, p.MonthlyPremium, p.Coverage)
		}
	case conversation.ContentInsuranceDetail:
		if p := data.Product; p != nil {
			fmt.Printf("📄 %s (%s)\n   %s\n   %s/month, %s coverage\n", p.Name, p.Category, p.Description, p.MonthlyPremium, p.Coverage)
		}
	case conversation.ContentFAQ:
		for _, f := range data.FAQs {
			fmt.Printf("❓ %s\n   %s\n", f.Question, f.Answer)
		}
	case conversation.ContentWelcome, conversation.ContentSupport:
		if data.Title != "" {
			fmt.Printf("💬 %s: %s\n", data.Title, data.Message)
		}
	}
}

func main() {
	noAudio := flag.Bool("no-audio", false, "Disable spoken replies")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.LogFormat = "console"
	if os.Getenv("LOG_LEVEL") == "" {
		cfg.LogLevel = "warn"
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	var assistant conversation.Assistant
	client, err := gemini.NewClient(ctx, gemini.Options{
		APIKey:    cfg.GeminiAPIKey,
		ChatModel: cfg.ChatModel,
		TTSModel:  cfg.TTSModel,
		Voice:     cfg.TTSVoice,
	}, logger)
	if err != nil {
		logger.Warn("⚠️ Gemini client unavailable", zap.Error(err))
		assistant = conversation.Unavailable{Err: err}
	} else {
		assistant = client
	}

	var player conversation.Player
	if !*noAudio && cfg.SpeechEnabled {
		out, err := playback.NewSoxOutput(audio.SampleRate, audio.Channels, logger)
		if err != nil {
			logger.Warn("⚠️ Audio output unavailable, replies will not be spoken", zap.Error(err))
		} else {
			defer out.Close()
			player = playback.NewController(out, cfg.PlaybackGain, logger)
		}
	}

	logger.Info("🎙️ Speech capture unavailable in the console, listening disabled")
	orch := conversation.New(assistant, speech.Unavailable{}, player, conversation.Options{AITimeout: cfg.AITimeout}, logger)
	defer orch.Close()

	r := &renderer{loading: true}
	orch.Subscribe(r.render)
	orch.Start(ctx)

	fmt.Println("Type a message, /N to pick a suggestion, /pN to pick a plan, /quit to exit.")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		snap := orch.Snapshot()

		var accepted bool
		switch {
		case line == "":
			continue
		case line == "/quit":
			return
		case strings.HasPrefix(line, "/p"):
			n, err := strconv.Atoi(strings.TrimPrefix(line, "/p"))
			products := snap.Content.Data.Products
			if err != nil || n < 1 || n > len(products) {
				fmt.Println("No such plan")
				continue
			}
			accepted = orch.SelectProduct(products[n-1].Name)
		case strings.HasPrefix(line, "/"):
			n, err := strconv.Atoi(strings.TrimPrefix(line, "/"))
			if err != nil || n < 1 || n > len(snap.Suggestions) {
				fmt.Println("No such suggestion")
				continue
			}
			accepted = orch.SelectSuggestion(snap.Suggestions[n-1])
		default:
			accepted = orch.Submit(line)
		}

		if !accepted {
			fmt.Println("⏳ Still waiting for the previous reply")
		}
	}
}
