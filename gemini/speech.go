package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const speechPrompt = "Say it in a friendly and professional tone: %s"

// ErrNoAudio is returned when the TTS response carries no audio part
var ErrNoAudio = errors.New("no audio data received from TTS API")

// GenerateSpeech synthesizes text and returns base64 PCM (mono, 24kHz, 16-bit LE)
func (c *Client) GenerateSpeech(ctx context.Context, text string) (string, error) {
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityAudio)},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
					VoiceName: c.opts.Voice,
				},
			},
		},
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.opts.TTSModel, genai.Text(fmt.Sprintf(speechPrompt, text)), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate speech: %w", err)
	}

	encoded, err := AudioFromResponse(resp)
	if err != nil {
		return "", err
	}
	c.logger.Debug("🔊 Speech generated", zap.Int("base64Bytes", len(encoded)))
	return encoded, nil
}

// AudioFromResponse extracts the first inline audio part as base64
func AudioFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrNoAudio
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", ErrNoAudio
	}
	part := content.Parts[0]
	if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
		return "", ErrNoAudio
	}
	// SDK provides raw bytes in InlineData.Data
	return base64.StdEncoding.EncodeToString(part.InlineData.Data), nil
}
