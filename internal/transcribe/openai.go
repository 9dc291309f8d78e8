package transcribe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// openAISuffixes are the file extensions the OpenAI transcription API accepts.
var openAISuffixes = map[string]bool{
	".flac": true,
	".m4a":  true,
	".mp3":  true,
	".mp4":  true,
	".mpeg": true,
	".mpga": true,
	".oga":  true,
	".ogg":  true,
	".wav":  true,
	".webm": true,
}

// SafeSuffix returns the lowercased extension of filename if the API accepts
// it, falling back to ".wav" otherwise.
func SafeSuffix(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if openAISuffixes[ext] {
		return ext
	}
	return ".wav"
}

// OpenAIClient transcribes audio through the OpenAI speech-to-text API.
// Implements the Provider interface.
type OpenAIClient struct {
	client   *openai.Client
	model    string
	language string
	log      zerolog.Logger
}

// NewOpenAIClient creates a transcription client with a fixed model and
// source language.
func NewOpenAIClient(client *openai.Client, model, language string, log zerolog.Logger) *OpenAIClient {
	return &OpenAIClient{
		client:   client,
		model:    model,
		language: language,
		log:      log.With().Str("component", "transcribe").Logger(),
	}
}

// Name returns the provider name.
func (c *OpenAIClient) Name() string { return "openai" }

// Model returns the configured model identifier.
func (c *OpenAIClient) Model() string { return c.model }

// Transcribe writes the audio to a temporary file with an acceptable
// extension, sends it to the transcription API requesting plain text in
// the configured language, and returns the trimmed transcript. The
// temporary file is removed on every exit path.
func (c *OpenAIClient) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	tmp, err := os.CreateTemp("", "stt-relay-*"+SafeSuffix(filename))
	if err != nil {
		return "", fmt.Errorf("create temp audio file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(audio); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp audio file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp audio file: %w", err)
	}

	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.model,
		FilePath: tmpPath,
		Format:   openai.AudioResponseFormatText,
		Language: c.language,
	})
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	c.log.Debug().Int("chars", len(text)).Str("model", c.model).Msg("transcription complete")
	return text, nil
}
