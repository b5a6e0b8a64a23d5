package transcriber

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"yt-summary/internal/logger"
	"yt-summary/models"
)

var ErrEmptyTranscript = errors.New("transcription returned no text")

// UsageRecorder receives one log row per model call.
type UsageRecorder interface {
	Record(ctx context.Context, log models.AILog) error
}

// Whisper transcribes audio files with the OpenAI speech-to-text endpoint.
type Whisper struct {
	client *openai.Client
	model  string
	usage  UsageRecorder
}

func NewWhisper(client *openai.Client, model string, usage UsageRecorder) *Whisper {
	if model == "" {
		model = openai.Whisper1
	}
	return &Whisper{client: client, model: model, usage: usage}
}

func (w *Whisper) Transcribe(ctx context.Context, audioPath string) (string, error) {
	start := time.Now()
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: audioPath,
	})
	text := strings.TrimSpace(resp.Text)
	if err == nil && text == "" {
		err = ErrEmptyTranscript
	}
	w.record(ctx, audioPath, text, start, err)
	if err != nil {
		return "", fmt.Errorf("whisper transcription: %w", err)
	}
	return text, nil
}

func (w *Whisper) record(ctx context.Context, audioPath, text string, start time.Time, callErr error) {
	if w.usage == nil {
		return
	}
	entry := models.AILog{
		Kind:           models.AILogKindTranscription,
		ModelName:      w.model,
		DurationMs:     time.Since(start).Milliseconds(),
		InputPrompt:    audioPath,
		OutputResponse: text,
		RequestedAt:    start,
		CompletedAt:    time.Now(),
	}
	if callErr != nil {
		msg := callErr.Error()
		entry.ErrorMessage = &msg
	}
	if err := w.usage.Record(ctx, entry); err != nil {
		logger.Log.Warnf("failed to record transcription usage: %v", err)
	}
}
