package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"yt-summary/internal/logger"
	"yt-summary/models"
)

var (
	ErrEmptyInput    = errors.New("nothing to summarize")
	ErrEmptyResponse = errors.New("model returned an empty response")
	ErrQuotaExceeded = errors.New("summary quota exceeded")
)

const mapInstruction = `You summarize one part of a video transcript.
Write a concise summary of the part you are given. Keep names, numbers and concrete claims.
Do not add an introduction such as "This part is about". Answer in the language of the transcript.`

const reduceInstruction = `You combine partial summaries of consecutive parts of one video transcript.
Write a single concise summary of the whole video from the partial summaries you are given.
Remove repetition and keep the order in which topics appear. Answer in the language of the summaries.`

const chatInstruction = `You answer questions about a video using only its summary.
If the summary does not contain the answer, say that the summary does not cover it.
Keep answers short and answer in the language of the question.`

type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// Completion is one model response.
type Completion struct {
	Text         string
	ModelVersion string
	Usage        TokenUsage
}

// Completer is a single-turn LLM call with a system instruction.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (Completion, error)
	ModelName() string
}

// Limiter gates every model call. It reports false once the budget is spent.
type Limiter interface {
	WaitAndReserve(ctx context.Context) (bool, error)
}

// UsageRecorder receives one log row per model call.
type UsageRecorder interface {
	Record(ctx context.Context, log models.AILog) error
}

// Engine summarizes chunked text map-reduce style: every chunk is summarized on its
// own and the partial summaries are combined in one final call.
type Engine struct {
	completer Completer
	limiter   Limiter
	usage     UsageRecorder
}

func NewEngine(completer Completer, limiter Limiter, usage UsageRecorder) *Engine {
	return &Engine{completer: completer, limiter: limiter, usage: usage}
}

// Summarize runs the map step over chunks and, when there is more than one partial
// summary, a reduce step over the partials.
func (e *Engine) Summarize(ctx context.Context, chunks []string) (string, error) {
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c) != "" {
			parts = append(parts, c)
		}
	}
	if len(parts) == 0 {
		return "", ErrEmptyInput
	}

	partials := make([]string, 0, len(parts))
	for i, part := range parts {
		out, err := e.complete(ctx, models.AILogKindSummary, mapInstruction, part)
		if err != nil {
			return "", fmt.Errorf("summarize chunk %d/%d: %w", i+1, len(parts), err)
		}
		partials = append(partials, out)
	}

	if len(partials) == 1 {
		return partials[0], nil
	}

	var b strings.Builder
	for i, p := range partials {
		fmt.Fprintf(&b, "Part %d:\n%s\n\n", i+1, p)
	}
	out, err := e.complete(ctx, models.AILogKindSummary, reduceInstruction, strings.TrimSpace(b.String()))
	if err != nil {
		return "", fmt.Errorf("combine %d partial summaries: %w", len(partials), err)
	}
	return out, nil
}

// Answer replies to a question about a video given its summary.
func (e *Engine) Answer(ctx context.Context, summary, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyInput
	}
	prompt := fmt.Sprintf("Summary:\n%s\n\nQuestion:\n%s", summary, question)
	return e.complete(ctx, models.AILogKindChat, chatInstruction, prompt)
}

func (e *Engine) complete(ctx context.Context, kind, system, prompt string) (string, error) {
	if e.limiter != nil {
		allowed, err := e.limiter.WaitAndReserve(ctx)
		if err != nil {
			return "", err
		}
		if !allowed {
			return "", ErrQuotaExceeded
		}
	}

	start := time.Now()
	res, err := e.completer.Complete(ctx, system, prompt)
	text := strings.TrimSpace(res.Text)
	if err == nil && text == "" {
		err = ErrEmptyResponse
	}
	e.record(ctx, kind, system, prompt, text, res, start, err)
	if err != nil {
		return "", err
	}
	return text, nil
}

func (e *Engine) record(ctx context.Context, kind, system, prompt, text string, res Completion, start time.Time, callErr error) {
	if e.usage == nil {
		return
	}
	entry := models.AILog{
		Kind:           kind,
		ModelName:      e.completer.ModelName(),
		ModelVersion:   res.ModelVersion,
		InputTokens:    res.Usage.InputTokens,
		OutputTokens:   res.Usage.OutputTokens,
		TotalTokens:    res.Usage.TotalTokens,
		DurationMs:     time.Since(start).Milliseconds(),
		InputPrompt:    fmt.Sprintf("%s\n\n%s", system, prompt),
		OutputResponse: text,
		RequestedAt:    start,
		CompletedAt:    time.Now(),
	}
	if callErr != nil {
		msg := callErr.Error()
		entry.ErrorMessage = &msg
	}
	if err := e.usage.Record(ctx, entry); err != nil {
		logger.Log.Warnf("failed to record %s usage: %v", kind, err)
	}
}
