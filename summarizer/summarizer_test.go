package summarizer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yt-summary/models"
)

type scriptedCompleter struct {
	mu      sync.Mutex
	prompts []string
	systems []string
	reply   func(system, prompt string) (Completion, error)
}

func (s *scriptedCompleter) ModelName() string { return "test-model" }

func (s *scriptedCompleter) Complete(_ context.Context, system, prompt string) (Completion, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.systems = append(s.systems, system)
	s.mu.Unlock()
	return s.reply(system, prompt)
}

func echoCompleter() *scriptedCompleter {
	return &scriptedCompleter{reply: func(system, prompt string) (Completion, error) {
		if system == reduceInstruction {
			return Completion{Text: "combined", Usage: TokenUsage{TotalTokens: 3}}, nil
		}
		return Completion{Text: "summary of " + prompt, Usage: TokenUsage{TotalTokens: 1}}, nil
	}}
}

type countingLimiter struct {
	remaining int
	err       error
}

func (l *countingLimiter) WaitAndReserve(context.Context) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	if l.remaining <= 0 {
		return false, nil
	}
	l.remaining--
	return true, nil
}

type memoryUsage struct {
	logs []models.AILog
}

func (m *memoryUsage) Record(_ context.Context, log models.AILog) error {
	m.logs = append(m.logs, log)
	return nil
}

func TestEngineSummarizeSingleChunkSkipsReduce(t *testing.T) {
	completer := echoCompleter()
	usage := &memoryUsage{}

	out, err := NewEngine(completer, nil, usage).Summarize(context.Background(), []string{"only part"})
	require.NoError(t, err)

	assert.Equal(t, "summary of only part", out)
	assert.Len(t, completer.prompts, 1)
	require.Len(t, usage.logs, 1)
	assert.Equal(t, models.AILogKindSummary, usage.logs[0].Kind)
	assert.Equal(t, "test-model", usage.logs[0].ModelName)
}

func TestEngineSummarizeMapReduce(t *testing.T) {
	completer := echoCompleter()

	out, err := NewEngine(completer, nil, nil).Summarize(context.Background(), []string{"one", "  ", "two", "three"})
	require.NoError(t, err)

	assert.Equal(t, "combined", out)
	require.Len(t, completer.prompts, 4)
	assert.Equal(t, []string{"one", "two", "three"}, completer.prompts[:3])
	reducePrompt := completer.prompts[3]
	assert.Equal(t, reduceInstruction, completer.systems[3])
	assert.True(t, strings.Index(reducePrompt, "summary of one") < strings.Index(reducePrompt, "summary of three"))
}

func TestEngineSummarizeEmptyInput(t *testing.T) {
	_, err := NewEngine(echoCompleter(), nil, nil).Summarize(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = NewEngine(echoCompleter(), nil, nil).Summarize(context.Background(), []string{" ", ""})
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestEngineSummarizeQuotaExhausted(t *testing.T) {
	completer := echoCompleter()
	limiter := &countingLimiter{remaining: 2}

	_, err := NewEngine(completer, limiter, nil).Summarize(context.Background(), []string{"a", "b", "c"})
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Len(t, completer.prompts, 2)
}

func TestEngineSummarizeLimiterError(t *testing.T) {
	limiter := &countingLimiter{err: context.Canceled}

	_, err := NewEngine(echoCompleter(), limiter, nil).Summarize(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngineSummarizeCompleterErrorIsRecorded(t *testing.T) {
	boom := errors.New("upstream down")
	completer := &scriptedCompleter{reply: func(string, string) (Completion, error) {
		return Completion{}, boom
	}}
	usage := &memoryUsage{}

	_, err := NewEngine(completer, nil, usage).Summarize(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, completer.prompts, 1)
	require.Len(t, usage.logs, 1)
	require.NotNil(t, usage.logs[0].ErrorMessage)
	assert.Contains(t, *usage.logs[0].ErrorMessage, "upstream down")
}

func TestEngineSummarizeBlankResponse(t *testing.T) {
	completer := &scriptedCompleter{reply: func(string, string) (Completion, error) {
		return Completion{Text: "   "}, nil
	}}

	_, err := NewEngine(completer, nil, nil).Summarize(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestEngineAnswer(t *testing.T) {
	completer := &scriptedCompleter{reply: func(system, prompt string) (Completion, error) {
		return Completion{Text: "42"}, nil
	}}
	usage := &memoryUsage{}

	out, err := NewEngine(completer, nil, usage).Answer(context.Background(), "the answer is 42", "what is the answer?")
	require.NoError(t, err)

	assert.Equal(t, "42", out)
	assert.Equal(t, chatInstruction, completer.systems[0])
	assert.Contains(t, completer.prompts[0], "the answer is 42")
	assert.Contains(t, completer.prompts[0], "what is the answer?")
	require.Len(t, usage.logs, 1)
	assert.Equal(t, models.AILogKindChat, usage.logs[0].Kind)

	_, err = NewEngine(completer, nil, nil).Answer(context.Background(), "summary", "  ")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestOpenAICompleter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini-2024",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "short summary"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 3, "total_tokens": 13}
		}`))
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	completer := NewOpenAICompleter(openai.NewClientWithConfig(cfg), "gpt-4o-mini")

	out, err := completer.Complete(context.Background(), "system", "prompt")
	require.NoError(t, err)

	assert.Equal(t, "short summary", out.Text)
	assert.Equal(t, "gpt-4o-mini-2024", out.ModelVersion)
	assert.Equal(t, TokenUsage{InputTokens: 10, OutputTokens: 3, TotalTokens: 13}, out.Usage)
	assert.Equal(t, "gpt-4o-mini", completer.ModelName())
}
