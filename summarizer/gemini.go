package summarizer

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// GeminiCompleter calls Gemini models through the Gen AI SDK.
type GeminiCompleter struct {
	client *genai.Client
	model  string
}

func NewGeminiCompleter(ctx context.Context, apiKey, model string, httpClient *http.Client) (*GeminiCompleter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiCompleter{client: client, model: model}, nil
}

func (g *GeminiCompleter) ModelName() string { return g.model }

func (g *GeminiCompleter) Complete(ctx context.Context, system, prompt string) (Completion, error) {
	result, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
			Temperature:       genai.Ptr[float32](0),
		},
	)
	if err != nil {
		return Completion{}, err
	}

	out := Completion{
		Text:         result.Text(),
		ModelVersion: result.ModelVersion,
	}
	if result.UsageMetadata != nil {
		out.Usage = TokenUsage{
			InputTokens:  int64(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int64(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int64(result.UsageMetadata.TotalTokenCount),
		}
	}
	return out, nil
}
