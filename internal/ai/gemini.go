package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.0-flash"

// GeminiCompleter sends prompts to the Gemini API.
type GeminiCompleter struct {
	client *genai.Client
	model  string
}

// NewGeminiCompleter creates a Gemini-backed Completer.
func NewGeminiCompleter(ctx context.Context, apiKey, model string) (*GeminiCompleter, error) {
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiCompleter{client: client, model: model}, nil
}

// Complete implements Completer.
func (g *GeminiCompleter) Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(opts.Temperature),
		MaxOutputTokens: opts.MaxTokens,
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}

// New returns a Gemini-backed Generator, or Disabled when apiKey is empty.
func New(ctx context.Context, apiKey, model string) (Generator, error) {
	if apiKey == "" {
		return Disabled{}, nil
	}
	llm, err := NewGeminiCompleter(ctx, apiKey, model)
	if err != nil {
		return nil, err
	}
	return NewClient(llm), nil
}
