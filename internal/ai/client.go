package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// CompletionOptions tunes a single completion request.
type CompletionOptions struct {
	Temperature float32
	MaxTokens   int32
}

// Completer sends one prompt to a language model and returns its text.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)
}

var errEmptyCompletion = errors.New("ai: model returned an empty response")

// Client turns domain requests into prompts for a Completer.
type Client struct {
	llm Completer
}

// NewClient wraps a Completer as a Generator.
func NewClient(llm Completer) *Client {
	return &Client{llm: llm}
}

// Categorize asks the model for one of Categories. The raw answer is
// normalized, so an unexpected reply yields FallbackCategory, not an error.
func (c *Client) Categorize(ctx context.Context, amount decimal.Decimal, remarks string) (string, error) {
	out, err := c.complete(ctx, categorizePrompt(amount, remarks), CompletionOptions{Temperature: 0.3, MaxTokens: 20})
	if err != nil {
		return "", err
	}
	return NormalizeCategory(out), nil
}

// Summarize writes the monthly narrative.
func (c *Client) Summarize(ctx context.Context, data MonthData) (string, error) {
	return c.complete(ctx, summarizePrompt(data), CompletionOptions{Temperature: 0.7, MaxTokens: 300})
}

// SpikeWarning writes a one or two sentence warning.
func (c *Client) SpikeWarning(ctx context.Context, spike SpikeData) (string, error) {
	return c.complete(ctx, spikePrompt(spike), CompletionOptions{Temperature: 0.7, MaxTokens: 100})
}

func (c *Client) complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	out, err := c.llm.Complete(ctx, prompt, opts)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", errEmptyCompletion
	}
	return out, nil
}
