// Package llm provides integration with LLM APIs.
// This file contains the unified OpenAI-compatible implementation of the
// Invoker interface. It works with any OpenAI-compatible provider
// (Groq, Cerebras) via custom BaseURL.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	apperrors "github.com/edukits/curriculum-builder-go/internal/errors"
)

// openaiInvoker sends completion prompts to an OpenAI-compatible API.
// It implements the Invoker interface.
type openaiInvoker struct {
	client   openai.Client
	model    string
	provider Provider
	params   Params
}

// newOpenAIInvoker creates a new OpenAI-compatible invoker.
// Returns nil if apiKey is empty (provider disabled).
func newOpenAIInvoker(_ context.Context, provider Provider, apiKey, model string, params Params) (*openaiInvoker, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // Intentional: provider disabled when no API key
	}

	// Get the base URL for the provider
	baseURL, ok := ProviderEndpoint[provider]
	if !ok {
		return nil, fmt.Errorf("unsupported OpenAI-compatible provider: %s", provider)
	}

	// Use default model if not specified
	if model == "" {
		switch provider {
		case ProviderGroq:
			model = DefaultGroqModels[0]
		case ProviderCerebras:
			model = DefaultCerebrasModels[0]
		default:
			return nil, fmt.Errorf("no default model for provider: %s", provider)
		}
	}

	// Create client with custom base URL
	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &openaiInvoker{
		client:   client,
		model:    model,
		provider: provider,
		params:   params,
	}, nil
}

// Invoke sends the prompt and returns the model's text response.
func (o *openaiInvoker) Invoke(ctx context.Context, prompt string) (string, error) {
	if o == nil {
		return "", fmt.Errorf("openai invoker not configured")
	}

	params := openai.ChatCompletionNewParams{
		Model: o.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(float64(o.params.Temperature)),
		MaxTokens:   openai.Int(int64(o.params.MaxTokens)),
	}

	start := time.Now()
	resp, err := o.client.Chat.Completions.New(ctx, params)
	duration := time.Since(start)

	if err != nil {
		slog.WarnContext(ctx, "completion API call failed",
			"provider", o.provider,
			"model", o.model,
			"prompt_length", len(prompt),
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s %s: %w", o.provider, o.model, apperrors.ErrEmptyResponse)
	}

	result := strings.TrimSpace(resp.Choices[0].Message.Content)
	if result == "" {
		return "", fmt.Errorf("%s %s: %w", o.provider, o.model, apperrors.ErrEmptyResponse)
	}

	// Log success with token usage
	if resp.Usage.TotalTokens > 0 {
		slog.DebugContext(ctx, "completion finished",
			"provider", o.provider,
			"model", o.model,
			"input_tokens", resp.Usage.PromptTokens,
			"output_tokens", resp.Usage.CompletionTokens,
			"total_tokens", resp.Usage.TotalTokens,
			"duration_ms", duration.Milliseconds(),
			"response_length", len(result))
	}

	return result, nil
}

// Provider returns the provider type for this invoker.
func (o *openaiInvoker) Provider() Provider {
	if o == nil {
		return ""
	}
	return o.provider
}

// Model returns the model name.
func (o *openaiInvoker) Model() string {
	if o == nil {
		return ""
	}
	return o.model
}

// Close releases resources.
// Safe to call on nil receiver.
func (o *openaiInvoker) Close() error {
	if o == nil {
		return nil
	}
	// openai-go client doesn't require cleanup
	return nil
}
