// Package llm provides integration with LLM APIs.
// This file contains the Gemini implementation of the Invoker interface.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	apperrors "github.com/edukits/curriculum-builder-go/internal/errors"
)

// geminiInvoker sends completion prompts to the Gemini API.
// It implements the Invoker interface.
type geminiInvoker struct {
	client *genai.Client
	model  string
	params Params
}

// newGeminiInvoker creates a new Gemini-based invoker.
// Returns nil if apiKey is empty (provider disabled).
func newGeminiInvoker(ctx context.Context, apiKey, model string, params Params) (*geminiInvoker, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // Intentional: provider disabled when no API key
	}

	if model == "" {
		model = DefaultGeminiModels[0]
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &geminiInvoker{
		client: client,
		model:  model,
		params: params,
	}, nil
}

// Invoke sends the prompt and returns the model's text response.
func (g *geminiInvoker) Invoke(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.client == nil {
		return "", fmt.Errorf("gemini invoker not configured")
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](g.params.Temperature),
		MaxOutputTokens: int32(g.params.MaxTokens),
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	duration := time.Since(start)

	if err != nil {
		slog.WarnContext(ctx, "completion API call failed",
			"provider", "gemini",
			"model", g.model,
			"prompt_length", len(prompt),
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return "", fmt.Errorf("generate content failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini %s: %w", g.model, apperrors.ErrEmptyResponse)
	}

	// Concatenate text parts from the first candidate
	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
	}

	result := strings.TrimSpace(text.String())
	if result == "" {
		return "", fmt.Errorf("gemini %s: %w", g.model, apperrors.ErrEmptyResponse)
	}

	// Log success with token usage
	if resp.UsageMetadata != nil {
		slog.DebugContext(ctx, "completion finished",
			"provider", "gemini",
			"model", g.model,
			"input_tokens", resp.UsageMetadata.PromptTokenCount,
			"output_tokens", resp.UsageMetadata.CandidatesTokenCount,
			"total_tokens", resp.UsageMetadata.TotalTokenCount,
			"duration_ms", duration.Milliseconds(),
			"response_length", len(result))
	}

	return result, nil
}

// Provider returns the provider type for this invoker.
func (g *geminiInvoker) Provider() Provider {
	return ProviderGemini
}

// Model returns the model name.
func (g *geminiInvoker) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

// Close releases resources.
// Safe to call on nil receiver.
func (g *geminiInvoker) Close() error {
	if g == nil {
		return nil
	}
	// Note: genai.Client does not require explicit cleanup in current SDK version
	return nil
}
