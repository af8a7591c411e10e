// Package llm provides integration with LLM APIs.
// This file contains factory functions for building invoker chains.
package llm

import (
	"context"
	"log/slog"

	"github.com/edukits/curriculum-builder-go/internal/ratelimit"
)

// NewInvoker builds a fallback-enabled invoker chain from the configuration.
//
// Chain construction:
//  1. Providers are visited in cfg.Providers order; unconfigured ones are skipped.
//  2. Each provider contributes its full model chain, in order.
//  3. The resulting ChainInvoker retries each model before moving on.
//
// Returns nil (no error) if no provider is configured, so callers can treat
// a missing chain as a disabled feature.
func NewInvoker(ctx context.Context, cfg Config, params Params, limiter *ratelimit.Limiter, recorder MetricsRecorder) (*ChainInvoker, error) {
	invokers := []Invoker{}

	for _, provider := range cfg.ConfiguredProviders() {
		pc := cfg.GetProviderConfig(provider)
		if pc == nil {
			continue
		}

		for _, model := range cfg.ModelsFor(provider) {
			var (
				inv Invoker
				err error
			)
			if provider == ProviderGemini {
				inv, err = newGeminiInvoker(ctx, pc.APIKey, model, params)
			} else {
				inv, err = newOpenAIInvoker(ctx, provider, pc.APIKey, model, params)
			}
			if err != nil {
				slog.WarnContext(ctx, "failed to create invoker",
					"provider", provider,
					"model", model,
					"error", err)
				continue
			}
			invokers = append(invokers, inv)
		}
	}

	if len(invokers) == 0 {
		slog.InfoContext(ctx, "no LLM provider configured")
		return nil, nil //nolint:nilnil // Intentional: feature disabled
	}

	slog.InfoContext(ctx, "invoker chain configured",
		"primary", invokers[0].Provider(),
		"primaryModel", invokers[0].Model(),
		"chainSize", len(invokers))

	return NewChainInvoker(cfg.Retry, limiter, recorder, invokers...), nil
}
