// Package llm provides integration with LLM APIs.
// This file contains the fallback wrapper for cross-model and
// cross-provider failover.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/edukits/curriculum-builder-go/internal/ratelimit"
)

// MetricsRecorder receives LLM call outcomes.
// *metrics.Metrics satisfies this interface; a nil recorder disables recording.
type MetricsRecorder interface {
	RecordLLMRequest(provider, model, status string)
	RecordLLMRetry(provider string)
	RecordLLMFallback(fromProvider string)
	RecordRateLimiterWait(limiterType string, duration float64)
}

// ChainInvoker wraps an ordered list of invokers.
// It implements three-layer fallback:
// 1. Model retry with backoff (same invoker)
// 2. Chain fallback (next model, then next provider)
// 3. Error return once the chain is exhausted
type ChainInvoker struct {
	invokers    []Invoker
	retryConfig RetryConfig
	limiter     *ratelimit.Limiter
	recorder    MetricsRecorder
}

// NewChainInvoker creates a new fallback-enabled invoker.
// limiter and recorder may be nil.
func NewChainInvoker(cfg RetryConfig, limiter *ratelimit.Limiter, recorder MetricsRecorder, invokers ...Invoker) *ChainInvoker {
	if cfg.MaxAttempts <= 0 {
		cfg = DefaultRetryConfig()
	}
	chain := make([]Invoker, 0, len(invokers))
	for _, inv := range invokers {
		if inv != nil {
			chain = append(chain, inv)
		}
	}
	return &ChainInvoker{
		invokers:    chain,
		retryConfig: cfg,
		limiter:     limiter,
		recorder:    recorder,
	}
}

// Invoke tries each invoker in order with retry, falling through the chain
// on transient exhaustion or quota errors. Permanent errors stop the chain
// only for context cancellation; model- or key-level rejections move on to
// the next invoker, since a later provider may still serve the request.
func (c *ChainInvoker) Invoke(ctx context.Context, prompt string) (string, error) {
	if c == nil || len(c.invokers) == 0 {
		return "", errors.New("no LLM invokers configured")
	}

	var lastErr error
	for i, inv := range c.invokers {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		if c.limiter != nil {
			waitStart := time.Now()
			if err := c.limiter.Wait(ctx); err != nil {
				return "", fmt.Errorf("llm rate limit wait: %w", err)
			}
			wait := time.Since(waitStart)
			if c.recorder != nil {
				c.recorder.RecordRateLimiterWait("llm", wait.Seconds())
			}
			if wait > time.Second {
				slog.DebugContext(ctx, "llm rate limiter delayed call", "wait", wait)
			}
		}

		start := time.Now()
		result, err := c.invokeWithRetry(ctx, inv, prompt)
		if err == nil {
			c.recordRequest(inv, "success")
			if i > 0 {
				slog.InfoContext(ctx, "completion served by fallback invoker",
					"provider", inv.Provider(),
					"model", inv.Model(),
					"position", i,
					"duration", time.Since(start))
			}
			return result, nil
		}

		lastErr = err
		c.recordRequest(inv, "error")

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}

		slog.WarnContext(ctx, "invoker failed, trying next in chain",
			"provider", inv.Provider(),
			"model", inv.Model(),
			"action", ClassifyError(err),
			"error", err,
			"duration", time.Since(start))

		if i < len(c.invokers)-1 {
			c.recordFallback(inv)
		}
	}

	return "", fmt.Errorf("all providers failed: %w", lastErr)
}

// invokeWithRetry attempts a completion with retry logic on one invoker.
func (c *ChainInvoker) invokeWithRetry(ctx context.Context, inv Invoker, prompt string) (string, error) {
	var result string
	err := WithRetry(ctx, c.retryConfig, func(attempt int, err error) {
		if c.recorder != nil {
			c.recorder.RecordLLMRetry(inv.Provider().String())
		}
		slog.DebugContext(ctx, "retrying completion",
			"provider", inv.Provider(),
			"model", inv.Model(),
			"attempt", attempt,
			"error", err)
	}, func() error {
		var invokeErr error
		result, invokeErr = inv.Invoke(ctx, prompt)
		return invokeErr
	})
	return result, err
}

func (c *ChainInvoker) recordRequest(inv Invoker, status string) {
	if c.recorder != nil {
		c.recorder.RecordLLMRequest(inv.Provider().String(), inv.Model(), status)
	}
}

func (c *ChainInvoker) recordFallback(from Invoker) {
	if c.recorder != nil {
		c.recorder.RecordLLMFallback(from.Provider().String())
	}
}

// Provider returns the primary provider type.
func (c *ChainInvoker) Provider() Provider {
	if c == nil || len(c.invokers) == 0 {
		return ""
	}
	return c.invokers[0].Provider()
}

// Model returns the primary model name.
func (c *ChainInvoker) Model() string {
	if c == nil || len(c.invokers) == 0 {
		return ""
	}
	return c.invokers[0].Model()
}

// Close closes all invokers in the chain.
func (c *ChainInvoker) Close() error {
	if c == nil {
		return nil
	}

	var errs []error
	for _, inv := range c.invokers {
		if err := inv.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// Size returns the number of invokers in the chain.
func (c *ChainInvoker) Size() int {
	if c == nil {
		return 0
	}
	return len(c.invokers)
}
