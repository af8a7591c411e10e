package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

// mockInvoker is a test mock for the Invoker interface
type mockInvoker struct {
	invokeFunc  func(ctx context.Context, prompt string) (string, error)
	provider    Provider
	model       string
	closeCalled bool
}

func (m *mockInvoker) Invoke(ctx context.Context, prompt string) (string, error) {
	if m.invokeFunc != nil {
		return m.invokeFunc(ctx, prompt)
	}
	return "", errors.New("not implemented")
}

func (m *mockInvoker) Provider() Provider {
	return m.provider
}

func (m *mockInvoker) Model() string {
	return m.model
}

func (m *mockInvoker) Close() error {
	m.closeCalled = true
	return nil
}

// mockRecorder captures metric calls for assertions
type mockRecorder struct {
	requests  []string
	retries   int
	fallbacks int
}

func (m *mockRecorder) RecordLLMRequest(provider, model, status string) {
	m.requests = append(m.requests, provider+"/"+model+"/"+status)
}

func (m *mockRecorder) RecordLLMRetry(_ string) { m.retries++ }

func (m *mockRecorder) RecordLLMFallback(_ string) { m.fallbacks++ }

func (m *mockRecorder) RecordRateLimiterWait(_ string, _ float64) {}

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  2,
		InitialDelay: 1 * time.Millisecond,
		MaxDelay:     10 * time.Millisecond,
	}
}

func TestChainInvoker_PrimarySuccess(t *testing.T) {
	t.Parallel()
	primary := &mockInvoker{
		invokeFunc: func(_ context.Context, _ string) (string, error) {
			return "WEEK 1: Introduction", nil
		},
		provider: ProviderGroq,
		model:    "llama-3.3-70b-versatile",
	}

	chain := NewChainInvoker(fastRetryConfig(), nil, nil, primary)

	result, err := chain.Invoke(context.Background(), "prompt")
	if err != nil {
		t.Errorf("Invoke() error = %v, want nil", err)
	}
	if result != "WEEK 1: Introduction" {
		t.Errorf("Invoke() result = %q", result)
	}
}

func TestChainInvoker_FallbackOnTransientError(t *testing.T) {
	t.Parallel()
	primaryCalls := 0
	primary := &mockInvoker{
		invokeFunc: func(_ context.Context, _ string) (string, error) {
			primaryCalls++
			return "", errors.New("service unavailable") // retryable error
		},
		provider: ProviderGroq,
		model:    "llama-3.3-70b-versatile",
	}
	fallback := &mockInvoker{
		invokeFunc: func(_ context.Context, _ string) (string, error) {
			return "fallback content", nil
		},
		provider: ProviderCerebras,
		model:    "llama-3.3-70b",
	}

	recorder := &mockRecorder{}
	chain := NewChainInvoker(fastRetryConfig(), nil, recorder, primary, fallback)

	result, err := chain.Invoke(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Invoke() error = %v, want nil", err)
	}
	if result != "fallback content" {
		t.Errorf("Invoke() result = %q, want fallback content", result)
	}
	if primaryCalls != 2 {
		t.Errorf("primary calls = %d, want 2 (initial + 1 retry)", primaryCalls)
	}
	if recorder.retries != 1 {
		t.Errorf("recorded retries = %d, want 1", recorder.retries)
	}
	if recorder.fallbacks != 1 {
		t.Errorf("recorded fallbacks = %d, want 1", recorder.fallbacks)
	}
}

func TestChainInvoker_QuotaErrorSkipsRetry(t *testing.T) {
	t.Parallel()
	primaryCalls := 0
	primary := &mockInvoker{
		invokeFunc: func(_ context.Context, _ string) (string, error) {
			primaryCalls++
			return "", errors.New("quota exceeded for today")
		},
		provider: ProviderGroq,
		model:    "llama-3.3-70b-versatile",
	}
	fallback := &mockInvoker{
		invokeFunc: func(_ context.Context, _ string) (string, error) {
			return "served elsewhere", nil
		},
		provider: ProviderGemini,
		model:    "gemini-2.5-flash",
	}

	chain := NewChainInvoker(fastRetryConfig(), nil, nil, primary, fallback)

	result, err := chain.Invoke(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Invoke() error = %v, want nil", err)
	}
	if result != "served elsewhere" {
		t.Errorf("Invoke() result = %q", result)
	}
	if primaryCalls != 1 {
		t.Errorf("primary calls = %d, want 1 (quota errors are not retried)", primaryCalls)
	}
}

func TestChainInvoker_AllFail(t *testing.T) {
	t.Parallel()
	failing := func(_ context.Context, _ string) (string, error) {
		return "", errors.New("503 service unavailable")
	}
	a := &mockInvoker{invokeFunc: failing, provider: ProviderGroq, model: "a"}
	b := &mockInvoker{invokeFunc: failing, provider: ProviderCerebras, model: "b"}

	chain := NewChainInvoker(fastRetryConfig(), nil, nil, a, b)

	_, err := chain.Invoke(context.Background(), "prompt")
	if err == nil {
		t.Fatal("Invoke() error = nil, want error when all invokers fail")
	}
}

func TestChainInvoker_ContextCancellation(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	primary := &mockInvoker{
		invokeFunc: func(ctx context.Context, _ string) (string, error) {
			return "", ctx.Err()
		},
		provider: ProviderGroq,
		model:    "llama-3.3-70b-versatile",
	}
	chain := NewChainInvoker(fastRetryConfig(), nil, nil, primary)

	_, err := chain.Invoke(ctx, "prompt")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Invoke() error = %v, want context.Canceled", err)
	}
}

func TestChainInvoker_Empty(t *testing.T) {
	t.Parallel()
	chain := NewChainInvoker(fastRetryConfig(), nil, nil)

	if _, err := chain.Invoke(context.Background(), "prompt"); err == nil {
		t.Error("Invoke() with empty chain should error")
	}
	if chain.Size() != 0 {
		t.Errorf("Size() = %d, want 0", chain.Size())
	}
}

func TestChainInvoker_Close(t *testing.T) {
	t.Parallel()
	a := &mockInvoker{provider: ProviderGroq, model: "a"}
	b := &mockInvoker{provider: ProviderGemini, model: "b"}
	chain := NewChainInvoker(fastRetryConfig(), nil, nil, a, b)

	if err := chain.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if !a.closeCalled || !b.closeCalled {
		t.Error("Close() should close all invokers in the chain")
	}
}
