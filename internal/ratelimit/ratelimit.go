// Package ratelimit implements the token buckets that throttle the two
// hot paths of this service: pacing outbound model and embedding calls
// against provider quotas, and capping inbound API requests per client.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter is a token bucket. A bucket starts full; each call takes one
// token and tokens flow back at a fixed rate, so capacity bounds the
// burst and rate bounds the sustained throughput. Safe for concurrent
// use.
type Limiter struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64 // tokens per second
	last     time.Time
}

// New creates a full bucket holding capacity tokens that refills at
// rate tokens per second.
func New(capacity, rate float64) *Limiter {
	return &Limiter{
		tokens:   capacity,
		capacity: capacity,
		rate:     rate,
		last:     time.Now(),
	}
}

// NewPerMinute sizes a bucket from a requests-per-minute quota, the
// unit LLM providers publish their limits in. The burst is capped at
// two seconds of quota so a quiet period cannot bank a thundering herd
// against the provider.
func NewPerMinute(requestsPerMinute float64) *Limiter {
	perSecond := requestsPerMinute / 60
	return &Limiter{
		tokens:   perSecond,
		capacity: perSecond * 2,
		rate:     perSecond,
		last:     time.Now(),
	}
}

// advance credits tokens for the time elapsed since the last call.
// Callers must hold mu.
func (l *Limiter) advance() {
	now := time.Now()
	l.tokens += now.Sub(l.last).Seconds() * l.rate
	if l.tokens > l.capacity {
		l.tokens = l.capacity
	}
	l.last = now
}

// Allow takes a token if one is available. Non-blocking; used on the
// inbound request path where a denied call becomes a 429.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.advance()
	if l.tokens >= 1 {
		l.tokens--
		return true
	}
	return false
}

// Wait blocks until a token is available or ctx is done. Used on the
// outbound model-call path, where delaying a generation beats burning
// provider quota. The sleep is computed from the deficit rather than
// polled.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		l.advance()
		if l.tokens >= 1 {
			l.tokens--
			l.mu.Unlock()
			return nil
		}
		wait := time.Duration((1 - l.tokens) / l.rate * float64(time.Second))
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// Available reports the current token count, for diagnostics.
func (l *Limiter) Available() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.advance()
	return l.tokens
}

// IsFull reports whether the bucket has refilled to capacity, meaning
// the key it guards has gone idle. The per-key sweep uses this to
// decide which buckets to drop.
func (l *Limiter) IsFull() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.advance()
	return l.tokens >= l.capacity
}
