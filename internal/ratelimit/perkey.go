package ratelimit

import (
	"sync"
	"time"
)

// PerKeyLimiterConfig sizes the per-client buckets. Generation calls
// are expensive, so the defaults used by the server allow a short burst
// and a slow sustained rate per client IP.
type PerKeyLimiterConfig struct {
	MaxTokens     float64       // burst capacity per key
	RefillRate    float64       // tokens per second per key
	CleanupPeriod time.Duration // how often idle buckets are swept
}

// PerKeyLimiter throttles requests per client key (the server keys by
// IP). Buckets are created lazily on a key's first request and swept
// once the key has been idle long enough for its bucket to refill.
type PerKeyLimiter struct {
	mu       sync.RWMutex
	buckets  map[string]*Limiter
	config   PerKeyLimiterConfig
	onDrop   func() // invoked for every rejected request
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewPerKeyLimiter creates the limiter and starts its sweep goroutine.
// Callers must Stop it on shutdown.
func NewPerKeyLimiter(cfg PerKeyLimiterConfig) *PerKeyLimiter {
	pkl := &PerKeyLimiter{
		buckets: make(map[string]*Limiter),
		config:  cfg,
		stopCh:  make(chan struct{}),
	}
	go pkl.sweepLoop()
	return pkl
}

// OnDrop registers a callback fired whenever a request is rejected,
// used to count drops in metrics. Set before serving traffic.
func (pkl *PerKeyLimiter) OnDrop(fn func()) {
	pkl.onDrop = fn
}

// Allow takes a token from the key's bucket, creating the bucket on
// first sight. An empty key (client IP unavailable) is never throttled;
// rejecting on a missing key would throttle all such clients as one.
func (pkl *PerKeyLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	pkl.mu.RLock()
	bucket, ok := pkl.buckets[key]
	pkl.mu.RUnlock()

	if !ok {
		pkl.mu.Lock()
		bucket, ok = pkl.buckets[key]
		if !ok {
			bucket = New(pkl.config.MaxTokens, pkl.config.RefillRate)
			pkl.buckets[key] = bucket
		}
		pkl.mu.Unlock()
	}

	allowed := bucket.Allow()
	if !allowed && pkl.onDrop != nil {
		pkl.onDrop()
	}
	return allowed
}

// sweepLoop drops buckets whose keys have gone idle, bounding memory
// under churning client IPs.
func (pkl *PerKeyLimiter) sweepLoop() {
	ticker := time.NewTicker(pkl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-pkl.stopCh:
			return
		case <-ticker.C:
			pkl.mu.Lock()
			for key, bucket := range pkl.buckets {
				if bucket.IsFull() {
					delete(pkl.buckets, key)
				}
			}
			pkl.mu.Unlock()
		}
	}
}

// Stop terminates the sweep goroutine. Safe to call more than once.
func (pkl *PerKeyLimiter) Stop() {
	pkl.stopOnce.Do(func() { close(pkl.stopCh) })
}

// activeKeys reports how many buckets are live, for tests.
func (pkl *PerKeyLimiter) activeKeys() int {
	pkl.mu.RLock()
	defer pkl.mu.RUnlock()
	return len(pkl.buckets)
}
