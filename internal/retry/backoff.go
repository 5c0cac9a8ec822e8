// Package retry provides the shared resilience policy used by every
// outbound HTTP client in admon: exponential backoff with jitter, a
// bounded attempt budget, and a retryable-error predicate.
package retry

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// Backoff implements exponential backoff with jitter for retry logic.
type Backoff struct {
	Initial    time.Duration // Initial delay (default: 1s)
	Max        time.Duration // Maximum delay (default: 30s)
	Multiplier float64       // Multiplier per attempt (default: 2.0)
	Jitter     float64       // Jitter factor 0-1 (default: 0.1 = 10%)

	attempt int
	mu      sync.Mutex
}

// NewBackoff creates a new Backoff with sensible defaults.
func NewBackoff() *Backoff {
	return NewBackoffWithBase(time.Second)
}

// NewBackoffWithBase creates a Backoff starting from the given base delay.
func NewBackoffWithBase(initial time.Duration) *Backoff {
	if initial <= 0 {
		initial = time.Second
	}
	return &Backoff{
		Initial:    initial,
		Max:        30 * time.Second,
		Multiplier: 2.0,
		Jitter:     0.1,
	}
}

// Next returns the next backoff duration and increments the attempt counter.
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	// base delay: initial * multiplier^attempt
	delay := float64(b.Initial) * math.Pow(b.Multiplier, float64(b.attempt))

	if delay > float64(b.Max) {
		delay = float64(b.Max)
	}

	// jitter: delay * (1 + random(-jitter, +jitter))
	if b.Jitter > 0 {
		jitterRange := delay * b.Jitter
		delay = delay + (rand.Float64()*2-1)*jitterRange
	}

	if delay < 0 {
		delay = float64(b.Initial)
	}

	b.attempt++
	return time.Duration(delay)
}

// Reset resets the attempt counter to zero.
func (b *Backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attempt = 0
}

// Attempt returns the current attempt number.
func (b *Backoff) Attempt() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempt
}
