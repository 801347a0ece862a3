package ratelimit

import "time"

// Strategy selects the rate limiting algorithm.
type Strategy string

const (
	// FixedWindow counts requests inside boundary-aligned windows. The
	// counter resets in one jump at each boundary, so up to 2x the quota
	// can pass across a boundary (the classic fixed window tradeoff).
	FixedWindow Strategy = "fixed_window"

	// SlidingWindow keeps a log of request timestamps and enforces the
	// quota over the trailing window, avoiding the boundary burst at the
	// cost of storing up to quota+1 timestamps per key.
	SlidingWindow Strategy = "sliding_window"

	// TokenBucket refills quota/window tokens per unit time up to a
	// capacity of quota. Tolerates bursts up to full capacity while
	// enforcing the steady long-run rate.
	TokenBucket Strategy = "token_bucket"

	// LeakyBucket drains a level counter at quota/window per unit time and
	// rejects when the bucket is full. Smoother output shaping than the
	// token bucket; bursts are rejected rather than absorbed.
	LeakyBucket Strategy = "leaky_bucket"
)

// Config holds the immutable configuration for one limiter.
type Config struct {
	// Strategy is the algorithm to apply.
	Strategy Strategy

	// Quota is the maximum number of permitted operations per window.
	Quota int

	// Window is the accounting window length, at least one millisecond.
	Window time.Duration

	// Namespace isolates this limiter's key space so call sites sharing
	// identifiers do not collide.
	Namespace string
}

// Validate checks the configuration, failing fast at construction so bad
// config never surfaces at request time.
func (c Config) Validate() error {
	if c.Quota <= 0 {
		return ErrInvalidQuota
	}
	if c.Window < time.Millisecond {
		return ErrInvalidWindow
	}
	switch c.Strategy {
	case FixedWindow, SlidingWindow, TokenBucket, LeakyBucket:
		return nil
	default:
		return ErrUnknownStrategy
	}
}
