// Package store provides key-value backends for rate limiting state.
package store

import (
	"context"
	"time"
)

// Record is the per-key rate limiting state. Which fields are meaningful
// depends on the strategy that owns the key: Count and WindowStart are used
// by the window and leaky bucket strategies, Tokens by the token bucket, and
// Events (unix milliseconds, oldest first) by the sliding window.
type Record struct {
	Count       int64     `json:"count"`
	WindowStart time.Time `json:"window_start"`
	Tokens      float64   `json:"tokens"`
	Events      []int64   `json:"events,omitempty"`
}

// Store is the storage contract shared by all rate limiting strategies.
// All operations are scoped to a single key; no cross-key atomicity is
// guaranteed or required. Implementations must be safe for concurrent use.
type Store interface {
	// Get retrieves the record for a key. An absent or expired key yields
	// (nil, nil) so callers can distinguish "never seen" from "seen and
	// reset". Expiry is enforced at read time regardless of any background
	// cleanup cadence.
	Get(ctx context.Context, key string) (*Record, error)

	// Set writes a record and re-arms its TTL. The TTL is relative and
	// must be positive.
	Set(ctx context.Context, key string, rec *Record, ttl time.Duration) error

	// Increment atomically increments the counter stored at key and
	// returns the new value, starting from 1 for an absent key. The TTL is
	// armed when the counter is created and left untouched afterwards.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}
