package ratelimit

import "time"

// Result is the outcome of a single rate limit check. It is returned by
// value and never persisted.
type Result struct {
	// Allowed reports whether the request may proceed.
	Allowed bool

	// Limit echoes the configured quota.
	Limit int

	// Remaining is the quota left in the current window, never negative
	// and zero when rejected.
	Remaining int

	// ResetAt is when the window or bucket state resets, or when the next
	// token becomes available.
	ResetAt time.Time

	// RetryAfter is the minimum wait before a retry is guaranteed safe.
	// Zero when the request was allowed. Rounded up to whole seconds so it
	// maps directly onto a Retry-After header.
	RetryAfter time.Duration
}

// RetryAfterSeconds returns RetryAfter as whole seconds for header use.
func (r Result) RetryAfterSeconds() int {
	return int(r.RetryAfter / time.Second)
}
