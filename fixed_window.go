package ratelimit

import (
	"context"
	"strconv"
	"time"
)

// checkFixedWindow counts requests in boundary-aligned windows. The window
// boundary is embedded in the storage key so the store's atomic increment
// carries the whole read-modify-write; a new boundary starts a fresh counter
// and the old one ages out via its TTL.
//
// Exactly quota requests are admitted per aligned window. The counter resets
// in one jump at the boundary, so this strategy is exempt from the
// trailing-interval bound the other three satisfy.
func (l *Limiter) checkFixedWindow(ctx context.Context, key string, now time.Time) (Result, error) {
	windowMs := l.cfg.Window.Milliseconds()
	boundaryMs := (now.UnixMilli() / windowMs) * windowMs
	resetAt := time.UnixMilli(boundaryMs + windowMs)

	windowKey := key + ":" + strconv.FormatInt(boundaryMs, 10)
	count, err := l.store.Increment(ctx, windowKey, l.cfg.Window)
	if err != nil {
		return Result{}, err
	}

	if count > int64(l.cfg.Quota) {
		return Result{
			Allowed:    false,
			Limit:      l.cfg.Quota,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: ceilSeconds(resetAt.Sub(now)),
		}, nil
	}

	return Result{
		Allowed:   true,
		Limit:     l.cfg.Quota,
		Remaining: l.cfg.Quota - int(count),
		ResetAt:   resetAt,
	}, nil
}
