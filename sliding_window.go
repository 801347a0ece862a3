package ratelimit

import (
	"context"
	"time"

	"github.com/atelierhq/ratelimit/store"
)

// checkSlidingWindow enforces the quota over the trailing window using a
// per-key log of request timestamps. On every check the log is pruned to
// events inside the window, the candidate request is appended speculatively,
// and the request is allowed when the log holds at most quota entries.
// Pruning plus the cap keeps the log at quota+1 entries, so storage per key
// is bounded by the quota.
//
// The retry hint is the conservative full window: all retained events have
// aged out by then, so a retry is always safe. A tighter bound is not safe
// here because rejected attempts are retained in the log.
func (l *Limiter) checkSlidingWindow(ctx context.Context, key string, now time.Time) (Result, error) {
	rec, err := l.store.Get(ctx, key)
	if err != nil {
		return Result{}, err
	}

	nowMs := now.UnixMilli()
	cutoff := nowMs - l.cfg.Window.Milliseconds()

	var events []int64
	if rec != nil {
		for _, ts := range rec.Events {
			if ts > cutoff {
				events = append(events, ts)
			}
		}
	}
	events = append(events, nowMs)
	if len(events) > l.cfg.Quota+1 {
		events = events[len(events)-l.cfg.Quota-1:]
	}

	if err := l.store.Set(ctx, key, &store.Record{Events: events}, l.cfg.Window); err != nil {
		return Result{}, err
	}

	remaining := l.cfg.Quota - len(events)
	if remaining < 0 {
		remaining = 0
	}
	// The oldest retained event is within the window, so this is always in
	// the future.
	resetAt := time.UnixMilli(events[0] + l.cfg.Window.Milliseconds())

	if len(events) > l.cfg.Quota {
		return Result{
			Allowed:    false,
			Limit:      l.cfg.Quota,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: ceilSeconds(l.cfg.Window),
		}, nil
	}

	return Result{
		Allowed:   true,
		Limit:     l.cfg.Quota,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}
