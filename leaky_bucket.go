package ratelimit

import (
	"context"
	"math"
	"time"

	"github.com/atelierhq/ratelimit/store"
)

// checkLeakyBucket tracks a queue level that drains at quota/window and
// rejects when the bucket is full. The inverse accounting of the token
// bucket: instead of spending reserve capacity, arrivals fill the bucket, so
// bursts beyond the drain rate are rejected outright and the admitted flow
// is shaped to the leak rate.
//
// Rejections leave the record untouched so drain credit keeps accruing
// against the stored observation time.
func (l *Limiter) checkLeakyBucket(ctx context.Context, key string, now time.Time) (Result, error) {
	leakRate := float64(l.cfg.Quota) / float64(l.cfg.Window.Milliseconds()) // units per ms
	oneUnit := time.Duration(math.Ceil(1/leakRate)) * time.Millisecond

	rec, err := l.store.Get(ctx, key)
	if err != nil {
		return Result{}, err
	}

	var level int64
	if rec != nil {
		elapsedMs := now.Sub(rec.WindowStart).Milliseconds()
		leaked := int64(math.Floor(float64(elapsedMs) * leakRate))
		level = rec.Count - leaked
		if level < 0 {
			level = 0
		}
	}

	if level >= int64(l.cfg.Quota) {
		return Result{
			Allowed:    false,
			Limit:      l.cfg.Quota,
			Remaining:  0,
			ResetAt:    now.Add(oneUnit),
			RetryAfter: ceilSeconds(oneUnit),
		}, nil
	}

	level++
	if err := l.store.Set(ctx, key, &store.Record{Count: level, WindowStart: now}, l.cfg.Window); err != nil {
		return Result{}, err
	}

	drainAll := time.Duration(math.Ceil(float64(level)/leakRate)) * time.Millisecond
	return Result{
		Allowed:   true,
		Limit:     l.cfg.Quota,
		Remaining: l.cfg.Quota - int(level),
		ResetAt:   now.Add(drainAll),
	}, nil
}
