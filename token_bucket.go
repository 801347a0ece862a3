package ratelimit

import (
	"context"
	"math"
	"time"

	"github.com/atelierhq/ratelimit/store"
)

// checkTokenBucket admits requests against a bucket of quota tokens that
// refills at quota/window. Bursts drain the bucket up to full capacity; the
// long-run admission rate converges on the refill rate. The record's
// WindowStart doubles as the last refill time.
//
// Rejections leave the record untouched so refill credit keeps accruing
// against the stored refill time; the TTL equals the window, which is
// exactly the time a full refill takes, so an expired record and a full
// bucket are equivalent.
func (l *Limiter) checkTokenBucket(ctx context.Context, key string, now time.Time) (Result, error) {
	refillRate := float64(l.cfg.Quota) / float64(l.cfg.Window.Milliseconds()) // tokens per ms
	oneToken := time.Duration(math.Ceil(1/refillRate)) * time.Millisecond

	rec, err := l.store.Get(ctx, key)
	if err != nil {
		return Result{}, err
	}

	if rec == nil {
		// First observation: the current request consumes one token.
		tokens := float64(l.cfg.Quota - 1)
		if err := l.store.Set(ctx, key, &store.Record{Tokens: tokens, WindowStart: now}, l.cfg.Window); err != nil {
			return Result{}, err
		}
		return Result{
			Allowed:   true,
			Limit:     l.cfg.Quota,
			Remaining: l.cfg.Quota - 1,
			ResetAt:   now.Add(oneToken),
		}, nil
	}

	elapsedMs := now.Sub(rec.WindowStart).Milliseconds()
	tokens := math.Min(float64(l.cfg.Quota), rec.Tokens+math.Floor(float64(elapsedMs)*refillRate))

	if tokens <= 0 {
		return Result{
			Allowed:    false,
			Limit:      l.cfg.Quota,
			Remaining:  0,
			ResetAt:    now.Add(oneToken),
			RetryAfter: ceilSeconds(oneToken),
		}, nil
	}

	tokens--
	if err := l.store.Set(ctx, key, &store.Record{Tokens: tokens, WindowStart: now}, l.cfg.Window); err != nil {
		return Result{}, err
	}

	return Result{
		Allowed:   true,
		Limit:     l.cfg.Quota,
		Remaining: int(tokens),
		ResetAt:   now.Add(oneToken),
	}, nil
}
