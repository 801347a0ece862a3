package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/atelierhq/ratelimit/store"
)

const shardCount = 256

// paddedMutex keeps each shard's mutex on its own cache line to avoid
// false sharing between adjacent shards.
type paddedMutex struct {
	sync.Mutex
	_ [56]byte
}

// Limiter applies one configured strategy over one store. It is safe for
// concurrent use; checks for the same key are serialized through sharded
// locks so a read-modify-write never splits between two in-flight requests.
type Limiter struct {
	cfg   Config
	store store.Store
	log   *zap.Logger
	now   func() time.Time
	mu    [shardCount]paddedMutex
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithLogger sets the logger used for fail-open warnings. Defaults to a nop
// logger.
func WithLogger(log *zap.Logger) Option {
	return func(l *Limiter) {
		if log != nil {
			l.log = log
		}
	}
}

// WithClock overrides the limiter's time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// New creates a limiter bound to the given configuration and store. The
// configuration is validated here so request-time checks never see bad
// config.
func New(cfg Config, s store.Store, opts ...Option) (*Limiter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrNilStore
	}

	l := &Limiter{
		cfg:   cfg,
		store: s,
		log:   zap.NewNop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Config returns the limiter's configuration.
func (l *Limiter) Config() Config {
	return l.cfg
}

// Check decides whether a request from the given identifier is allowed and
// returns quota metadata alongside the decision.
//
// Store failures fail open: the request is allowed and the failure is logged
// as a warning. Availability over strictness is deliberate here; a rate
// limiter must not turn an infrastructure outage into an outage for
// legitimate traffic.
func (l *Limiter) Check(ctx context.Context, identifier string) Result {
	key := l.cfg.Namespace + ":" + identifier

	lock := l.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	now := l.now()

	var (
		res Result
		err error
	)
	switch l.cfg.Strategy {
	case FixedWindow:
		res, err = l.checkFixedWindow(ctx, key, now)
	case SlidingWindow:
		res, err = l.checkSlidingWindow(ctx, key, now)
	case TokenBucket:
		res, err = l.checkTokenBucket(ctx, key, now)
	case LeakyBucket:
		res, err = l.checkLeakyBucket(ctx, key, now)
	}

	if err != nil {
		l.log.Warn("rate limit store failure, failing open",
			zap.String("key", key),
			zap.String("strategy", string(l.cfg.Strategy)),
			zap.Error(err))
		return Result{
			Allowed:   true,
			Limit:     l.cfg.Quota,
			Remaining: l.cfg.Quota - 1,
			ResetAt:   now.Add(l.cfg.Window),
		}
	}
	return res
}

func (l *Limiter) lockFor(key string) *sync.Mutex {
	return &l.mu[fnv32a(key)%shardCount].Mutex
}

// fnv32a hashes the key without allocating.
func fnv32a(s string) uint32 {
	const offset32 = 2166136261
	const prime32 = 16777619
	h := uint32(offset32)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= prime32
	}
	return h
}

// ceilSeconds rounds a wait up to whole seconds, never below one second, so
// a caller told to retry after the result is always safe.
func ceilSeconds(d time.Duration) time.Duration {
	secs := int64(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return time.Duration(secs) * time.Second
}
