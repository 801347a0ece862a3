// Package middleware composes rate limiters into net/http middleware.
package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/atelierhq/ratelimit"
)

const (
	headerLimit      = "X-RateLimit-Limit"
	headerRemaining  = "X-RateLimit-Remaining"
	headerReset      = "X-RateLimit-Reset"
	headerRetryAfter = "Retry-After"
)

// KeyFunc derives the rate limiting identifier from a request.
type KeyFunc func(r *http.Request) string

// SkipFunc reports whether a request bypasses limiting entirely.
type SkipFunc func(r *http.Request) bool

// RejectionFunc writes the response for a rejected request.
type RejectionFunc func(w http.ResponseWriter, r *http.Request, res ratelimit.Result)

// Options configures the middleware.
type Options struct {
	// KeyFunc derives the identifier. Default: ClientKey.
	KeyFunc KeyFunc

	// Skip bypasses limiting when it returns true, e.g. for health checks.
	Skip SkipFunc

	// OnRejected writes the rejection response. Default: RejectJSON.
	OnRejected RejectionFunc
}

// Option mutates Options.
type Option func(*Options)

// WithKeyFunc sets a custom identifier derivation.
func WithKeyFunc(fn KeyFunc) Option {
	return func(o *Options) {
		if fn != nil {
			o.KeyFunc = fn
		}
	}
}

// WithSkip sets a predicate that bypasses limiting.
func WithSkip(fn SkipFunc) Option {
	return func(o *Options) {
		o.Skip = fn
	}
}

// WithOnRejected sets a custom rejection writer.
func WithOnRejected(fn RejectionFunc) Option {
	return func(o *Options) {
		if fn != nil {
			o.OnRejected = fn
		}
	}
}

// Handler wraps a handler with a single rate limiter.
func Handler(limiter *ratelimit.Limiter, opts ...Option) func(http.Handler) http.Handler {
	return Chain([]*ratelimit.Limiter{limiter}, opts...)
}

// Chain wraps a handler with several independent limiters, e.g. a tight
// burst limiter plus a looser sustained limiter plus a global ceiling.
// Limiters are evaluated in order and the first rejection short-circuits:
// limiters after it are not consulted and their counters are not touched. A
// request runs only when every limiter admits it.
func Chain(limiters []*ratelimit.Limiter, opts ...Option) func(http.Handler) http.Handler {
	options := &Options{
		KeyFunc:    ClientKey,
		OnRejected: RejectJSON,
	}
	for _, opt := range opts {
		opt(options)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if options.Skip != nil && options.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			key := options.KeyFunc(r)

			var (
				tightest ratelimit.Result
				checked  bool
			)
			for _, limiter := range limiters {
				res := limiter.Check(r.Context(), key)
				if !res.Allowed {
					setQuotaHeaders(w, res)
					options.OnRejected(w, r, res)
					return
				}
				if !checked || res.Remaining < tightest.Remaining {
					tightest = res
				}
				checked = true
			}

			if checked {
				// Headers reflect the most constrained limiter in the chain.
				setQuotaHeaders(w, tightest)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func setQuotaHeaders(w http.ResponseWriter, res ratelimit.Result) {
	h := w.Header()
	h.Set(headerLimit, strconv.Itoa(res.Limit))
	h.Set(headerRemaining, strconv.Itoa(res.Remaining))
	h.Set(headerReset, strconv.FormatInt(res.ResetAt.Unix(), 10))
}

type rejectionInfo struct {
	Limit      int   `json:"limit"`
	Remaining  int   `json:"remaining"`
	Reset      int64 `json:"reset"`
	RetryAfter int   `json:"retryAfter"`
}

type rejectionBody struct {
	Success       bool          `json:"success"`
	Error         string        `json:"error"`
	Message       string        `json:"message"`
	RateLimitInfo rejectionInfo `json:"rateLimitInfo"`
}

// RejectJSON is the default rejection writer: 429 with a JSON body carrying
// the quota state and a Retry-After header.
func RejectJSON(w http.ResponseWriter, _ *http.Request, res ratelimit.Result) {
	retryAfter := res.RetryAfterSeconds()

	h := w.Header()
	h.Set("Content-Type", "application/json")
	if retryAfter > 0 {
		h.Set(headerRetryAfter, strconv.Itoa(retryAfter))
	}
	w.WriteHeader(http.StatusTooManyRequests)

	body := rejectionBody{
		Error:   "Rate limit exceeded",
		Message: "Too many requests, please retry later.",
		RateLimitInfo: rejectionInfo{
			Limit:      res.Limit,
			Remaining:  res.Remaining,
			Reset:      res.ResetAt.Unix(),
			RetryAfter: retryAfter,
		},
	}
	_ = json.NewEncoder(w).Encode(body)
}
