package ratelimit

import "errors"

var (
	// ErrInvalidQuota is returned when the configured quota is not positive.
	ErrInvalidQuota = errors.New("ratelimit: quota must be positive")

	// ErrInvalidWindow is returned when the configured window is shorter
	// than a millisecond.
	ErrInvalidWindow = errors.New("ratelimit: window must be at least one millisecond")

	// ErrUnknownStrategy is returned when the configured strategy is not one
	// of the supported algorithms.
	ErrUnknownStrategy = errors.New("ratelimit: unknown strategy")

	// ErrNilStore is returned when a limiter is constructed without a store.
	ErrNilStore = errors.New("ratelimit: store must not be nil")
)
