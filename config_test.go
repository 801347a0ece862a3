package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	tt := []struct {
		desc string
		cfg  Config
		err  error
	}{
		{
			desc: "valid config",
			cfg:  Config{Strategy: FixedWindow, Quota: 100, Window: time.Minute, Namespace: "api"},
			err:  nil,
		},
		{
			desc: "zero quota",
			cfg:  Config{Strategy: FixedWindow, Quota: 0, Window: time.Minute},
			err:  ErrInvalidQuota,
		},
		{
			desc: "negative quota",
			cfg:  Config{Strategy: TokenBucket, Quota: -5, Window: time.Minute},
			err:  ErrInvalidQuota,
		},
		{
			desc: "zero window",
			cfg:  Config{Strategy: SlidingWindow, Quota: 10, Window: 0},
			err:  ErrInvalidWindow,
		},
		{
			desc: "negative window",
			cfg:  Config{Strategy: LeakyBucket, Quota: 10, Window: -time.Second},
			err:  ErrInvalidWindow,
		},
		{
			desc: "unknown strategy",
			cfg:  Config{Strategy: "round_robin", Quota: 10, Window: time.Minute},
			err:  ErrUnknownStrategy,
		},
	}

	for _, ts := range tt {
		t.Run(ts.desc, func(t *testing.T) {
			assert.ErrorIs(t, ts.cfg.Validate(), ts.err)
		})
	}
}

func TestNew_RejectsBadInput(t *testing.T) {
	_, err := New(Config{Strategy: FixedWindow, Quota: 0, Window: time.Minute}, nil)
	assert.ErrorIs(t, err, ErrInvalidQuota)

	_, err = New(Config{Strategy: FixedWindow, Quota: 1, Window: time.Minute}, nil)
	assert.ErrorIs(t, err, ErrNilStore)
}
