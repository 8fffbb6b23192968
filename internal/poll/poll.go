// Package poll implements a bounded, fixed-interval polling policy.
package poll

import (
	"context"
	"errors"
	"time"
)

const (
	DefaultMaxAttempts = 30
	DefaultInterval    = time.Second
)

// ErrExhausted is returned when every attempt completed without the
// awaited condition becoming true.
var ErrExhausted = errors.New("poll attempts exhausted")

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy waits Interval before each of at most MaxAttempts fetches.
// Fetch errors are terminal; there are no retries.
type Policy struct {
	MaxAttempts int
	Interval    time.Duration
	Sleep       SleepFunc
}

// Default is one attempt per second for thirty seconds.
func Default() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, Interval: DefaultInterval, Sleep: Sleep}
}

// Sleep is the wall-clock SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Result is the last value observed and the number of fetches made.
type Result[T any] struct {
	Value    T
	Attempts int
}

// Until fetches until done reports true, a fetch fails, ctx ends or the
// attempt budget runs out (ErrExhausted).
func Until[T any](ctx context.Context, p Policy, fetch func(context.Context) (T, error), done func(T) bool) (Result[T], error) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}
	var res Result[T]
	for res.Attempts < p.MaxAttempts {
		if err := sleep(ctx, p.Interval); err != nil {
			return res, err
		}
		v, err := fetch(ctx)
		res.Attempts++
		if err != nil {
			return res, err
		}
		res.Value = v
		if done(v) {
			return res, nil
		}
	}
	return res, ErrExhausted
}
