package utils

import (
	"context"
	"time"
)

// Timer fires Fn once after Duration has elapsed, unless ctx is canceled
// first, mirroring the goroutine/select shape anggasct/fluo's TimeoutState
// used to schedule its timeout event (pkg/states/defer_state.go), but
// generalized into a standalone, reusable primitive.
func Timer(ctx context.Context, d time.Duration, fn func()) {
	go func() {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
			fn()
		case <-ctx.Done():
		}
	}()
}

// RepeatingTimer calls fn every d until ctx is canceled. Returns a stop
// function for explicit early cancellation independent of ctx.
func RepeatingTimer(ctx context.Context, d time.Duration, fn func()) (stop func()) {
	stopCh := make(chan struct{})
	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-ctx.Done():
				return
			case <-stopCh:
				return
			}
		}
	}()
	var stopped bool
	return func() {
		if !stopped {
			stopped = true
			close(stopCh)
		}
	}
}

// WithTimeout runs fn and returns its result, unless d elapses first, in
// which case it returns ok=false and fn's eventual result (if any) is
// discarded. No partial mutation performed by fn past the timeout is
// observed by the caller — the caller is expected to only commit fn's
// effect after WithTimeout returns ok=true (SPEC_FULL.md §5 cancellation
// guarantee).
func WithTimeout[T any](ctx context.Context, d time.Duration, fn func() T) (result T, ok bool) {
	cctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	done := make(chan T, 1)
	go func() {
		done <- fn()
	}()

	select {
	case result = <-done:
		return result, true
	case <-cctx.Done():
		var zero T
		return zero, false
	}
}

// ParseDuration is a thin wrapper over time.ParseDuration retained for
// symmetry with FormatDuration; kept as a single seam so config/duration
// parsing errors can be wrapped consistently if that's ever needed.
func ParseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}

// FormatDuration renders d using time.Duration's default String, the same
// format ParseDuration accepts, so round-tripping a persisted duration is
// lossless.
func FormatDuration(d time.Duration) string {
	return d.String()
}
