//go:build linux

package schedule

import (
	"context"
	"fmt"

	"golang.org/x/sys/unix"
)

// MonotonicClock implements Clock with clock_gettime and clock_nanosleep on
// CLOCK_MONOTONIC, waiting with TIMER_ABSTIME so that the wake-up boundary is
// absolute rather than relative to the call.
type MonotonicClock struct{}

var _ Clock = MonotonicClock{}

// NewSystemClock returns the preferred clock for the platform.
func NewSystemClock() Clock {
	return MonotonicClock{}
}

// Now reads CLOCK_MONOTONIC.
func (MonotonicClock) Now() Timestamp {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		panic(fmt.Sprintf("clock_gettime(CLOCK_MONOTONIC): %v", err))
	}
	sec, nsec := ts.Unix()
	return Timestamp{Sec: sec, Nsec: nsec}
}

// SleepUntil performs a single absolute clock_nanosleep. An interrupted wait
// is reported as an error and not retried. The context is only consulted
// before the wait, so cancellation takes effect at the next boundary.
func (MonotonicClock) SleepUntil(ctx context.Context, target Timestamp) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ts := unix.NsecToTimespec(target.Nanoseconds())
	if err := unix.ClockNanosleep(unix.CLOCK_MONOTONIC, unix.TIMER_ABSTIME, &ts, nil); err != nil {
		return fmt.Errorf("clock_nanosleep: %w", err)
	}
	return nil
}

// Resolution returns the resolution of CLOCK_MONOTONIC.
func (MonotonicClock) Resolution() (Timestamp, error) {
	var ts unix.Timespec
	if err := unix.ClockGetres(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return Timestamp{}, err
	}
	sec, nsec := ts.Unix()
	return Timestamp{Sec: sec, Nsec: nsec}, nil
}
