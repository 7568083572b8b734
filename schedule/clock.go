package schedule

import (
	"context"
	"time"
)

// Clock provides monotonic time readings and an absolute-time wait.
type Clock interface {
	// Now returns the current monotonic time.
	Now() Timestamp

	// SleepUntil blocks until the clock reaches target. It returns
	// immediately when target is already in the past. A non-nil error
	// reports that the wait ended before target.
	SleepUntil(ctx context.Context, target Timestamp) error
}

// RuntimeClock implements Clock on top of the Go runtime monotonic clock.
// The wait is computed against the absolute target on each call, so the
// cost of the work between waits does not accumulate, and it observes
// context cancellation.
type RuntimeClock struct {
	origin time.Time
}

var _ Clock = (*RuntimeClock)(nil)

// NewRuntimeClock returns a RuntimeClock whose readings start at zero.
func NewRuntimeClock() *RuntimeClock {
	return &RuntimeClock{origin: time.Now()}
}

// Now returns the time elapsed since the clock was created.
func (c *RuntimeClock) Now() Timestamp {
	return FromDuration(time.Since(c.origin))
}

// SleepUntil waits until target or until ctx is done.
func (c *RuntimeClock) SleepUntil(ctx context.Context, target Timestamp) error {
	d := Elapsed(c.Now(), target)
	if d.Sec < 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d.Duration())
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
