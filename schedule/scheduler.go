package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// MaxPeriod is the longest supported period.
const MaxPeriod = time.Second

// Worker is driven by the Scheduler once per period.
type Worker interface {
	// Work runs the periodic job. start is the instant the wait for this
	// period was armed and elapsed is the measured length of that wait.
	// A non-nil error stops the Scheduler.
	Work(start Timestamp, elapsed Timestamp) error

	// Slipped is called instead of Work when the wait returned too early
	// for the period's data to be trusted.
	Slipped(elapsed Timestamp)
}

// Scheduler invokes a Worker at absolute period boundaries.
type Scheduler struct {
	period        Timestamp
	slipThreshold time.Duration
	clock         Clock
	logger        zerolog.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock configures the clock used for readings and waits.
func WithClock(clock Clock) Option {
	return func(s *Scheduler) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger configures the Scheduler logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// NewScheduler returns a Scheduler with the given period, which must be
// positive and not longer than MaxPeriod.
func NewScheduler(period time.Duration, opts ...Option) (*Scheduler, error) {
	if period <= 0 || period > MaxPeriod {
		return nil, fmt.Errorf("invalid period %v: must be in (0, %v]", period, MaxPeriod)
	}
	s := &Scheduler{
		period:        FromDuration(period),
		slipThreshold: SlipThreshold(period),
		clock:         NewSystemClock(),
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SlipThreshold returns the shortest wait that is accepted as a full period:
// nine tenths of the period.
func SlipThreshold(period time.Duration) time.Duration {
	return period * 9 / 10
}

// Period returns the configured period.
func (s *Scheduler) Period() time.Duration {
	return s.period.Duration()
}

// Run drives w until ctx is done, returning nil, or until Work fails,
// returning its error.
func (s *Scheduler) Run(ctx context.Context, w Worker) error {
	next := s.clock.Now()

	for {
		if ctx.Err() != nil {
			return nil
		}

		next = next.Add(s.period)

		before := s.clock.Now()
		err := s.clock.SleepUntil(ctx, next)
		after := s.clock.Now()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			s.logger.Warn().Err(err).Msg("wait returned with non-zero status")
		}

		elapsed := Elapsed(before, after)
		if elapsed.Duration() < s.slipThreshold {
			s.logger.Debug().
				Dur("elapsed", elapsed.Duration()).
				Dur("threshold", s.slipThreshold).
				Msg("period slipped")
			w.Slipped(elapsed)
			continue
		}

		if err := w.Work(before, elapsed); err != nil {
			return err
		}
	}
}
