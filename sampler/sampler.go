package sampler

import (
	"errors"
	"fmt"
	"time"

	"github.com/reugn/procload/procstat"
	"github.com/reugn/procload/schedule"
	"github.com/rs/zerolog"
)

// ErrZeroDenominator is reported when no ticks elapsed in the denominator
// source during a period, so no ratio can be formed.
var ErrZeroDenominator = errors.New("tick denominator is zero")

// Outcome classifies the result of one Sample call.
type Outcome int

const (
	// OutcomeBaseline means the snapshot only established the baseline.
	OutcomeBaseline Outcome = iota
	// OutcomeLoad means a load value was computed and is fresh.
	OutcomeLoad
	// OutcomeStale means the load was computed too long after the period
	// started and must be discarded.
	OutcomeStale
	// OutcomeSkipped means the period was discarded for the reason in
	// Result.Err.
	OutcomeSkipped
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case OutcomeBaseline:
		return "baseline"
	case OutcomeLoad:
		return "load"
	case OutcomeStale:
		return "stale"
	case OutcomeSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Result is the product of one Sample call.
type Result struct {
	Outcome     Outcome
	Load        Load
	Denominator uint64
	// Delay is the time between the start of the period and the end of
	// the computation.
	Delay time.Duration
	// Err holds the recoverable cause of OutcomeSkipped.
	Err error
}

// Clock provides the current monotonic time.
type Clock interface {
	Now() schedule.Timestamp
}

// Config holds the Sampler settings.
type Config struct {
	Period     time.Duration
	ClockTicks int64
	Mode       Mode
	Malformed  MalformedPolicy
}

// Sampler converts consecutive counter snapshots into load values. It keeps
// no state between calls; the caller passes the State in and stores the
// returned one.
type Sampler struct {
	reader     procstat.Reader
	clock      Clock
	mode       Mode
	policy     MalformedPolicy
	nsPerTick  uint64
	staleAfter time.Duration
	logger     zerolog.Logger
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithLogger configures the Sampler logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Sampler) {
		s.logger = logger
	}
}

// New returns a Sampler reading counters from reader.
func New(reader procstat.Reader, clock Clock, cfg Config, opts ...Option) (*Sampler, error) {
	if reader == nil {
		return nil, errors.New("reader is nil")
	}
	if clock == nil {
		return nil, errors.New("clock is nil")
	}
	if cfg.Period <= 0 {
		return nil, fmt.Errorf("invalid period: %v", cfg.Period)
	}
	if cfg.ClockTicks <= 0 || cfg.ClockTicks > int64(time.Second) {
		return nil, fmt.Errorf("invalid clock ticks: %d", cfg.ClockTicks)
	}

	s := &Sampler{
		reader:     reader,
		clock:      clock,
		mode:       cfg.Mode,
		policy:     cfg.Malformed,
		nsPerTick:  uint64(time.Second) / uint64(cfg.ClockTicks),
		staleAfter: StaleAfter(cfg.Period),
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// StaleAfter returns the longest accepted delay between the start of a
// period and the end of its computation: the period plus ten percent. The
// limit scales with the period, so it is 1.1s for the default 1s period but
// 550ms for a 500ms one.
func StaleAfter(period time.Duration) time.Duration {
	return period * 11 / 10
}

// ParseMode returns the record parse mode matching the policy.
func (p MalformedPolicy) ParseMode() procstat.ParseMode {
	if p == MalformedTolerate {
		return procstat.Tolerant
	}
	return procstat.Strict
}

// Sample reads the current counters and compares them with st. start is the
// instant the period's wait was armed and elapsed the measured period. The
// returned error is fatal; recoverable conditions are reported through
// Result.
func (s *Sampler) Sample(st State, start schedule.Timestamp, elapsed time.Duration) (State, Result, error) {
	var (
		sys   procstat.SystemSnapshot
		denom uint64
		err   error
	)
	switch s.mode {
	case ModeCounter:
		if sys, err = s.reader.ReadSystem(); err != nil {
			return st.Invalidate(), Result{Outcome: OutcomeSkipped, Err: err}, nil
		}
		denom = delta(st.PrevSystem.Total(), sys.Total())
	default:
		if elapsed > 0 {
			denom = uint64(elapsed) / s.nsPerTick
		}
	}

	cur, err := s.reader.ReadProcess()
	if err != nil {
		if errors.Is(err, procstat.ErrMalformedRecord) && s.policy != MalformedAbort {
			st = st.Invalidate()
			st.PrevSystem = sys
			return st, Result{Outcome: OutcomeSkipped, Err: err}, nil
		}
		return st, Result{}, err
	}

	next := State{Prev: cur, PrevSystem: sys, Valid: true}
	if !st.Valid {
		return next, Result{Outcome: OutcomeBaseline}, nil
	}
	if denom == 0 {
		return next, Result{Outcome: OutcomeSkipped, Err: ErrZeroDenominator}, nil
	}

	load := ComputeLoad(st.Prev, cur, denom)
	delay := schedule.Elapsed(start, s.clock.Now()).Duration()
	res := Result{Load: load, Denominator: denom, Delay: delay}

	s.logger.Debug().
		Uint64("denominator", denom).
		Uint64("user_ticks", delta(st.Prev.UserTicks, cur.UserTicks)).
		Uint64("kernel_ticks", delta(st.Prev.KernelTicks, cur.KernelTicks)).
		Dur("delay", delay).
		Msg("sampled")

	if delay > s.staleAfter {
		next.Valid = false
		res.Outcome = OutcomeStale
		return next, res, nil
	}
	res.Outcome = OutcomeLoad
	return next, res, nil
}
