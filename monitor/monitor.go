package monitor

import (
	"context"
	"errors"
	"fmt"

	"github.com/reugn/procload/sampler"
	"github.com/reugn/procload/schedule"
	"github.com/rs/zerolog"
)

// Monitor drives a Sampler from a Scheduler and owns the sampler State.
type Monitor struct {
	scheduler *schedule.Scheduler
	sampler   *sampler.Sampler
	reporter  *Reporter
	logger    zerolog.Logger

	state sampler.State
}

var _ schedule.Worker = (*Monitor)(nil)

// New returns a Monitor composed of the given parts.
func New(sched *schedule.Scheduler, smp *sampler.Sampler, reporter *Reporter,
	logger zerolog.Logger) (*Monitor, error) {
	if sched == nil || smp == nil || reporter == nil {
		return nil, errors.New("scheduler, sampler and reporter are required")
	}
	return &Monitor{
		scheduler: sched,
		sampler:   smp,
		reporter:  reporter,
		logger:    logger,
	}, nil
}

// Run samples once per period until ctx is done or a fatal error occurs.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info().Dur("period", m.scheduler.Period()).Msg("monitor started")
	if err := m.scheduler.Run(ctx, m); err != nil {
		return err
	}
	m.logger.Info().Msg("monitor stopped")
	return nil
}

// Work samples the target and reports the result.
func (m *Monitor) Work(start schedule.Timestamp, elapsed schedule.Timestamp) error {
	state, res, err := m.sampler.Sample(m.state, start, elapsed.Duration())
	if err != nil {
		return fmt.Errorf("failed to sample: %w", err)
	}
	m.state = state

	switch res.Outcome {
	case sampler.OutcomeStale:
		m.logger.Debug().Dur("delay", res.Delay).Msg("sample is stale")
	case sampler.OutcomeSkipped:
		m.logger.Debug().Err(res.Err).Msg("period skipped")
	}
	m.reporter.Report(res)
	return nil
}

// Slipped discards the period and invalidates the stored snapshot.
func (m *Monitor) Slipped(_ schedule.Timestamp) {
	m.state = m.state.Invalidate()
}

// State returns the current sampler state.
func (m *Monitor) State() sampler.State {
	return m.state
}
