package sampler

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/reugn/procload/internal/assert"
	"github.com/reugn/procload/procstat"
	"github.com/reugn/procload/schedule"
)

type processRead struct {
	snap procstat.ProcessSnapshot
	err  error
}

type systemRead struct {
	snap procstat.SystemSnapshot
	err  error
}

// fakeReader replays scripted reads.
type fakeReader struct {
	process []processRead
	system  []systemRead
}

func (r *fakeReader) ReadProcess() (procstat.ProcessSnapshot, error) {
	next := r.process[0]
	r.process = r.process[1:]
	return next.snap, next.err
}

func (r *fakeReader) ReadSystem() (procstat.SystemSnapshot, error) {
	next := r.system[0]
	r.system = r.system[1:]
	return next.snap, next.err
}

type fakeClock struct {
	now schedule.Timestamp
}

func (c *fakeClock) Now() schedule.Timestamp { return c.now }

func ticks(user, kernel uint64) processRead {
	return processRead{snap: procstat.ProcessSnapshot{UserTicks: user, KernelTicks: kernel}}
}

func systemTotal(total uint64) systemRead {
	var snap procstat.SystemSnapshot
	snap.Counters[3] = total
	return systemRead{snap: snap}
}

func newTestSampler(t *testing.T, reader procstat.Reader, clock Clock, mode Mode,
	policy MalformedPolicy) *Sampler {
	t.Helper()
	s, err := New(reader, clock, Config{
		Period:     time.Second,
		ClockTicks: 100,
		Mode:       mode,
		Malformed:  policy,
	})
	assert.NoError(t, err)
	return s
}

// period samples one period that started at start and reports at start+delay.
func period(t *testing.T, s *Sampler, clock *fakeClock, st State,
	start schedule.Timestamp, delay time.Duration) (State, Result) {
	t.Helper()
	clock.now = start.Add(schedule.FromDuration(delay))
	next, res, err := s.Sample(st, start, time.Second)
	assert.NoError(t, err)
	return next, res
}

func TestSampler_BaselineThenLoad(t *testing.T) {
	reader := &fakeReader{process: []processRead{ticks(1000, 500), ticks(1050, 520), ticks(1060, 520)}}
	clock := &fakeClock{}
	s := newTestSampler(t, reader, clock, ModePeriod, MalformedSkip)

	st, res := period(t, s, clock, State{}, schedule.Timestamp{Sec: 10}, time.Second)
	assert.Equal(t, OutcomeBaseline, res.Outcome)
	assert.True(t, st.Valid, "baseline should set the validity flag")

	st, res = period(t, s, clock, st, schedule.Timestamp{Sec: 11}, time.Second)
	assert.Equal(t, OutcomeLoad, res.Outcome)
	assert.Equal(t, uint64(100), res.Denominator)
	assert.InDelta(t, 70, res.Load.Total, 1e-9)
	assert.Equal(t, "70%", fmt.Sprintf("%.0f%%", res.Load.Total))
	assert.Equal(t, procstat.ProcessSnapshot{UserTicks: 1050, KernelTicks: 520}, st.Prev)

	_, res = period(t, s, clock, st, schedule.Timestamp{Sec: 12}, time.Second)
	assert.Equal(t, OutcomeLoad, res.Outcome)
	assert.InDelta(t, 10, res.Load.Total, 1e-9)
}

func TestSampler_PeriodDenominator(t *testing.T) {
	reader := &fakeReader{process: []processRead{ticks(0, 0), ticks(45, 0)}}
	clock := &fakeClock{}
	s := newTestSampler(t, reader, clock, ModePeriod, MalformedSkip)

	st, _, err := s.Sample(State{}, schedule.Timestamp{}, time.Second)
	assert.NoError(t, err)

	clock.now = schedule.Timestamp{Nsec: 950_000_000}
	_, res, err := s.Sample(st, schedule.Timestamp{}, 905*time.Millisecond)
	assert.NoError(t, err)
	// 905ms / 10ms per tick, truncated
	assert.Equal(t, uint64(90), res.Denominator)
	assert.InDelta(t, 50, res.Load.Total, 1e-9)
}

func TestSampler_StalenessBoundary(t *testing.T) {
	tests := []struct {
		delay   time.Duration
		outcome Outcome
	}{
		{1_099_999_999 * time.Nanosecond, OutcomeLoad},
		{1_100_000_000 * time.Nanosecond, OutcomeLoad},
		{1_100_000_001 * time.Nanosecond, OutcomeStale},
		{3 * time.Second, OutcomeStale},
	}

	for _, tt := range tests {
		t.Run(tt.delay.String(), func(t *testing.T) {
			reader := &fakeReader{process: []processRead{ticks(0, 0), ticks(10, 10)}}
			clock := &fakeClock{}
			s := newTestSampler(t, reader, clock, ModePeriod, MalformedSkip)

			st, _ := period(t, s, clock, State{}, schedule.Timestamp{Sec: 1}, time.Second)
			st, res := period(t, s, clock, st, schedule.Timestamp{Sec: 2}, tt.delay)
			assert.Equal(t, tt.outcome, res.Outcome)
			assert.Equal(t, tt.delay, res.Delay)
			assert.Equal(t, tt.outcome == OutcomeLoad, st.Valid)
			// the freshest snapshot is kept either way
			assert.Equal(t, uint64(10), st.Prev.UserTicks)
		})
	}
}

func TestSampler_SubSecondStaleness(t *testing.T) {
	assert.Equal(t, 1100*time.Millisecond, StaleAfter(time.Second))
	assert.Equal(t, 550*time.Millisecond, StaleAfter(500*time.Millisecond))

	tests := []struct {
		delay   time.Duration
		outcome Outcome
	}{
		{549_999_999 * time.Nanosecond, OutcomeLoad},
		{550 * time.Millisecond, OutcomeLoad},
		{550_000_001 * time.Nanosecond, OutcomeStale},
		{time.Second, OutcomeStale},
	}

	for _, tt := range tests {
		t.Run(tt.delay.String(), func(t *testing.T) {
			reader := &fakeReader{process: []processRead{ticks(0, 0), ticks(10, 10)}}
			clock := &fakeClock{}
			s, err := New(reader, clock, Config{
				Period:     500 * time.Millisecond,
				ClockTicks: 100,
			})
			assert.NoError(t, err)

			start := schedule.Timestamp{Sec: 1}
			clock.now = start.Add(schedule.FromDuration(500 * time.Millisecond))
			st, _, err := s.Sample(State{}, start, 500*time.Millisecond)
			assert.NoError(t, err)

			start = clock.now
			clock.now = start.Add(schedule.FromDuration(tt.delay))
			st, res, err := s.Sample(st, start, 500*time.Millisecond)
			assert.NoError(t, err)
			assert.Equal(t, tt.outcome, res.Outcome)
			assert.Equal(t, tt.outcome == OutcomeLoad, st.Valid)
		})
	}
}

func TestSampler_StaleThenBaseline(t *testing.T) {
	reader := &fakeReader{process: []processRead{ticks(0, 0), ticks(10, 0), ticks(20, 0), ticks(30, 0)}}
	clock := &fakeClock{}
	s := newTestSampler(t, reader, clock, ModePeriod, MalformedSkip)

	st, _ := period(t, s, clock, State{}, schedule.Timestamp{Sec: 1}, time.Second)
	st, res := period(t, s, clock, st, schedule.Timestamp{Sec: 2}, 2*time.Second)
	assert.Equal(t, OutcomeStale, res.Outcome)
	st, res = period(t, s, clock, st, schedule.Timestamp{Sec: 4}, time.Second)
	assert.Equal(t, OutcomeBaseline, res.Outcome)
	_, res = period(t, s, clock, st, schedule.Timestamp{Sec: 5}, time.Second)
	assert.Equal(t, OutcomeLoad, res.Outcome)
	assert.InDelta(t, 10, res.Load.Total, 1e-9)
}

func TestSampler_CounterMode(t *testing.T) {
	reader := &fakeReader{
		process: []processRead{ticks(100, 100), ticks(130, 110)},
		system:  []systemRead{systemTotal(10_000), systemTotal(10_200)},
	}
	clock := &fakeClock{}
	s := newTestSampler(t, reader, clock, ModeCounter, MalformedSkip)

	st, res := period(t, s, clock, State{}, schedule.Timestamp{Sec: 1}, time.Second)
	assert.Equal(t, OutcomeBaseline, res.Outcome)
	assert.Equal(t, uint64(10_000), st.PrevSystem.Total())

	st, res = period(t, s, clock, st, schedule.Timestamp{Sec: 2}, time.Second)
	assert.Equal(t, OutcomeLoad, res.Outcome)
	assert.Equal(t, uint64(200), res.Denominator)
	assert.InDelta(t, 20, res.Load.Total, 1e-9)
	assert.Equal(t, uint64(10_200), st.PrevSystem.Total())
}

func TestSampler_CounterModeSystemError(t *testing.T) {
	readErr := errors.New("read failed")
	reader := &fakeReader{
		process: []processRead{ticks(0, 0)},
		system:  []systemRead{systemTotal(100), {err: readErr}},
	}
	clock := &fakeClock{}
	s := newTestSampler(t, reader, clock, ModeCounter, MalformedSkip)

	st, _ := period(t, s, clock, State{}, schedule.Timestamp{Sec: 1}, time.Second)
	st, res := period(t, s, clock, st, schedule.Timestamp{Sec: 2}, time.Second)
	assert.Equal(t, OutcomeSkipped, res.Outcome)
	assert.ErrorIs(t, res.Err, readErr)
	assert.True(t, !st.Valid, "validity flag should be cleared")
}

func TestSampler_ZeroDenominator(t *testing.T) {
	reader := &fakeReader{
		process: []processRead{ticks(0, 0), ticks(5, 0)},
		system:  []systemRead{systemTotal(100), systemTotal(100)},
	}
	clock := &fakeClock{}
	s := newTestSampler(t, reader, clock, ModeCounter, MalformedSkip)

	st, _ := period(t, s, clock, State{}, schedule.Timestamp{Sec: 1}, time.Second)
	st, res := period(t, s, clock, st, schedule.Timestamp{Sec: 2}, time.Second)
	assert.Equal(t, OutcomeSkipped, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrZeroDenominator)
	assert.True(t, st.Valid, "validity flag should be kept")
	assert.Equal(t, uint64(5), st.Prev.UserTicks)
}

func TestSampler_MalformedPolicy(t *testing.T) {
	malformed := processRead{err: fmt.Errorf("stat: %w", procstat.ErrMalformedRecord)}

	t.Run("skip", func(t *testing.T) {
		reader := &fakeReader{process: []processRead{ticks(0, 0), malformed}}
		clock := &fakeClock{}
		s := newTestSampler(t, reader, clock, ModePeriod, MalformedSkip)

		st, _ := period(t, s, clock, State{}, schedule.Timestamp{Sec: 1}, time.Second)
		st, res := period(t, s, clock, st, schedule.Timestamp{Sec: 2}, time.Second)
		assert.Equal(t, OutcomeSkipped, res.Outcome)
		assert.ErrorIs(t, res.Err, procstat.ErrMalformedRecord)
		assert.True(t, !st.Valid, "validity flag should be cleared")
	})

	t.Run("tolerate", func(t *testing.T) {
		reader := &fakeReader{process: []processRead{malformed}}
		clock := &fakeClock{}
		s := newTestSampler(t, reader, clock, ModePeriod, MalformedTolerate)

		_, res := period(t, s, clock, State{}, schedule.Timestamp{Sec: 1}, time.Second)
		assert.Equal(t, OutcomeSkipped, res.Outcome)
	})

	t.Run("abort", func(t *testing.T) {
		reader := &fakeReader{process: []processRead{ticks(0, 0), malformed}}
		clock := &fakeClock{}
		s := newTestSampler(t, reader, clock, ModePeriod, MalformedAbort)

		st, _ := period(t, s, clock, State{}, schedule.Timestamp{Sec: 1}, time.Second)
		_, _, err := s.Sample(st, schedule.Timestamp{Sec: 2}, time.Second)
		assert.ErrorIs(t, err, procstat.ErrMalformedRecord)
	})
}

func TestSampler_TargetUnavailable(t *testing.T) {
	reader := &fakeReader{process: []processRead{
		{err: fmt.Errorf("%w: no such file", procstat.ErrTargetUnavailable)},
	}}
	s := newTestSampler(t, reader, &fakeClock{}, ModePeriod, MalformedTolerate)

	_, _, err := s.Sample(State{}, schedule.Timestamp{}, time.Second)
	assert.ErrorIs(t, err, procstat.ErrTargetUnavailable)
}

func TestNew_Validation(t *testing.T) {
	reader := &fakeReader{}
	clock := &fakeClock{}
	valid := Config{Period: time.Second, ClockTicks: 100}

	_, err := New(nil, clock, valid)
	assert.ErrorContains(t, err, "reader is nil")
	_, err = New(reader, nil, valid)
	assert.ErrorContains(t, err, "clock is nil")
	_, err = New(reader, clock, Config{ClockTicks: 100})
	assert.ErrorContains(t, err, "invalid period")
	_, err = New(reader, clock, Config{Period: time.Second})
	assert.ErrorContains(t, err, "invalid clock ticks")
}

func TestStaleAfter(t *testing.T) {
	assert.Equal(t, 1100*time.Millisecond, StaleAfter(time.Second))
	assert.Equal(t, 550*time.Millisecond, StaleAfter(500*time.Millisecond))
}
