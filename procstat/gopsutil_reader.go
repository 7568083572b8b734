package procstat

import (
	"context"
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/process"
)

// GopsutilReader reads the counters through github.com/shirou/gopsutil.
// The library does not expose the children counters, so ChildUserTicks and
// ChildKernelTicks are always zero.
type GopsutilReader struct {
	target Target
	proc   *process.Process
	opts   options
}

var _ Reader = (*GopsutilReader)(nil)

// NewGopsutilReader returns a Reader backed by gopsutil.
func NewGopsutilReader(target Target, opts ...Opt) (*GopsutilReader, error) {
	o := makeDefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	pid, err := toPID(target.PID)
	if err != nil {
		return nil, err
	}
	proc, err := process.NewProcessWithContext(context.Background(), pid)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrTargetUnavailable, target, err)
	}
	return &GopsutilReader{
		target: target,
		proc:   proc,
		opts:   o,
	}, nil
}

// ReadProcess reads the user and kernel times of the target.
func (r *GopsutilReader) ReadProcess() (ProcessSnapshot, error) {
	ctx := context.Background()

	if r.target.TID == 0 {
		times, err := r.proc.TimesWithContext(ctx)
		if err != nil {
			return ProcessSnapshot{}, r.classify(err)
		}
		return r.snapshot(times), nil
	}

	threads, err := r.proc.ThreadsWithContext(ctx)
	if err != nil {
		return ProcessSnapshot{}, r.classify(err)
	}
	times, ok := threads[int32(r.target.TID)]
	if !ok || times == nil {
		return ProcessSnapshot{}, fmt.Errorf("%w: thread %s not found", ErrTargetUnavailable, r.target)
	}
	return r.snapshot(times), nil
}

// ReadSystem reads the aggregate times of all CPUs.
func (r *GopsutilReader) ReadSystem() (SystemSnapshot, error) {
	stats, err := cpu.TimesWithContext(context.Background(), false)
	if err != nil {
		return SystemSnapshot{}, fmt.Errorf("failed to read system cpu times: %w", err)
	}
	if len(stats) == 0 {
		return SystemSnapshot{}, fmt.Errorf("%w: no aggregate cpu times", ErrMalformedRecord)
	}
	c := stats[0]
	return secondsToSnapshot(r.opts.ticks,
		c.User, c.Nice, c.System, c.Idle, c.Iowait,
		c.Irq, c.Softirq, c.Steal, c.Guest, c.GuestNice), nil
}

func (r *GopsutilReader) snapshot(times *cpu.TimesStat) ProcessSnapshot {
	return ProcessSnapshot{
		UserTicks:   secondsToTicks(times.User, r.opts.ticks),
		KernelTicks: secondsToTicks(times.System, r.opts.ticks),
	}
}

func (r *GopsutilReader) classify(err error) error {
	if errors.Is(err, process.ErrorProcessNotRunning) {
		return fmt.Errorf("%w: %s: %w", ErrTargetUnavailable, r.target, err)
	}
	return classifyLibraryError(r.target, err)
}
