//go:build linux

package procstat

import (
	"fmt"

	"github.com/prometheus/procfs"
)

// ProcfsReader reads the counters through github.com/prometheus/procfs.
type ProcfsReader struct {
	target Target
	fs     procfs.FS
}

var _ Reader = (*ProcfsReader)(nil)

// NewProcfsReader returns a Reader backed by the procfs library, mounted at
// the configured root.
func NewProcfsReader(target Target, opts ...Opt) (*ProcfsReader, error) {
	o := makeDefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	pfs, err := procfs.NewFS(o.root)
	if err != nil {
		return nil, fmt.Errorf("failed to open procfs at %s: %w", o.root, err)
	}
	return &ProcfsReader{
		target: target,
		fs:     pfs,
	}, nil
}

// ReadProcess reads the stat record of the target.
func (r *ProcfsReader) ReadProcess() (ProcessSnapshot, error) {
	proc, err := r.fs.Proc(r.target.PID)
	if err != nil {
		return ProcessSnapshot{}, fmt.Errorf("%w: %w", ErrTargetUnavailable, err)
	}
	if r.target.TID != 0 {
		if proc, err = proc.Thread(r.target.TID); err != nil {
			return ProcessSnapshot{}, fmt.Errorf("%w: %w", ErrTargetUnavailable, err)
		}
	}

	stat, err := proc.Stat()
	if err != nil {
		return ProcessSnapshot{}, classifyLibraryError(r.target, err)
	}
	return ProcessSnapshot{
		UserTicks:        uint64(stat.UTime),
		KernelTicks:      uint64(stat.STime),
		ChildUserTicks:   int64(stat.CUTime),
		ChildKernelTicks: int64(stat.CSTime),
	}, nil
}

// procfsUserHZ is the tick rate procfs assumes when it turns the cpu line
// into seconds, regardless of the host USER_HZ.
const procfsUserHZ = 100

// ReadSystem reads the aggregate cpu line. The library reports seconds
// computed with procfsUserHZ, so the values are converted back with the same
// rate to recover the raw counters.
func (r *ProcfsReader) ReadSystem() (SystemSnapshot, error) {
	stat, err := r.fs.Stat()
	if err != nil {
		return SystemSnapshot{}, fmt.Errorf("failed to read system stat: %w", err)
	}
	c := stat.CPUTotal
	return secondsToSnapshot(procfsUserHZ,
		c.User, c.Nice, c.System, c.Idle, c.Iowait,
		c.IRQ, c.SoftIRQ, c.Steal, c.Guest, c.GuestNice), nil
}
