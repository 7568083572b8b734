package procstat

import (
	"fmt"
	"path/filepath"
	"strconv"
)

// DefaultRoot is the default procfs mount point.
const DefaultRoot = "/proc"

// Target identifies the monitored process, or one of its threads when TID
// is non-zero.
type Target struct {
	PID int
	TID int
}

// StatPath returns the location of the target's stat record under root.
func (t Target) StatPath(root string) string {
	if t.TID != 0 {
		return filepath.Join(root, strconv.Itoa(t.PID), "task", strconv.Itoa(t.TID), "stat")
	}
	return filepath.Join(root, strconv.Itoa(t.PID), "stat")
}

func (t Target) String() string {
	if t.TID != 0 {
		return fmt.Sprintf("%d/%d", t.PID, t.TID)
	}
	return strconv.Itoa(t.PID)
}

// Reader reads the cumulative tick counters consumed by the load sampler.
// All counters are expressed in clock ticks.
type Reader interface {
	// ReadProcess returns the current counters of the target. Failures to
	// open or read the record wrap ErrTargetUnavailable, layout problems
	// wrap ErrMalformedRecord.
	ReadProcess() (ProcessSnapshot, error)

	// ReadSystem returns the current aggregate counters of all CPUs.
	ReadSystem() (SystemSnapshot, error)
}

// NativeReader reads the stat records directly, one fresh read per call.
type NativeReader struct {
	target Target
	opts   options
}

var _ Reader = (*NativeReader)(nil)

// NewReader returns a Reader that parses the procfs records of target.
func NewReader(target Target, opts ...Opt) *NativeReader {
	r := &NativeReader{
		target: target,
		opts:   makeDefaultOptions(),
	}
	for _, opt := range opts {
		opt(&r.opts)
	}
	return r
}

// ReadProcess reads and parses the stat record of the target.
func (r *NativeReader) ReadProcess() (ProcessSnapshot, error) {
	path := r.target.StatPath(r.opts.root)
	data, err := r.opts.fs.ReadFile(path)
	if err != nil {
		return ProcessSnapshot{}, fmt.Errorf("%w: %w", ErrTargetUnavailable, err)
	}
	snap, err := ParseProcessStat(data, r.opts.parseMode)
	if err != nil {
		return ProcessSnapshot{}, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}

// ReadSystem reads and parses the aggregate cpu line.
func (r *NativeReader) ReadSystem() (SystemSnapshot, error) {
	path := filepath.Join(r.opts.root, "stat")
	data, err := r.opts.fs.ReadFile(path)
	if err != nil {
		return SystemSnapshot{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	snap, err := ParseSystemStat(data, r.opts.parseMode)
	if err != nil {
		return SystemSnapshot{}, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}
