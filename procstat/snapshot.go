package procstat

import "errors"

var (
	// ErrTargetUnavailable is returned when the status record of the monitored
	// process or thread cannot be opened or read. The target has most likely
	// exited, so there is no meaningful fallback.
	ErrTargetUnavailable = errors.New("target unavailable")

	// ErrMalformedRecord is returned when a kernel record does not have the
	// expected layout or one of its consumed fields fails to parse.
	ErrMalformedRecord = errors.New("malformed record")
)

// ProcessSnapshot holds the cumulative CPU tick counters of a process or
// thread at one point in time.
type ProcessSnapshot struct {
	// UserTicks is the time spent in user mode (field 14, utime).
	UserTicks uint64
	// KernelTicks is the time spent in kernel mode (field 15, stime).
	KernelTicks uint64
	// ChildUserTicks is the user time of waited-for children (field 16, cutime).
	ChildUserTicks int64
	// ChildKernelTicks is the kernel time of waited-for children (field 17, cstime).
	ChildKernelTicks int64
	// Jiffies is the trailing field 53, zero when the kernel does not expose it.
	Jiffies uint64
}

// SystemCounters is the number of aggregate counters on the cpu line:
// user, nice, system, idle, iowait, irq, softirq, steal, guest, guest_nice.
const SystemCounters = 10

// SystemSnapshot holds the aggregate tick counters of all CPUs.
type SystemSnapshot struct {
	Counters [SystemCounters]uint64
}

// Total returns the sum of all aggregate counters.
func (s SystemSnapshot) Total() uint64 {
	var total uint64
	for _, c := range s.Counters {
		total += c
	}
	return total
}
