package procstat

const (
	defaultClockTicks = 100
	maxClockTicks     = 10000
)

// ClockTicks returns the number of clock ticks per second (USER_HZ). It is
// queried through sysconf(_SC_CLK_TCK); when that fails the auxiliary vector
// of the current process is consulted, and 100 is assumed as a last resort.
func ClockTicks() int64 {
	if ticks, ok := sysconfClockTicks(); ok {
		return ticks
	}
	if ticks, ok := auxvClockTicks(OSFileSystem{}); ok {
		return ticks
	}
	return defaultClockTicks
}

func validClockTicks(ticks int64) bool {
	return ticks > 0 && ticks <= maxClockTicks
}
