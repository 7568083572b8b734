package procstat

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
)

// classifyLibraryError maps errors of library-backed readers onto the
// package sentinels: a vanished record means the target is gone, anything
// else is treated as a malformed record.
func classifyLibraryError(target Target, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s: %w", ErrTargetUnavailable, target, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrMalformedRecord, target, err)
}

func secondsToTicks(seconds float64, ticks int64) uint64 {
	if seconds <= 0 || math.IsNaN(seconds) {
		return 0
	}
	return uint64(math.Round(seconds * float64(ticks)))
}

func secondsToSnapshot(ticks int64, seconds ...float64) SystemSnapshot {
	var snap SystemSnapshot
	for i := 0; i < len(seconds) && i < SystemCounters; i++ {
		snap.Counters[i] = secondsToTicks(seconds[i], ticks)
	}
	return snap
}
