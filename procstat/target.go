package procstat

import (
	"context"
	"fmt"
	"math"

	"github.com/shirou/gopsutil/v4/process"
)

// TargetInfo describes a monitored target that was found running.
type TargetInfo struct {
	Target
	Name string
}

// LookupTarget checks that the target process exists and, when a thread id
// is given, that the thread belongs to it. The returned error wraps
// ErrTargetUnavailable when the process or thread cannot be found.
func LookupTarget(ctx context.Context, target Target) (TargetInfo, error) {
	pid, err := toPID(target.PID)
	if err != nil {
		return TargetInfo{}, err
	}
	if target.TID < 0 || target.TID > math.MaxInt32 {
		return TargetInfo{}, fmt.Errorf("invalid TID: %d", target.TID)
	}

	proc, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return TargetInfo{}, fmt.Errorf("%w: process %d: %w", ErrTargetUnavailable, target.PID, err)
	}

	info := TargetInfo{Target: target}
	if name, err := proc.NameWithContext(ctx); err == nil {
		info.Name = name
	}

	if target.TID != 0 {
		threads, err := proc.ThreadsWithContext(ctx)
		if err != nil {
			return TargetInfo{}, fmt.Errorf("failed to list threads of process %d: %w", target.PID, err)
		}
		if _, ok := threads[int32(target.TID)]; !ok {
			return TargetInfo{}, fmt.Errorf("%w: thread %d does not belong to process %d",
				ErrTargetUnavailable, target.TID, target.PID)
		}
	}

	return info, nil
}

func toPID(pid int) (int32, error) {
	if pid <= 0 || pid > math.MaxInt32 {
		return 0, fmt.Errorf("invalid PID: %d", pid)
	}
	return int32(pid), nil
}
