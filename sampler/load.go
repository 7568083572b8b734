package sampler

import "github.com/reugn/procload/procstat"

// Load is the CPU load of the target over one period, in percent of the
// tick denominator.
type Load struct {
	User   float64
	Kernel float64
	Total  float64
}

// ComputeLoad derives the load between two snapshots. A counter that went
// backwards contributes zero. The denominator must be positive.
func ComputeLoad(prev, cur procstat.ProcessSnapshot, denominator uint64) Load {
	d := float64(denominator)
	user := 100.0 * (float64(delta(prev.UserTicks, cur.UserTicks)) / d)
	kernel := 100.0 * (float64(delta(prev.KernelTicks, cur.KernelTicks)) / d)
	return Load{
		User:   user,
		Kernel: kernel,
		Total:  user + kernel,
	}
}

func delta(prev, cur uint64) uint64 {
	if cur < prev {
		return 0
	}
	return cur - prev
}
