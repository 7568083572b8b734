//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package procstat

import "github.com/tklauser/go-sysconf"

func sysconfClockTicks() (int64, bool) {
	ticks, err := sysconf.Sysconf(sysconf.SC_CLK_TCK)
	if err != nil || !validClockTicks(ticks) {
		return 0, false
	}
	return ticks, true
}
