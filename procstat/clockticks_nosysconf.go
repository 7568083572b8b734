//go:build !(linux || darwin || dragonfly || freebsd || netbsd || openbsd)

package procstat

func sysconfClockTicks() (int64, bool) {
	return 0, false
}
