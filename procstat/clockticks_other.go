//go:build !linux

package procstat

func auxvClockTicks(FileSystem) (int64, bool) {
	return 0, false
}
