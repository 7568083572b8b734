//go:build linux

package procstat

import (
	"bytes"
	"encoding/binary"
)

// atClkTck is the AT_CLKTCK auxiliary vector entry type.
const atClkTck = 17

// auxvClockTicks reads clock ticks per second from /proc/self/auxv.
func auxvClockTicks(fs FileSystem) (int64, bool) {
	data, err := fs.ReadFile("/proc/self/auxv")
	if err != nil {
		return 0, false
	}
	return parseAuxv(data)
}

// parseAuxv looks up AT_CLKTCK in a little-endian auxiliary vector,
// trying the 64-bit layout (16 bytes per entry) before the 32-bit one.
func parseAuxv(data []byte) (int64, bool) {
	if len(data)%16 == 0 {
		buf := bytes.NewReader(data)
		var id, val uint64
		for {
			if err := binary.Read(buf, binary.LittleEndian, &id); err != nil {
				break
			}
			if err := binary.Read(buf, binary.LittleEndian, &val); err != nil {
				break
			}
			if id == atClkTck && validClockTicks(int64(val)) {
				return int64(val), true
			}
		}
	}

	if len(data)%8 == 0 {
		buf := bytes.NewReader(data)
		var id, val uint32
		for {
			if err := binary.Read(buf, binary.LittleEndian, &id); err != nil {
				break
			}
			if err := binary.Read(buf, binary.LittleEndian, &val); err != nil {
				break
			}
			if id == atClkTck && validClockTicks(int64(val)) {
				return int64(val), true
			}
		}
	}

	return 0, false
}
