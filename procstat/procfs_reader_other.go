//go:build !linux

package procstat

import (
	"fmt"
	"runtime"
)

// ProcfsReader is only available on Linux.
type ProcfsReader struct{ NativeReader }

// NewProcfsReader returns an error on platforms without procfs.
func NewProcfsReader(Target, ...Opt) (*ProcfsReader, error) {
	return nil, fmt.Errorf("procfs reader is not supported on %s", runtime.GOOS)
}
