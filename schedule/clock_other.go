//go:build !linux

package schedule

// NewSystemClock returns the preferred clock for the platform.
func NewSystemClock() Clock {
	return NewRuntimeClock()
}
