package sampler

import "github.com/reugn/procload/procstat"

// State carries the sampler memory from one period to the next. The caller
// owns it: each Sample call receives the previous State and returns the
// updated one.
type State struct {
	// Prev is the process snapshot of the last sampled period.
	Prev procstat.ProcessSnapshot
	// PrevSystem is the system snapshot of the last period in ModeCounter.
	PrevSystem procstat.SystemSnapshot
	// Valid reports whether Prev may be used as the base of a delta.
	Valid bool
}

// Invalidate returns s with the validity flag cleared, so that the next
// sample only establishes a new baseline.
func (s State) Invalidate() State {
	s.Valid = false
	return s
}
