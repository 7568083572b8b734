package sampler

import (
	"fmt"
	"strings"
)

// Mode selects how the tick denominator of the load ratio is obtained.
type Mode int

const (
	// ModePeriod divides the measured period by the duration of one tick.
	ModePeriod Mode = iota
	// ModeCounter uses the delta of the aggregate system counters.
	ModeCounter
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModePeriod:
		return "period"
	case ModeCounter:
		return "counter"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "period":
		return ModePeriod, nil
	case "counter":
		return ModeCounter, nil
	default:
		return 0, fmt.Errorf("unknown mode %q: expected period or counter", s)
	}
}

// MalformedPolicy decides what happens when a counter record is malformed.
type MalformedPolicy int

const (
	// MalformedSkip discards the period, clears the validity flag and
	// reports a diagnostic.
	MalformedSkip MalformedPolicy = iota
	// MalformedTolerate reads unparsable counter fields as zero.
	MalformedTolerate
	// MalformedAbort treats the record as a fatal error.
	MalformedAbort
)

// String implements fmt.Stringer.
func (p MalformedPolicy) String() string {
	switch p {
	case MalformedSkip:
		return "skip"
	case MalformedTolerate:
		return "tolerate"
	case MalformedAbort:
		return "abort"
	default:
		return fmt.Sprintf("MalformedPolicy(%d)", int(p))
	}
}

// ParseMalformedPolicy parses a policy name.
func ParseMalformedPolicy(s string) (MalformedPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "skip":
		return MalformedSkip, nil
	case "tolerate":
		return MalformedTolerate, nil
	case "abort":
		return MalformedAbort, nil
	default:
		return 0, fmt.Errorf("unknown malformed policy %q: expected skip, tolerate or abort", s)
	}
}
