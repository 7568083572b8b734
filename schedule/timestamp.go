package schedule

import "time"

const nsPerSecond = int64(time.Second)

// Timestamp is an absolute monotonic clock reading, or a non-negative
// interval between two readings, split into seconds and nanoseconds.
// Nsec is always within [0, 1e9).
type Timestamp struct {
	Sec  int64
	Nsec int64
}

// FromDuration converts a non-negative duration to a Timestamp.
func FromDuration(d time.Duration) Timestamp {
	ns := int64(d)
	return Timestamp{Sec: ns / nsPerSecond, Nsec: ns % nsPerSecond}
}

// Add returns t+d, carrying nanosecond overflow into the seconds.
func (t Timestamp) Add(d Timestamp) Timestamp {
	r := Timestamp{Sec: t.Sec + d.Sec, Nsec: t.Nsec + d.Nsec}
	if r.Nsec >= nsPerSecond {
		r.Sec++
		r.Nsec -= nsPerSecond
	}
	return r
}

// Elapsed returns later-earlier, borrowing a second when the nanosecond
// difference is negative. The caller guarantees earlier <= later.
func Elapsed(earlier, later Timestamp) Timestamp {
	r := Timestamp{Sec: later.Sec - earlier.Sec, Nsec: later.Nsec - earlier.Nsec}
	if r.Nsec < 0 {
		r.Nsec += nsPerSecond
		r.Sec--
	}
	return r
}

// Before reports whether t is earlier than u.
func (t Timestamp) Before(u Timestamp) bool {
	return t.Sec < u.Sec || (t.Sec == u.Sec && t.Nsec < u.Nsec)
}

// Nanoseconds returns t as a nanosecond count.
func (t Timestamp) Nanoseconds() int64 {
	return t.Sec*nsPerSecond + t.Nsec
}

// Duration returns t as a time.Duration.
func (t Timestamp) Duration() time.Duration {
	return time.Duration(t.Nanoseconds())
}
