package procstat

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

var errMissingField = errors.New("missing")

// ParseMode controls how counter fields that fail to parse are handled.
type ParseMode int

const (
	// Strict rejects a record whose consumed fields are missing or unparsable.
	Strict ParseMode = iota
	// Tolerant reads missing or unparsable counter fields as zero.
	Tolerant
)

// Positions of the consumed fields in a per-process stat record, 1-indexed
// as documented in proc(5).
const (
	fieldState       = 3
	fieldUTime       = 14
	fieldSTime       = 15
	fieldCUTime      = 16
	fieldCSTime      = 17
	fieldJiffies     = 53
	minProcessFields = fieldCSTime
)

// ParseProcessStat parses a /proc/<pid>/stat or /proc/<pid>/task/<tid>/stat
// record. The comm field may contain spaces and parentheses, so it is
// delimited by the first '(' and the last ')'. The header (pid, comm, state)
// is always validated; mode only affects the counter fields.
func ParseProcessStat(data []byte, mode ParseMode) (ProcessSnapshot, error) {
	var snap ProcessSnapshot

	open := bytes.IndexByte(data, '(')
	end := bytes.LastIndexByte(data, ')')
	if open < 0 || end < open {
		return snap, fmt.Errorf("%w: comm field is not delimited", ErrMalformedRecord)
	}
	if _, err := strconv.Atoi(string(bytes.TrimSpace(data[:open]))); err != nil {
		return snap, fmt.Errorf("%w: field 1 (pid): %v", ErrMalformedRecord, err)
	}

	// rest[0] is field 3
	rest := bytes.Fields(data[end+1:])
	if len(rest) == 0 || len(rest[0]) != 1 {
		return snap, fmt.Errorf("%w: field %d (state) is missing or invalid",
			ErrMalformedRecord, fieldState)
	}
	if mode == Strict && len(rest)+2 < minProcessFields {
		return snap, fmt.Errorf("%w: expected at least %d fields, got %d",
			ErrMalformedRecord, minProcessFields, len(rest)+2)
	}

	p := fieldParser{fields: rest, offset: fieldState, mode: mode}
	snap.UserTicks = p.unsigned(fieldUTime)
	snap.KernelTicks = p.unsigned(fieldSTime)
	snap.ChildUserTicks = p.signed(fieldCUTime)
	snap.ChildKernelTicks = p.signed(fieldCSTime)
	if p.has(fieldJiffies) {
		snap.Jiffies = p.unsigned(fieldJiffies)
	}
	if p.err != nil {
		return ProcessSnapshot{}, p.err
	}
	return snap, nil
}

// ParseSystemStat parses the aggregate cpu line, which must be the first
// line of /proc/stat.
func ParseSystemStat(data []byte, mode ParseMode) (SystemSnapshot, error) {
	var snap SystemSnapshot

	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	fields := bytes.Fields(line)
	if len(fields) == 0 || string(fields[0]) != "cpu" {
		return snap, fmt.Errorf("%w: first line does not start with the cpu token",
			ErrMalformedRecord)
	}
	if mode == Strict && len(fields)-1 < SystemCounters {
		return snap, fmt.Errorf("%w: expected %d cpu counters, got %d",
			ErrMalformedRecord, SystemCounters, len(fields)-1)
	}

	p := fieldParser{fields: fields[1:], offset: 1, mode: mode}
	for i := range snap.Counters {
		snap.Counters[i] = p.unsigned(i + 1)
	}
	if p.err != nil {
		return SystemSnapshot{}, p.err
	}
	return snap, nil
}

// fieldParser reads positional fields and keeps the first error.
type fieldParser struct {
	fields [][]byte
	offset int // position of fields[0]
	mode   ParseMode
	err    error
}

func (p *fieldParser) has(pos int) bool {
	return pos-p.offset < len(p.fields)
}

func (p *fieldParser) raw(pos int) (string, bool) {
	if !p.has(pos) {
		p.fail(pos, errMissingField)
		return "", false
	}
	return string(p.fields[pos-p.offset]), true
}

func (p *fieldParser) unsigned(pos int) uint64 {
	s, ok := p.raw(pos)
	if !ok {
		return 0
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		p.fail(pos, err)
		return 0
	}
	return v
}

func (p *fieldParser) signed(pos int) int64 {
	s, ok := p.raw(pos)
	if !ok {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		p.fail(pos, err)
		return 0
	}
	return v
}

func (p *fieldParser) fail(pos int, err error) {
	if p.mode == Tolerant || p.err != nil {
		return
	}
	p.err = fmt.Errorf("%w: field %d: %v", ErrMalformedRecord, pos, err)
}
