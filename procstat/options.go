package procstat

// options represents configuration options for the readers.
type options struct {
	root      string
	fs        FileSystem
	parseMode ParseMode
	ticks     int64
}

// makeDefaultOptions returns an options with default values.
func makeDefaultOptions() options {
	return options{
		root:      DefaultRoot,
		fs:        OSFileSystem{},
		parseMode: Strict,
		ticks:     defaultClockTicks,
	}
}

// Opt is a functional option type used to configure a Reader.
type Opt func(*options)

// WithRoot configures the procfs mount point. Ignored by GopsutilReader,
// which follows the HOST_PROC environment variable instead.
func WithRoot(root string) Opt {
	return func(o *options) {
		if root != "" {
			o.root = root
		}
	}
}

// WithFileSystem configures the file system used by NativeReader.
func WithFileSystem(fs FileSystem) Opt {
	return func(o *options) {
		if fs != nil {
			o.fs = fs
		}
	}
}

// WithParseMode configures how unparsable counter fields are handled by
// NativeReader.
func WithParseMode(mode ParseMode) Opt {
	return func(o *options) {
		o.parseMode = mode
	}
}

// WithClockTicks configures the ticks per second GopsutilReader uses to turn
// the CPU seconds reported by gopsutil back into ticks.
func WithClockTicks(ticks int64) Opt {
	return func(o *options) {
		if ticks > 0 {
			o.ticks = ticks
		}
	}
}
