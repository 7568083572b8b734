package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/reugn/procload/procstat"
	"github.com/reugn/procload/sampler"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUsage reports missing or invalid target identifiers.
	ErrUsage = errors.New("please enter pid number as arg1 and optionally tid number as arg2")

	// ErrInvalid reports a configuration value out of range.
	ErrInvalid = errors.New("invalid configuration")
)

// Counter sources.
const (
	SourceNative   = "native"
	SourceProcfs   = "procfs"
	SourceGopsutil = "gopsutil"
)

// Config holds the monitor settings. The target itself is given on the
// command line.
type Config struct {
	Period    time.Duration `yaml:"period"`
	Mode      string        `yaml:"mode"`
	Malformed string        `yaml:"malformed"`
	Source    string        `yaml:"source"`
	ProcRoot  string        `yaml:"proc_root"`
	LogLevel  string        `yaml:"log_level"`
	LogFormat string        `yaml:"log_format"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Period:    time.Second,
		Mode:      sampler.ModePeriod.String(),
		Malformed: sampler.MalformedSkip.String(),
		Source:    SourceNative,
		ProcRoot:  procstat.DefaultRoot,
		LogLevel:  "",
		LogFormat: "console",
	}
}

// Load returns the defaults overlaid with the YAML file at path. An empty
// path yields the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every value and returns an error wrapping ErrInvalid for
// the first one out of range.
func (c Config) Validate() error {
	if c.Period <= 0 || c.Period > time.Second {
		return fmt.Errorf("%w: period %v must be in (0, 1s]", ErrInvalid, c.Period)
	}
	if _, err := sampler.ParseMode(c.Mode); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := sampler.ParseMalformedPolicy(c.Malformed); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	switch strings.ToLower(c.Source) {
	case SourceNative, SourceProcfs, SourceGopsutil:
	default:
		return fmt.Errorf("%w: unknown source %q: expected %s, %s or %s",
			ErrInvalid, c.Source, SourceNative, SourceProcfs, SourceGopsutil)
	}
	if c.ProcRoot == "" {
		return fmt.Errorf("%w: proc_root is empty", ErrInvalid)
	}
	if c.LogLevel != "" {
		if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalid, c.LogFormat)
	}
	return nil
}

// ParseTarget parses the positional arguments: a process id and an optional
// thread id, both positive.
func ParseTarget(args []string) (procstat.Target, error) {
	if len(args) < 1 || len(args) > 2 {
		return procstat.Target{}, ErrUsage
	}
	pid, err := parseID(args[0])
	if err != nil {
		return procstat.Target{}, err
	}
	target := procstat.Target{PID: pid}
	if len(args) == 2 {
		if target.TID, err = parseID(args[1]); err != nil {
			return procstat.Target{}, err
		}
	}
	return target, nil
}

func parseID(s string) (int, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", ErrUsage, s)
	}
	return int(id), nil
}
