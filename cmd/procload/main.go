// Command procload prints the CPU load of a process, or of one of its
// threads, once per period.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/reugn/procload/internal/config"
	"github.com/spf13/cobra"
)

const (
	exitFatal = 1
	exitUsage = 2
)

var version = "dev"

var errFlag = errors.New("invalid flag")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the root command and maps its error to an exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, config.ErrUsage), errors.Is(err, config.ErrInvalid), errors.Is(err, errFlag):
		fmt.Fprintln(stdout, err)
		fmt.Fprint(stdout, cmd.UsageString())
		return exitUsage
	default:
		fmt.Fprintf(stderr, "procload: %v\n", err)
		return exitFatal
	}
}

type flags struct {
	configPath string
	cfg        config.Config
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var f flags
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "procload PID [TID]",
		Short: "Print the CPU load of a process or thread once per period",
		Long: `procload samples the CPU tick counters of a process, or of one of its
threads, at absolute period boundaries and prints the load in percent.

The first period only establishes a baseline. Periods whose wait returned
too early, or whose result was computed too late, are discarded.`,
		Version:       version,
		Args:          targetArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, f)
			if err != nil {
				return err
			}
			target, err := config.ParseTarget(args)
			if err != nil {
				return err
			}
			return monitorTarget(cmd.Context(), cfg, target, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", errFlag, err)
	})

	fs := cmd.Flags()
	fs.StringVar(&f.configPath, "config", "", "path to a YAML config file")
	fs.DurationVar(&f.cfg.Period, "period", defaults.Period, "sampling period, at most 1s")
	fs.StringVar(&f.cfg.Mode, "mode", defaults.Mode,
		"tick denominator: period (elapsed time) or counter (system-wide counters)")
	fs.StringVar(&f.cfg.Malformed, "malformed", defaults.Malformed,
		"malformed counter record policy: skip, tolerate or abort")
	fs.StringVar(&f.cfg.Source, "source", defaults.Source,
		fmt.Sprintf("counter source: %s", strings.Join(
			[]string{config.SourceNative, config.SourceProcfs, config.SourceGopsutil}, ", ")))
	fs.StringVar(&f.cfg.ProcRoot, "proc-root", defaults.ProcRoot, "procfs mount point")
	fs.StringVar(&f.cfg.LogLevel, "log-level", defaults.LogLevel,
		"log level (defaults to $LOG_LEVEL, then info)")
	fs.StringVar(&f.cfg.LogFormat, "log-format", defaults.LogFormat, "log format: console or json")

	return cmd
}

func targetArgs(_ *cobra.Command, args []string) error {
	_, err := config.ParseTarget(args)
	return err
}

// resolveConfig applies explicitly set flags over the config file.
func resolveConfig(cmd *cobra.Command, f flags) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, fmt.Errorf("%w: %w", config.ErrInvalid, err)
	}

	changed := cmd.Flags().Changed
	if changed("period") {
		cfg.Period = f.cfg.Period
	}
	if changed("mode") {
		cfg.Mode = f.cfg.Mode
	}
	if changed("malformed") {
		cfg.Malformed = f.cfg.Malformed
	}
	if changed("source") {
		cfg.Source = f.cfg.Source
	}
	if changed("proc-root") {
		cfg.ProcRoot = f.cfg.ProcRoot
	}
	if changed("log-level") {
		cfg.LogLevel = f.cfg.LogLevel
	}
	if changed("log-format") {
		cfg.LogFormat = f.cfg.LogFormat
	}

	return cfg, cfg.Validate()
}
