package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/reugn/procload/internal/config"
	plog "github.com/reugn/procload/internal/log"
	"github.com/reugn/procload/monitor"
	"github.com/reugn/procload/procstat"
	"github.com/reugn/procload/sampler"
	"github.com/reugn/procload/schedule"
)

// monitorTarget wires the monitor for target and runs it until ctx is done.
func monitorTarget(ctx context.Context, cfg config.Config, target procstat.Target,
	stdout, stderr io.Writer) error {
	plog.Configure(plog.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: stderr,
	})
	logger := plog.WithComponent("main")

	mode, err := sampler.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}
	policy, err := sampler.ParseMalformedPolicy(cfg.Malformed)
	if err != nil {
		return err
	}

	ticks := procstat.ClockTicks()
	logger.Debug().Int64("ticks_per_second", ticks).Msg("clock ticks")

	// gopsutil only knows the host procfs
	if cfg.ProcRoot == procstat.DefaultRoot {
		info, err := procstat.LookupTarget(ctx, target)
		if err != nil {
			return err
		}
		logger.Info().Stringer("target", target).Str("name", info.Name).Msg("found target")
	}

	reader, err := newReader(cfg, target, policy, ticks)
	if err != nil {
		return err
	}

	clock := schedule.NewSystemClock()
	if rc, ok := clock.(interface {
		Resolution() (schedule.Timestamp, error)
	}); ok {
		if res, err := rc.Resolution(); err == nil {
			logger.Debug().Dur("resolution", res.Duration()).Msg("clock resolution")
		}
	}

	sched, err := schedule.NewScheduler(cfg.Period,
		schedule.WithClock(clock),
		schedule.WithLogger(plog.WithComponent("scheduler")))
	if err != nil {
		return err
	}
	smp, err := sampler.New(reader, clock, sampler.Config{
		Period:     cfg.Period,
		ClockTicks: ticks,
		Mode:       mode,
		Malformed:  policy,
	}, sampler.WithLogger(plog.WithComponent("sampler")))
	if err != nil {
		return err
	}

	m, err := monitor.New(sched, smp,
		monitor.NewReporter(stdout, plog.WithComponent("reporter")),
		plog.WithComponent("monitor"))
	if err != nil {
		return err
	}
	logger.Info().
		Stringer("target", target).
		Stringer("mode", mode).
		Stringer("malformed", policy).
		Str("source", cfg.Source).
		Msg("monitoring")

	return m.Run(ctx)
}

func newReader(cfg config.Config, target procstat.Target, policy sampler.MalformedPolicy,
	ticks int64) (procstat.Reader, error) {
	opts := []procstat.Opt{
		procstat.WithRoot(cfg.ProcRoot),
		procstat.WithParseMode(policy.ParseMode()),
		procstat.WithClockTicks(ticks),
	}
	switch strings.ToLower(cfg.Source) {
	case config.SourceProcfs:
		return procstat.NewProcfsReader(target, opts...)
	case config.SourceGopsutil:
		return procstat.NewGopsutilReader(target, opts...)
	case config.SourceNative:
		return procstat.NewReader(target, opts...), nil
	default:
		return nil, fmt.Errorf("%w: unknown source %q", config.ErrInvalid, cfg.Source)
	}
}
