package monitor

import (
	"errors"
	"fmt"
	"io"

	"github.com/reugn/procload/sampler"
	"github.com/rs/zerolog"
)

// Output lines written by the Reporter.
const (
	loadFormat    = "load avg %.0f%%\n"
	staleMessage  = "load avg not calculated, this process slipped too much\n"
	skippedFormat = "load avg not calculated, %v\n"
)

var errUnknownCause = errors.New("unknown cause")

// Reporter writes one line per reported period to its writer.
type Reporter struct {
	writer io.Writer
	logger zerolog.Logger
}

// NewReporter returns a Reporter writing to w.
func NewReporter(w io.Writer, logger zerolog.Logger) *Reporter {
	return &Reporter{
		writer: w,
		logger: logger,
	}
}

// Report writes the line for res. A baseline produces no output. Write
// failures are logged and do not stop the monitor.
func (r *Reporter) Report(res sampler.Result) {
	var err error
	switch res.Outcome {
	case sampler.OutcomeBaseline:
		return
	case sampler.OutcomeLoad:
		_, err = fmt.Fprintf(r.writer, loadFormat, res.Load.Total)
	case sampler.OutcomeStale:
		_, err = io.WriteString(r.writer, staleMessage)
	case sampler.OutcomeSkipped:
		cause := res.Err
		if cause == nil {
			cause = errUnknownCause
		}
		_, err = fmt.Fprintf(r.writer, skippedFormat, cause)
	default:
		r.logger.Warn().Stringer("outcome", res.Outcome).Msg("discarded result")
		return
	}
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to write report")
	}
}
