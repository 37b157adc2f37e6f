package cli

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// logFormatEnv selects the log formatter: text (default), json, or logfmt.
const logFormatEnv = "GDATAMVN_LOG_FORMAT"

var logFormatters = map[string]log.Formatter{
	"text":   log.TextFormatter,
	"json":   log.JSONFormatter,
	"logfmt": log.LogfmtFormatter,
}

// newLogger creates a timestamped logger ("15:04:05.00") at level, using
// the formatter named by GDATAMVN_LOG_FORMAT.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return newLoggerFormat(w, level, os.Getenv(logFormatEnv))
}

// newLoggerFormat is newLogger with an explicit format name. Unknown names
// fall back to text.
func newLoggerFormat(w io.Writer, level log.Level, format string) *log.Logger {
	f, ok := logFormatters[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		f = log.TextFormatter
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		Formatter:       f,
	})
}

// progress logs a completion message with the time elapsed since it was
// created. Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs e.g. "Processed 6 versions" with elapsed=12.345s.
func (p *progress) done(msg string) {
	p.logger.Info(msg, "elapsed", time.Since(p.start).Round(time.Millisecond))
}
