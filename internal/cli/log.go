// Package cli implements the timeslice command-line interface.
//
// Commands record minutes per category for a day, print period totals,
// render donut charts, manage categories and Eisenhower tasks, move data
// in and out as JSON backups, and serve the HTTP API. The CLI is built
// on cobra; output is styled with lipgloss and diagnostics go through
// charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - log, show, delete: edit the record of a day
//   - stats: period totals, optionally as an interactive browser
//   - chart: render SVG, PNG, PDF or JSON charts
//   - categories, tasks: manage the category list and task matrix
//   - export, import: JSON backups
//   - serve: the HTTP API
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
//
// # Example
//
//	import "github.com/matzehuels/timeslice/internal/cli"
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogInfo)
//	    if err := c.RootCommand().Execute(); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long an operation took once it completes.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, rounded to the millisecond.
// Example output: "Exported 42 days (12ms)"
func (p *progress) done(msg string) {
	p.logger.Debugf("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
