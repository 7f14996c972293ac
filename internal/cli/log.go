// Package cli implements the atlas command-line interface.
//
// Commands load a graph document, run it through the cached layout pipeline
// and either write the layout document, print a summary or answer spatial
// queries. `atlas serve` exposes the same pipeline over HTTP.
//
// # Commands
//
//   - layout: compute a layout and write it as JSON
//   - communities: detect communities and print a summary
//   - query: nearest, radius and rect lookups
//   - stats: graph statistics without computing a layout
//   - preview: render a layout to SVG, PNG or DOT
//   - serve: run the HTTP API
//   - cache: manage the layout cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger with "HH:MM:SS.ms" timestamps that filters
// messages below level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs the elapsed time of an operation when it completes.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time rounded to the millisecond, e.g.
// "Loaded graph (12ms)".
func (p *progress) done(msg string) {
	p.logger.Debugf("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
