// Package cli implements the beltwright command-line interface.
//
// This package provides commands for compiling circuit documents into
// blueprint strings, inspecting blueprints, managing the package library,
// and managing the result cache. The CLI is built using cobra and supports
// verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - export: Assemble a circuit document into a blueprint string
//   - import: Decode and inspect a blueprint string
//   - hash, migrate: Content addresses of graphs and packages
//   - render: Draw a circuit as DOT or SVG
//   - bundle, library: Build and store reusable packages
//   - cache: Manage the result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}
