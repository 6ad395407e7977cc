// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
	"golang.org/x/term"
)

// Setup initializes the global slog logger on stderr.
// Report output goes to stdout, so only warnings are logged unless verbose.
func Setup(verbose bool) {
	slog.SetDefault(New(os.Stderr, verbose, !isTerminal(os.Stderr)))
}

// New returns a logger backed by charmbracelet/log writing to w. verbose
// enables debug records; jsonFormat selects JSON lines instead of styled text.
func New(w io.Writer, verbose, jsonFormat bool) *slog.Logger {
	handler := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		Prefix:          "pullstatus",
	})

	if verbose {
		handler.SetLevel(charmlog.DebugLevel)
	} else {
		handler.SetLevel(charmlog.WarnLevel)
	}

	if jsonFormat {
		handler.SetFormatter(charmlog.JSONFormatter)
	}

	return slog.New(handler)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
