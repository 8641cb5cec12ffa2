// Package logging configures the process logger. Library packages log
// through log/slog; the CLI installs a charmbracelet/log handler behind it.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/log"
)

// New returns a logger writing to w at the named level ("debug", "info",
// "warn", "error").
func New(w io.Writer, level string) (*log.Logger, error) {
	lvl := log.WarnLevel
	if level != "" {
		parsed, err := log.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		lvl = parsed
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          "pylocate",
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	}), nil
}

// Install makes logger the slog default so every package logs through it.
func Install(logger *log.Logger) {
	slog.SetDefault(slog.New(logger))
}
