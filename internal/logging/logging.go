// Package logging opens the append-only log file every command writes its
// progress to.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/vendorperf/pkg/core"
)

// Options configure the log sink.
type Options struct {
	Dir   string
	File  string
	Level string

	// Echo, when set, also receives every record (used by --verbose).
	Echo io.Writer
}

// Path returns the log file location.
func (o Options) Path() string {
	return filepath.Join(o.Dir, o.File)
}

// ParseLevel converts a level name such as "debug" or "WARN" to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// Open creates the log directory if needed, opens the log file for append
// and returns a text logger writing to it. The caller closes the returned
// closer when the command finishes.
func Open(opts Options) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	path := opts.Path()
	if err := os.MkdirAll(opts.Dir, 0o750); err != nil {
		return nil, nil, &core.IOError{Op: "create log directory", Target: opts.Dir, Err: err}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640) //nolint:gosec // path comes from config
	if err != nil {
		return nil, nil, &core.IOError{Op: "open log file", Target: path, Err: err}
	}

	var w io.Writer = f
	if opts.Echo != nil {
		w = io.MultiWriter(f, opts.Echo)
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return logger, f, nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
