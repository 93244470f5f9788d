// Package logger builds the zerolog logger used across the lacarta server
// and client tooling.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const permission = 0664

// Build accumulates logger options. Zero value logs JSON to stdout at info.
type Build struct {
	writer io.Writer
	path   string
	level  string
	pretty bool
}

// Log bundles the configured logger with the file it writes to, if any, so
// callers can close it on shutdown.
type Log struct {
	writer  io.Writer
	LogFile *os.File
	Logger  zerolog.Logger
}

func New() *Build {
	return &Build{}
}

// ToPath appends log output to the given file.
func (b *Build) ToPath(path string) *Build {
	b.path = path
	return b
}

// ToBuffer directs log output to w. Tests use this to assert on output.
func (b *Build) ToBuffer(w io.Writer) *Build {
	b.writer = w
	return b
}

// Level sets the minimum level by name (debug, info, warn, error). Unknown
// names fall back to info.
func (b *Build) Level(level string) *Build {
	b.level = level
	return b
}

// Pretty switches to human-readable console output instead of JSON.
func (b *Build) Pretty() *Build {
	b.pretty = true
	return b
}

func parseLevel(raw string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (b *Build) Make() (*Log, error) {
	l := &Log{writer: os.Stdout}
	if b.writer != nil {
		l.writer = b.writer
	}
	if b.path != "" {
		f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, err
		}
		l.LogFile = f
		l.writer = zerolog.SyncWriter(f)
	}
	w := l.writer
	if b.pretty {
		w = zerolog.ConsoleWriter{Out: w}
	}
	l.Logger = zerolog.New(w).Level(parseLevel(b.level)).With().Timestamp().Logger()
	return l, nil
}

// Close closes the log file when one was opened.
func (l *Log) Close() error {
	if l.LogFile == nil {
		return nil
	}
	return l.LogFile.Close()
}
