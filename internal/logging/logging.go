// Package logging builds the structured logger shared by the CLI and the server.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the logger sink and format
type Options struct {
	Level  string // debug, info, warn or error; empty means info
	JSON   bool
	File   string    // Rotating log file; Writer (or stderr) when empty
	Writer io.Writer // Used when File is empty; defaults to stderr
}

// Logger is a slog.Logger with the resources of its sink
type Logger struct {
	*slog.Logger
	file *lumberjack.Logger
}

// New builds a logger. When a file is configured the output rotates at 15 MB,
// keeps 3 backups for 28 days and compresses old files.
func New(opts Options) *Logger {
	var w io.Writer = os.Stderr
	if opts.Writer != nil {
		w = opts.Writer
	}

	l := &Logger{}
	if opts.File != "" {
		l.file = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    15, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		w = l.file
	}

	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}
	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	l.Logger = slog.New(handler)
	return l
}

// Close releases the log file, if any
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// ParseLevel maps a level name to a slog.Level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
