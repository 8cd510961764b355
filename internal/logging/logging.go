package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultMaxSize    = 10 // megabytes
	defaultMaxAge     = 7  // days
	defaultMaxBackups = 3
)

// Options controls the logger built by New. Zero values fall back to the
// LOG_FORMAT, LOG_LEVEL and LOG_FILE environment variables.
type Options struct {
	Format string
	Level  string
	File   string
	Output io.Writer
}

// New initializes a new slog logger and sets it as the default.
// Format defaults to "text" for development and can be "json" for
// production. When a file is configured, output is also written to a
// rotating log file.
func New() *slog.Logger {
	return NewWithOptions(Options{})
}

// NewWithOptions builds the logger described by opts and sets it as the
// default.
func NewWithOptions(opts Options) *slog.Logger {
	if opts.Format == "" {
		opts.Format = os.Getenv("LOG_FORMAT")
	}
	if opts.Level == "" {
		opts.Level = os.Getenv("LOG_LEVEL")
	}
	if opts.File == "" {
		opts.File = os.Getenv("LOG_FILE")
	}

	var out io.Writer = os.Stdout
	if opts.Output != nil {
		out = opts.Output
	}
	if opts.File != "" {
		out = io.MultiWriter(out, Rotating(opts.File))
	}

	level := ParseLevel(opts.Level)
	var handler slog.Handler
	switch opts.Format {
	case "json":
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	default:
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{
			Level:     level,
			AddSource: true,
		})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// Rotating returns a size-rotated, compressed log file writer.
func Rotating(filename string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    defaultMaxSize,
		MaxAge:     defaultMaxAge,
		MaxBackups: defaultMaxBackups,
		LocalTime:  true,
		Compress:   true,
	}
}

// ParseLevel maps a level name to a slog level. Unknown names mean debug.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
