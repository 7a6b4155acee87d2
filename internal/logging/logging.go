package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/natefinch/lumberjack"
)

// Options selects the handler format, level and optional rotating file.
type Options struct {
	Level      string // debug, info, warn or error
	JSON       bool
	File       string // empty logs to stderr only
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// ParseLevel maps a level name to a slog.Level; unknown names read as info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger writing to stderr, teed into a rotating file when File is set.
// The returned closer releases the file; it is a no-op without one.
func New(opts Options) (*slog.Logger, io.Closer) {
	var w io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		}
		w = io.MultiWriter(os.Stderr, file)
		closer = file
	}
	return slog.New(newHandler(w, opts)), closer
}

// Setup installs New's logger as the slog default.
func Setup(opts Options) io.Closer {
	logger, closer := New(opts)
	slog.SetDefault(logger)
	return closer
}

func newHandler(w io.Writer, opts Options) slog.Handler {
	ho := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}
	if opts.JSON {
		return slog.NewJSONHandler(w, ho)
	}
	return slog.NewTextHandler(w, ho)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
