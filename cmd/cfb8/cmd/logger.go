package cmd

import (
	"io"
	"log/slog"

	"github.com/natefinch/lumberjack"
)

func parseLevel(level string) slog.Level {
	switch level {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newLogger writes text to stderr, or JSON to a rotated file when LogFile is
// set. The returned closer releases the file.
func newLogger(s *Settings, stderr io.Writer) (*slog.Logger, io.Closer) {
	opts := &slog.HandlerOptions{Level: parseLevel(s.LogLevel)}
	if s.LogFile == "" {
		return slog.New(slog.NewTextHandler(stderr, opts)), nopCloser{}
	}

	writer := &lumberjack.Logger{
		Filename:   s.LogFile,
		MaxSize:    s.LogMaxSize,
		MaxBackups: s.LogMaxBackups,
		MaxAge:     s.LogMaxAge,
		Compress:   true,
	}
	return slog.New(slog.NewJSONHandler(writer, opts)), writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
