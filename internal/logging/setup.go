package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dmitrijs2005/shopsage/internal/filex"
)

const (
	FormatSlog = "slog"
	FormatZap  = "zap"
)

// Options selects the logger built by New.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // slog or zap
	// File, when set, sends output to a rotated log file instead of stderr,
	// keeping the interactive prompt clean.
	File string
}

// New builds a Logger from opts. The returned closer flushes and closes the
// underlying sink and must be called on shutdown.
func New(opts Options) (Logger, io.Closer, error) {
	w, closer, err := openSink(opts.File)
	if err != nil {
		return nil, nil, err
	}

	switch opts.Format {
	case "", FormatSlog:
		h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slogLevel(opts.Level)})
		return NewSlogLogger(slog.New(h)), closer, nil

	case FormatZap:
		enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		core := zapcore.NewCore(enc, zapcore.AddSync(w), zapLevel(opts.Level))
		zl := NewZapLogger(zap.New(core))
		return zl, closerFunc(func() error {
			_ = zl.Sync()
			return closer.Close()
		}), nil

	default:
		_ = closer.Close()
		return nil, nil, fmt.Errorf("unknown log format %q", opts.Format)
	}
}

func openSink(file string) (io.Writer, io.Closer, error) {
	if file == "" {
		return os.Stderr, closerFunc(func() error { return nil }), nil
	}

	path, err := filex.EnsureParentDir(file)
	if err != nil {
		return nil, nil, fmt.Errorf("log file: %w", err)
	}

	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	}
	return lj, lj, nil
}

func slogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

func zapLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
