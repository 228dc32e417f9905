package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"

	"github.com/YuminosukeSato/trimlasso/pkg/errors"
)

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}

// ToLogLevel parses "debug", "info", "warn" or "error".
func ToLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.NewValidationError("loglevel", "must be one of debug, info, warn, error", level)
	}
}

// NewHandler builds the slog handler used by SetupLogger.
// format "json" emits one JSON object per record in the CloudLogging layout,
// "text" emits colourised console output through tint.
func NewHandler(w io.Writer, loglevel, format string) (slog.Handler, error) {
	level, err := ToLogLevel(loglevel)
	if err != nil {
		return nil, err
	}

	var handler slog.Handler
	switch format {
	case "json", "":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			AddSource: true,
			Level:     level,
			ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
				switch attr.Key {
				case slog.LevelKey:
					attr.Key = "severity"
				case slog.MessageKey:
					attr.Key = "message"
				case slog.SourceKey:
					attr.Key = "logging.googleapis.com/sourceLocation"
				}
				return attr
			},
		})
	case "text":
		handler = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
		})
	default:
		return nil, errors.NewValidationError("logformat", "must be json or text", format)
	}
	return WrapByErrFmtHandler(handler), nil
}

// SetupLogger installs a stdout slog default and points GetLogger at it.
func SetupLogger(loglevel, format string) error {
	handler, err := NewHandler(os.Stdout, loglevel, format)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(handler))
	SetLogger(NewSlogLogger(slog.Default()))
	return nil
}

var (
	globalMu     sync.RWMutex
	globalLogger Logger = NewSlogLogger(slog.Default())
)

// GetLogger returns the package-wide logger used when a solver is not given one.
func GetLogger() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// SetLogger replaces the package-wide logger. A nil logger installs Nop.
func SetLogger(l Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if l == nil {
		l = Nop()
	}
	globalLogger = l
}

type slogLogger struct {
	l *slog.Logger
}

// NewSlogLogger adapts a *slog.Logger to Logger.
func NewSlogLogger(l *slog.Logger) Logger {
	return &slogLogger{l: l}
}

func (s *slogLogger) Debug(msg string, fields ...any) { s.l.Debug(msg, fields...) }
func (s *slogLogger) Info(msg string, fields ...any)  { s.l.Info(msg, fields...) }
func (s *slogLogger) Warn(msg string, fields ...any)  { s.l.Warn(msg, fields...) }
func (s *slogLogger) Error(msg string, fields ...any) { s.l.Error(msg, fields...) }

func (s *slogLogger) With(fields ...any) Logger {
	return &slogLogger{l: s.l.With(fields...)}
}

func (s *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return s.l.Enabled(ctx, slog.Level(level))
}

type nopLogger struct{}

// Nop returns a logger that discards everything.
func Nop() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...any)                 {}
func (nopLogger) Info(string, ...any)                  {}
func (nopLogger) Warn(string, ...any)                  {}
func (nopLogger) Error(string, ...any)                 {}
func (n nopLogger) With(...any) Logger                 { return n }
func (nopLogger) Enabled(context.Context, Level) bool { return false }
