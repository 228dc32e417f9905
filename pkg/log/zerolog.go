package log

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/YuminosukeSato/trimlasso/pkg/errors"
)

type zerologLogger struct {
	zl zerolog.Logger
}

// NewZerologLogger returns a Logger writing JSON lines through zerolog.
func NewZerologLogger(w io.Writer, level Level) Logger {
	zl := zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger()
	return &zerologLogger{zl: zl}
}

// FromZerolog adapts an existing zerolog.Logger.
func FromZerolog(zl zerolog.Logger) Logger {
	return &zerologLogger{zl: zl}
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

func (z *zerologLogger) Debug(msg string, fields ...any) { z.emit(z.zl.Debug(), msg, fields) }
func (z *zerologLogger) Info(msg string, fields ...any)  { z.emit(z.zl.Info(), msg, fields) }
func (z *zerologLogger) Warn(msg string, fields ...any)  { z.emit(z.zl.Warn(), msg, fields) }
func (z *zerologLogger) Error(msg string, fields ...any) { z.emit(z.zl.Error(), msg, fields) }

func (z *zerologLogger) emit(ev *zerolog.Event, msg string, fields []any) {
	if ev == nil {
		return
	}
	appendFields(ev, fields).Msg(msg)
}

func (z *zerologLogger) With(fields ...any) Logger {
	ctx := z.zl.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		if err, ok := fields[i+1].(error); ok {
			ctx = ctx.AnErr(key, err)
			continue
		}
		ctx = ctx.Interface(key, fields[i+1])
	}
	return &zerologLogger{zl: ctx.Logger()}
}

func (z *zerologLogger) Enabled(_ context.Context, level Level) bool {
	return z.zl.GetLevel() <= toZerologLevel(level)
}

// appendFields adds key/value pairs, embedding structured errors that know how
// to marshal themselves.
func appendFields(ev *zerolog.Event, fields []any) *zerolog.Event {
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		switch v := fields[i+1].(type) {
		case zerolog.LogObjectMarshaler:
			ev = ev.Object(key, v)
		case error:
			ev = ev.AnErr(key, v)
		case float64:
			ev = ev.Float64(key, v)
		case int:
			ev = ev.Int(key, v)
		case string:
			ev = ev.Str(key, v)
		case bool:
			ev = ev.Bool(key, v)
		default:
			ev = ev.Interface(key, v)
		}
	}
	return ev
}

// RouteWarnings sends errors.Warn output (ConvergenceWarning, BindingWarning)
// through zl as structured warn records. Call RouteWarnings with a disabled
// logger, or errors.SetZerologWarnFunc(nil), to undo.
func RouteWarnings(zl zerolog.Logger) {
	errors.SetZerologWarnFunc(func(w error) {
		ev := zl.Warn()
		if m, ok := w.(zerolog.LogObjectMarshaler); ok {
			ev = ev.EmbedObject(m)
		}
		ev.Msg(w.Error())
	})
}
