// Package log provides a structured logging interface for the trimmed Lasso solvers.
//
// The interface is slog-compatible so the drivers can log through the standard
// library, zerolog, or an in-memory test logger without changing call sites.
// Solver loops log one Debug record per outer iteration and one Info record at
// termination, keyed with the attribute constants in attributes.go.
//
// Example usage:
//
//	logger := log.GetLogger().With(
//	    log.ModelNameKey, "TrimmedLasso",
//	    log.SolverMethodKey, "admm",
//	)
//	logger.Info("solve finished",
//	    log.IterationKey, 42,
//	    log.ObjectiveKey, 0.173,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// Fields are passed as alternating key/value pairs. With returns a child logger
// carrying the given fields on every record.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	// The solvers use it for per-iteration diagnostics.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional structured fields.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional structured fields.
	Warn(msg string, fields ...any)

	// Error logs an error-level message with optional structured fields.
	// An error value passed under the "error" key keeps its stack trace when
	// the slog handler is wrapped by ErrFmtHandler.
	Error(msg string, fields ...any)

	// With returns a logger that includes the given fields on every record.
	With(fields ...any) Logger

	// Enabled reports whether records at the given level are emitted.
	// Loops check it before computing expensive diagnostic fields.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4 // Detailed diagnostic information
	LevelInfo  Level = 0  // General operational information
	LevelWarn  Level = 4  // Warning conditions
	LevelError Level = 8  // Error conditions
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider defines an interface for creating and configuring loggers.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger with a specific component identifier.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum log level for all loggers created by this provider.
	SetLevel(level Level)
}
