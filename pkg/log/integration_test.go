package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/YuminosukeSato/trimlasso/pkg/errors"
)

// TestLoggerInterface tests the TestLogger implementation
func TestLoggerInterface(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelDebug)

	testLogger.Debug("admm iteration", IterationKey, 3, ResidualKey, 0.5)
	testLogger.Info("solve finished", SolverMethodKey, MethodADMM)
	testLogger.Warn("budget exhausted", ErrorCodeKey, ErrorConvergence)
	testLogger.Error("backend failed", "error", fmt.Errorf("boom"))

	if buffer.String() == "" {
		t.Fatal("Expected log output, got empty string")
	}

	for _, msg := range []string{"admm iteration", "solve finished", "budget exhausted", "backend failed"} {
		if !testLogger.ContainsMessage(msg) {
			t.Errorf("message %q not found in output", msg)
		}
	}

	if !testLogger.ContainsField(IterationKey, 3.0) { // JSON numbers are float64
		t.Error("Expected field iteration=3 not found")
	}
	if !testLogger.ContainsField("error", "boom") {
		t.Error("errors should be logged by message")
	}
}

// TestLoggerWith tests the With method for context-aware logging
func TestLoggerWith(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelDebug)

	contextLogger := testLogger.With(
		ModelNameKey, "TrimmedLasso",
		SolverMethodKey, MethodAltMin,
	)
	contextLogger.Info("contextual message", OperationKey, OperationFit)

	if !testLogger.ContainsField(ModelNameKey, "TrimmedLasso") {
		t.Error("Model name context not found")
	}
	if !testLogger.ContainsField(SolverMethodKey, MethodAltMin) {
		t.Error("Method context not found")
	}
	if testLogger.CountMessage("contextual message") != 1 {
		t.Error("child logger should write to the parent buffer exactly once")
	}
}

// TestLoggerEnabled tests the Enabled method
func TestLoggerEnabled(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)
	ctx := context.Background()

	if !testLogger.Enabled(ctx, LevelInfo) {
		t.Error("Logger should be enabled for Info level")
	}
	if testLogger.Enabled(ctx, LevelDebug) {
		t.Error("Logger should not be enabled for Debug level")
	}

	testLogger.Debug("this should not appear")
	testLogger.Info("this should appear")

	if testLogger.ContainsMessage("this should not appear") {
		t.Error("Debug message should not appear when level is Info")
	}
	if !testLogger.ContainsMessage("this should appear") {
		t.Error("Info message should appear when level is Info")
	}
}

func TestLoggerProviderIntegration(t *testing.T) {
	provider, buffer := NewTestLoggerProvider(LevelDebug)

	provider.GetLogger().Info("provider test message")
	provider.GetLoggerWithName("solver/enum").Info("named logger message")

	out := buffer.String()
	if !strings.Contains(out, "provider test message") || !strings.Contains(out, "named logger message") {
		t.Errorf("missing messages in %s", out)
	}
	if !strings.Contains(out, "solver/enum") {
		t.Error("Component name not found in named logger output")
	}
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelInfo).With(SolverMethodKey, MethodADMM)

	logger.Debug("dropped")
	logger.Info("solve finished", IterationKey, 12, ObjectiveKey, 0.25, ConvergedKey, true)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected exactly one record, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("zerolog output is not JSON: %v", err)
	}
	if entry["message"] != "solve finished" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry[SolverMethodKey] != MethodADMM {
		t.Errorf("context field lost: %v", entry)
	}
	if entry[IterationKey] != 12.0 || entry[ConvergedKey] != true {
		t.Errorf("fields not encoded: %v", entry)
	}
	if logger.Enabled(context.Background(), LevelDebug) {
		t.Error("debug should be disabled at info level")
	}
}

func TestZerologStructuredError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelDebug)

	var se *errors.SolverError
	err := errors.NewSolverError("highs", errors.SolverUnsupported, fmt.Errorf("no SOS1"))
	if !errors.As(err, &se) {
		t.Fatal("expected SolverError")
	}
	logger.Error("exact solve failed", "cause", se)

	if !strings.Contains(buf.String(), `"kind":"unsupported"`) {
		t.Errorf("structured error fields missing: %s", buf.String())
	}
}

func TestRouteWarnings(t *testing.T) {
	var buf bytes.Buffer
	RouteWarnings(zerolog.New(&buf))
	defer errors.SetZerologWarnFunc(nil)

	errors.Warn(errors.NewConvergenceWarning("ADMM", 2000, ""))

	out := buf.String()
	if !strings.Contains(out, `"type":"ConvergenceWarning"`) || !strings.Contains(out, `"iterations":2000`) {
		t.Errorf("warning not routed through zerolog: %s", out)
	}
}

func TestNewHandler(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{"json info", "info", "json", false},
		{"text debug", "debug", "text", false},
		{"default format", "warn", "", false},
		{"bad level", "verbose", "json", true},
		{"bad format", "info", "xml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h, err := NewHandler(&buf, tt.level, tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewHandler() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && h == nil {
				t.Fatal("nil handler without error")
			}
		})
	}
}

func TestErrFmtHandlerAddsStacktrace(t *testing.T) {
	var buf bytes.Buffer
	h, err := NewHandler(&buf, "info", "json")
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(h)

	logger.Error("solve failed", ErrAttr(errors.NewValueError("ProximalLasso.Solve", "bad step")))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if entry["message"] != "solve failed" {
		t.Errorf("message key not renamed: %v", entry)
	}
	if _, ok := entry["severity"]; !ok {
		t.Errorf("level key not renamed: %v", entry)
	}
	if st, _ := entry[StacktraceAttrKey].(string); st == "" {
		t.Errorf("expected stack trace attribute, got %v", entry)
	}
}

func TestGlobalLogger(t *testing.T) {
	prev := GetLogger()
	defer SetLogger(prev)

	testLogger, _ := NewTestLogger(LevelDebug)
	SetLogger(testLogger)
	GetLogger().Info("through global")
	if !testLogger.ContainsMessage("through global") {
		t.Error("SetLogger did not replace the global logger")
	}

	SetLogger(nil)
	if GetLogger().Enabled(context.Background(), LevelError) {
		t.Error("nil should install the no-op logger")
	}
}

func BenchmarkTestLogger(b *testing.B) {
	testLogger, _ := NewTestLogger(LevelInfo)
	contextLogger := testLogger.With(ModelNameKey, "TrimmedLasso")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		contextLogger.Info("benchmark message", IterationKey, i)
	}
}
