package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// TestRecover_WithPanic tests the Recover function when a panic occurs
func TestRecover_WithPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		panic("test panic message")
	}

	err := testFunc()

	if err == nil {
		t.Fatal("Expected error from recovered panic, got nil")
	}

	var panicErr *PanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("Expected PanicError, got %T", err)
	}

	if panicErr.Operation != "TestOperation" {
		t.Errorf("Expected operation 'TestOperation', got '%s'", panicErr.Operation)
	}

	if panicErr.StackTrace == "" {
		t.Error("Expected non-empty stack trace")
	}

	expectedMsg := "panic in TestOperation: test panic message"
	if panicErr.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, panicErr.Error())
	}
}

// TestRecover_WithoutPanic tests the Recover function when no panic occurs
func TestRecover_WithoutPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		return nil
	}

	if err := testFunc(); err != nil {
		t.Fatalf("Expected no error when no panic occurs, got: %v", err)
	}
}

// TestRecover_WithExistingError tests Recover when function has existing error and panic occurs
func TestRecover_WithExistingError(t *testing.T) {
	originalErr := fmt.Errorf("original error")

	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		err = originalErr
		panic("panic after error")
	}

	err := testFunc()

	if err == nil {
		t.Fatal("Expected error from recovered panic with existing error, got nil")
	}

	errMsg := err.Error()
	if !strings.Contains(errMsg, "panic in TestOperation") {
		t.Errorf("Error message should contain panic info: %s", errMsg)
	}

	if !errors.Is(err, originalErr) {
		t.Error("Should be able to identify original error with errors.Is")
	}
}

// TestRecover_InvariantPanic checks that an invariant violation raised as a
// panic value stays reachable through the recovered error.
func TestRecover_InvariantPanic(t *testing.T) {
	err := SafeExecute("TrimmedLasso.Fit", func() error {
		panic(NewInvariantError("Selector.Select", 4, 3, "tie resolution"))
	})

	var inv *InvariantError
	if !errors.As(err, &inv) {
		t.Fatalf("expected *InvariantError in chain, got %T: %v", err, err)
	}
	if inv.Expected != 4 || inv.Got != 3 {
		t.Errorf("unexpected fields: %+v", inv)
	}
}

// TestSafeExecute_FunctionError tests SafeExecute with function returning error
func TestSafeExecute_FunctionError(t *testing.T) {
	originalErr := fmt.Errorf("function error")

	err := SafeExecute("test operation", func() error {
		return originalErr
	})

	if err != originalErr {
		t.Fatalf("Expected original error, got: %v", err)
	}
}

// TestPanicError_Interface tests PanicError implements error interface properly
func TestPanicError_Interface(t *testing.T) {
	panicErr := NewPanicError("TestOp", "test value")

	expectedMsg := "panic in TestOp: test value"
	if panicErr.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, panicErr.Error())
	}

	str := panicErr.String()
	if !strings.Contains(str, "Stack trace:") {
		t.Error("String() should include stack trace information")
	}

	if panicErr.Unwrap() != nil {
		t.Error("Unwrap() of a non-error panic value should return nil")
	}
}

// TestRecover_DifferentPanicTypes tests Recover with different types of panic values
func TestRecover_DifferentPanicTypes(t *testing.T) {
	testCases := []struct {
		name          string
		panicValue    interface{}
		expectedValue interface{}
	}{
		{"string panic", "string panic", "string panic"},
		{"int panic", 42, 42},
		{"error panic", fmt.Errorf("error as panic"), fmt.Errorf("error as panic")},
		{"struct panic", struct{ Msg string }{"struct message"}, struct{ Msg string }{"struct message"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			testFunc := func() (err error) {
				defer Recover(&err, "TypeTest")
				panic(tc.panicValue)
			}

			err := testFunc()

			var panicErr *PanicError
			if !errors.As(err, &panicErr) {
				t.Fatalf("Expected PanicError, got %T", err)
			}

			if fmt.Sprintf("%v", panicErr.PanicValue) != fmt.Sprintf("%v", tc.expectedValue) {
				t.Errorf("Expected panic value %v, got %v", tc.expectedValue, panicErr.PanicValue)
			}
		})
	}
}

// BenchmarkRecover_NoPanic tests performance overhead of Recover when no panic occurs
func BenchmarkRecover_NoPanic(b *testing.B) {
	for i := 0; i < b.N; i++ {
		func() (err error) {
			defer Recover(&err, "BenchmarkOp")
			return nil
		}()
	}
}
