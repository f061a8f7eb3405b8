package indexclient

import (
	"errors"
	"testing"
)

// TestErrorCodeString tests the error code names.
func TestErrorCodeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code     ErrorCode
		expected string
	}{
		{CodeOK, "ok"},
		{CodeOutOfMemory, "out-of-memory"},
		{CodeIPCUnavailable, "ipc-unavailable"},
		{CodeRegisterClassFailed, "window-class-registration-failed"},
		{CodeCreateWindowFailed, "window-creation-failed"},
		{CodeCreateThreadFailed, "thread-creation-failed"},
		{CodeInvalidIndex, "invalid-index"},
		{CodeInvalidCall, "invalid-call"},
		{ErrorCode(99), "unknown(99)"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.expected, func(t *testing.T) {
			t.Parallel()

			if got := tt.code.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

// TestQueryErrorIs verifies ipc-unavailable query errors match
// ErrServiceUnavailable for errors.Is checks.
func TestQueryErrorIs(t *testing.T) {
	t.Parallel()

	ipcErr := &QueryError{Code: CodeIPCUnavailable}
	if !errors.Is(ipcErr, ErrServiceUnavailable) {
		t.Error("ipc-unavailable QueryError does not match ErrServiceUnavailable")
	}

	memErr := &QueryError{Code: CodeOutOfMemory}
	if errors.Is(memErr, ErrServiceUnavailable) {
		t.Error("out-of-memory QueryError matches ErrServiceUnavailable")
	}
}

// TestLastError verifies conversion of client error codes to Go errors.
func TestLastError(t *testing.T) {
	t.Parallel()

	if err := LastError(&versionStubClient{lastErr: CodeOK}); err != nil {
		t.Errorf("LastError() with ok code = %v, want nil", err)
	}

	err := LastError(&versionStubClient{lastErr: CodeInvalidCall})
	var qe *QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("LastError() = %T, want *QueryError", err)
	}
	if qe.Code != CodeInvalidCall {
		t.Errorf("QueryError code = %v, want %v", qe.Code, CodeInvalidCall)
	}
}
