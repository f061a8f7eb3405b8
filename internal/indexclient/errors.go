package indexclient

import (
	"errors"
	"fmt"
)

// ErrorCode is the fixed error enumeration reported by the query service.
type ErrorCode int

const (
	// CodeOK indicates no error.
	CodeOK ErrorCode = iota
	// CodeOutOfMemory indicates the service ran out of memory.
	CodeOutOfMemory
	// CodeIPCUnavailable indicates the service process is not running or
	// its IPC channel could not be reached.
	CodeIPCUnavailable
	// CodeRegisterClassFailed indicates the service could not register
	// its IPC window class.
	CodeRegisterClassFailed
	// CodeCreateWindowFailed indicates the service could not create its
	// IPC window.
	CodeCreateWindowFailed
	// CodeCreateThreadFailed indicates the service could not start its
	// query thread.
	CodeCreateThreadFailed
	// CodeInvalidIndex indicates a result accessor was called with an
	// index outside the current page.
	CodeInvalidIndex
	// CodeInvalidCall indicates an operation was invoked in an invalid
	// state.
	CodeInvalidCall
)

// String returns the short name of the code.
func (c ErrorCode) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeOutOfMemory:
		return "out-of-memory"
	case CodeIPCUnavailable:
		return "ipc-unavailable"
	case CodeRegisterClassFailed:
		return "window-class-registration-failed"
	case CodeCreateWindowFailed:
		return "window-creation-failed"
	case CodeCreateThreadFailed:
		return "thread-creation-failed"
	case CodeInvalidIndex:
		return "invalid-index"
	case CodeInvalidCall:
		return "invalid-call"
	default:
		return fmt.Sprintf("unknown(%d)", int(c))
	}
}

var (
	// ErrServiceUnavailable indicates the query service could not be
	// reached at all.
	ErrServiceUnavailable = errors.New("query service unavailable")

	// ErrVersionUnsupported indicates the query service is older than the
	// minimum supported version.
	ErrVersionUnsupported = errors.New("query service version unsupported")
)

// QueryError wraps a non-ok service error code as a Go error.
type QueryError struct {
	Code ErrorCode
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %s", e.Code)
}

// Is treats any QueryError with code ipc-unavailable as ErrServiceUnavailable.
func (e *QueryError) Is(target error) bool {
	return target == ErrServiceUnavailable && e.Code == CodeIPCUnavailable
}

// LastError converts the client's last error code into a Go error, or nil
// when the code is ok.
func LastError(c Client) error {
	code := c.GetLastError()
	if code == CodeOK {
		return nil
	}
	return &QueryError{Code: code}
}
