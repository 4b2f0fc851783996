package error

import (
	"fmt"
	"net/http"
)

// BackendUnreachableError wraps a network-level failure talking to the backend.
type BackendUnreachableError struct {
	Op  string
	Err error
}

func (err *BackendUnreachableError) Error() string {
	return fmt.Sprintf("backend unreachable (%s): %v", err.Op, err.Err)
}

func (err *BackendUnreachableError) Unwrap() error {
	return err.Err
}

func (err *BackendUnreachableError) ErrCode() string {
	return "BACKEND_UNREACHABLE"
}

func (err *BackendUnreachableError) StatusCode() int {
	return http.StatusBadGateway
}

// BackendRejectedError carries the backend's own error message verbatim.
type BackendRejectedError struct {
	Op      string
	Status  int
	Message string
}

func (err *BackendRejectedError) Error() string {
	return err.Message
}

func (err *BackendRejectedError) ErrCode() string {
	if err.Status == http.StatusNotFound {
		return "BACKEND_NOT_FOUND"
	}
	return "BACKEND_REJECTED"
}

func (err *BackendRejectedError) StatusCode() int {
	if err.Status >= 400 && err.Status < 500 {
		return err.Status
	}
	return http.StatusBadGateway
}

// IsNotFound reports whether the backend rejected the call because the target does not exist.
func (err *BackendRejectedError) IsNotFound() bool {
	return err.Status == http.StatusNotFound
}
