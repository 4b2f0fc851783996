package error

import (
	"fmt"
	"net/http"
	"time"
)

// LaunchTimeoutError means the backend never printed a readiness marker.
// Cause is set when the process could not start or exited early.
type LaunchTimeoutError struct {
	Timeout time.Duration
	Cause   error
}

func (err *LaunchTimeoutError) Error() string {
	if err.Cause != nil {
		return fmt.Sprintf("backend did not report readiness: %v", err.Cause)
	}
	return fmt.Sprintf("backend did not report readiness within %s", err.Timeout)
}

func (err *LaunchTimeoutError) Unwrap() error {
	return err.Cause
}

func (err *LaunchTimeoutError) ErrCode() string {
	return "LAUNCH_TIMEOUT"
}

func (err *LaunchTimeoutError) StatusCode() int {
	return http.StatusServiceUnavailable
}

// NotHealthyError means the health endpoint never succeeded within the attempt budget.
type NotHealthyError struct {
	Attempts int
	LastErr  error
}

func (err *NotHealthyError) Error() string {
	return fmt.Sprintf("backend not healthy after %d attempts: %v", err.Attempts, err.LastErr)
}

func (err *NotHealthyError) Unwrap() error {
	return err.LastErr
}

func (err *NotHealthyError) ErrCode() string {
	return "NOT_HEALTHY"
}

func (err *NotHealthyError) StatusCode() int {
	return http.StatusServiceUnavailable
}
