package error

import "net/http"

type NotFoundError string

func (err NotFoundError) Error() string {
	return string(err)
}

func (err NotFoundError) ErrCode() string {
	return "NOT_FOUND_ERROR"
}

func (err NotFoundError) StatusCode() int {
	return http.StatusNotFound
}

// ValidationError is a client-side precondition failure. It never reaches the backend.
type ValidationError string

func (err ValidationError) Error() string {
	return string(err)
}

func (err ValidationError) ErrCode() string {
	return "VALIDATION_FAILED"
}

func (err ValidationError) StatusCode() int {
	return http.StatusBadRequest
}

// CommandNotAllowedError is returned for any bridge command outside the allow-list.
type CommandNotAllowedError string

func (err CommandNotAllowedError) Error() string {
	return "command not allowed: " + string(err)
}

func (err CommandNotAllowedError) ErrCode() string {
	return "COMMAND_NOT_ALLOWED"
}

func (err CommandNotAllowedError) StatusCode() int {
	return http.StatusForbidden
}
