package error

// GenericError is implemented by every error that crosses the bridge. The
// transport uses ErrCode and StatusCode to build the response envelope.
type GenericError interface {
	ErrCode() string
	StatusCode() int
	Error() string
}
