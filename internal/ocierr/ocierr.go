// Package ocierr defines the error taxonomy surfaced through omni's
// response envelope: every error the engine returns carries one of a fixed
// set of codes so CLI and RPC callers can branch on it without parsing
// strings.
package ocierr

import "fmt"

// Code is one of the fixed taxonomy values carried by OciError.
type Code string

const (
	CodeInvalidQuery Code = "invalid_query"
	CodeNotFound     Code = "not_found"
	CodeIOError      Code = "io_error"
	CodeParseError   Code = "parse_error"
	CodeIndexStale   Code = "index_stale"
	CodeCancelled    Code = "cancelled"
	CodeInternal     Code = "internal"
)

// OciError is the error type returned by every public omni operation.
// It wraps an underlying cause (optional) and is stable enough to render
// directly into the response envelope's error field.
type OciError struct {
	Code    Code
	Message string
	Cause   error
}

func (e *OciError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *OciError) Unwrap() error { return e.Cause }

func newErr(code Code, format string, args ...any) *OciError {
	return &OciError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func wrapErr(code Code, cause error, format string, args ...any) *OciError {
	return &OciError{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func InvalidQuery(format string, args ...any) *OciError { return newErr(CodeInvalidQuery, format, args...) }
func NotFound(format string, args ...any) *OciError     { return newErr(CodeNotFound, format, args...) }
func Internal(format string, args ...any) *OciError     { return newErr(CodeInternal, format, args...) }
func Cancelled(format string, args ...any) *OciError    { return newErr(CodeCancelled, format, args...) }
func IndexStale(format string, args ...any) *OciError   { return newErr(CodeIndexStale, format, args...) }

func IOError(cause error, format string, args ...any) *OciError {
	return wrapErr(CodeIOError, cause, format, args...)
}

func ParseError(cause error, format string, args ...any) *OciError {
	return wrapErr(CodeParseError, cause, format, args...)
}

func WrapInternal(cause error, format string, args ...any) *OciError {
	return wrapErr(CodeInternal, cause, format, args...)
}

// CodeOf extracts the taxonomy code from err, defaulting to CodeInternal for
// errors that did not originate from this package.
func CodeOf(err error) Code {
	var oe *OciError
	if ok := asOciError(err, &oe); ok {
		return oe.Code
	}
	return CodeInternal
}

func asOciError(err error, target **OciError) bool {
	for err != nil {
		if oe, ok := err.(*OciError); ok {
			*target = oe
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
