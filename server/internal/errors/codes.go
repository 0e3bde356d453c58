package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a specific error type for date operations.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeRateLimitExceeded indicates rate limit has been exceeded.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeOracleUnavailable indicates the date recognizer could not answer.
	ErrCodeOracleUnavailable ErrorCode = "ORACLE_UNAVAILABLE"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeContextCanceled indicates the operation was canceled.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// DateError represents a structured error returned by the date API.
type DateError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *DateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *DateError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error.
func (e *DateError) WithContext(key string, value any) *DateError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// HTTPStatus returns the status code the API answers with.
func (e *DateError) HTTPStatus() int {
	return HTTPStatus(e.Code)
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *DateError {
	return &DateError{Code: ErrCodeInvalidArgument, Message: msg}
}

// RateLimitExceeded creates a rate limit exceeded error.
func RateLimitExceeded(msg string) *DateError {
	return &DateError{Code: ErrCodeRateLimitExceeded, Message: msg}
}

// OracleUnavailable creates an oracle unavailable error.
func OracleUnavailable(cause error) *DateError {
	return &DateError{Code: ErrCodeOracleUnavailable, Message: "date recognizer unavailable", Cause: cause}
}

// Timeout creates a timeout error.
func Timeout(cause error) *DateError {
	return &DateError{Code: ErrCodeTimeout, Message: "operation timed out", Cause: cause}
}

// ContextCanceled creates a context canceled error.
func ContextCanceled(cause error) *DateError {
	return &DateError{Code: ErrCodeContextCanceled, Message: "operation canceled", Cause: cause}
}

// Internal creates an internal error.
func Internal(cause error) *DateError {
	return &DateError{Code: ErrCodeInternal, Message: "internal error", Cause: cause}
}

// IsCode checks if an error is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	var dateErr *DateError
	if stderrors.As(err, &dateErr) {
		return dateErr.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not a DateError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	var dateErr *DateError
	if stderrors.As(err, &dateErr) {
		return dateErr.Code
	}
	return defaultCode
}

// Classify turns an error from the parsing pipeline into a DateError.
// isUnavailable reports whether err came from an unreachable oracle.
func Classify(err error, isUnavailable func(error) bool) *DateError {
	var dateErr *DateError
	switch {
	case err == nil:
		return nil
	case stderrors.As(err, &dateErr):
		return dateErr
	case stderrors.Is(err, context.DeadlineExceeded):
		return Timeout(err)
	case stderrors.Is(err, context.Canceled):
		return ContextCanceled(err)
	case isUnavailable != nil && isUnavailable(err):
		return OracleUnavailable(err)
	default:
		return Internal(err)
	}
}

// HTTPStatus maps an error code to an HTTP status code.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidArgument:
		return http.StatusBadRequest
	case ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case ErrCodeOracleUnavailable:
		return http.StatusBadGateway
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeContextCanceled:
		// nginx's "client closed request".
		return 499
	default:
		return http.StatusInternalServerError
	}
}
