package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Input errors
	ErrorTypeMissingRequiredField  ErrorType = "MISSING_REQUIRED_FIELD"
	ErrorTypeInvalidField          ErrorType = "INVALID_FIELD"
	ErrorTypeInvalidQueryParameter ErrorType = "INVALID_QUERY_PARAMETER"
	ErrorTypeNotFound              ErrorType = "NOT_FOUND"

	// Load errors
	ErrorTypeLoadPartialFailure ErrorType = "LOAD_PARTIAL_FAILURE"

	// Infrastructure errors
	ErrorTypeStoreUnavailable ErrorType = "STORE_UNAVAILABLE"
	ErrorTypeInternal         ErrorType = "INTERNAL"
)

// detailUnwrittenIDs is the Details key holding the paper ids a load could not write.
const detailUnwrittenIDs = "unwritten_ids"

// AppError represents an application-specific error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails merges error details
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{}, len(details))
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// captureStackTrace captures the current stack trace
func captureStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var stack strings.Builder
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&stack, "%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return stack.String()
}

// Constructor functions

// NewMissingRequiredFieldError reports an input paper without a required field.
func NewMissingRequiredFieldError(field string) *AppError {
	return &AppError{
		Type:       ErrorTypeMissingRequiredField,
		Message:    fmt.Sprintf("required field '%s' is missing", field),
		Details:    map[string]interface{}{"field": field},
		HTTPStatus: http.StatusBadRequest,
		StackTrace: captureStackTrace(),
	}
}

// NewInvalidFieldError reports an input field that is present but malformed.
func NewInvalidFieldError(field, reason string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidField,
		Message:    fmt.Sprintf("field '%s' is invalid: %s", field, reason),
		Details:    map[string]interface{}{"field": field},
		HTTPStatus: http.StatusBadRequest,
		StackTrace: captureStackTrace(),
	}
}

// NewInvalidQueryParameterError reports a missing or malformed query argument.
func NewInvalidQueryParameterError(param, reason string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidQueryParameter,
		Message:    fmt.Sprintf("query parameter '%s' %s", param, reason),
		Details:    map[string]interface{}{"parameter": param},
		HTTPStatus: http.StatusBadRequest,
		StackTrace: captureStackTrace(),
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		StackTrace: captureStackTrace(),
	}
}

// NewLoadPartialFailureError reports a load run that could not write every
// view of the named papers after exhausting its retry budget.
func NewLoadPartialFailureError(unwrittenIDs []string, cause error) *AppError {
	ids := append([]string(nil), unwrittenIDs...)
	return &AppError{
		Type:       ErrorTypeLoadPartialFailure,
		Message:    fmt.Sprintf("load aborted with %d paper(s) not fully written", len(ids)),
		Details:    map[string]interface{}{detailUnwrittenIDs: ids},
		Cause:      cause,
		HTTPStatus: http.StatusInternalServerError,
		StackTrace: captureStackTrace(),
	}
}

// NewStoreUnavailableError reports a transient store failure.
func NewStoreUnavailableError(operation string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeStoreUnavailable,
		Message:    fmt.Sprintf("store operation '%s' is temporarily unavailable", operation),
		Cause:      err,
		HTTPStatus: http.StatusServiceUnavailable,
		StackTrace: captureStackTrace(),
	}
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		StackTrace: captureStackTrace(),
	}
}

// Helper functions

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

// IsMissingRequiredField checks if an error is a missing required field error
func IsMissingRequiredField(err error) bool {
	return IsType(err, ErrorTypeMissingRequiredField)
}

// IsInvalidQueryParameter checks if an error is an invalid query parameter error
func IsInvalidQueryParameter(err error) bool {
	return IsType(err, ErrorTypeInvalidQueryParameter)
}

// IsLoadPartialFailure checks if an error is a load partial failure
func IsLoadPartialFailure(err error) bool {
	return IsType(err, ErrorTypeLoadPartialFailure)
}

// IsStoreUnavailable checks if an error is a store unavailable error
func IsStoreUnavailable(err error) bool {
	return IsType(err, ErrorTypeStoreUnavailable)
}

// IsRetryable reports whether retrying the failed operation can change its outcome.
// Only transient store failures qualify.
func IsRetryable(err error) bool {
	return IsStoreUnavailable(err)
}

// UnwrittenPaperIDs returns the paper ids carried by a load partial failure.
func UnwrittenPaperIDs(err error) []string {
	appErr := GetAppError(err)
	if appErr == nil || appErr.Type != ErrorTypeLoadPartialFailure {
		return nil
	}
	ids, _ := appErr.Details[detailUnwrittenIDs].([]string)
	return ids
}
