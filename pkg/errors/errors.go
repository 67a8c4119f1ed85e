package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Edit engine errors
	ErrorTypeAmbiguousSelection ErrorType = "AMBIGUOUS_SELECTION"
	ErrorTypeUnconnectedAnchor  ErrorType = "UNCONNECTED_ANCHOR"
	ErrorTypeSignalMismatch     ErrorType = "SIGNAL_MISMATCH"
	ErrorTypeNoTargetFound      ErrorType = "NO_TARGET_FOUND"
	ErrorTypeLogic              ErrorType = "LOGIC"
	ErrorTypeUserCanceled       ErrorType = "USER_CANCELED"

	// Generic errors
	ErrorTypeValidation ErrorType = "VALIDATION"
	ErrorTypeNotFound   ErrorType = "NOT_FOUND"
	ErrorTypeConflict   ErrorType = "CONFLICT"
	ErrorTypeInternal   ErrorType = "INTERNAL"
)

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

// WithDetail adds a single detail entry
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// UserFacing reports whether the error is meant to be shown to the user as
// a message, as opposed to an engine bug.
func (e *AppError) UserFacing() bool {
	switch e.Type {
	case ErrorTypeLogic, ErrorTypeInternal:
		return false
	default:
		return true
	}
}

// captureStackTrace captures the current stack trace
func captureStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	stack := ""
	for {
		frame, more := frames.Next()
		stack += fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return stack
}

// NewAmbiguousSelectionError reports several candidates of one element kind
// at a query position.
func NewAmbiguousSelectionError(kind string, count int) *AppError {
	return &AppError{
		Type:       ErrorTypeAmbiguousSelection,
		Message:    fmt.Sprintf("%d %ss at this position, cannot decide which one to use", count, kind),
		Details:    map[string]interface{}{"kind": kind, "count": count},
		HTTPStatus: http.StatusConflict,
	}
}

// NewUnconnectedAnchorError reports a pad or via without a net signal
func NewUnconnectedAnchorError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeUnconnectedAnchor,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewSignalMismatchError reports an edit that would connect two net signals
func NewSignalMismatchError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeSignalMismatch,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewNoTargetFoundError reports an empty spatial query
func NewNoTargetFoundError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeNoTargetFound,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewLogicError reports a programming error inside the engine
func NewLogicError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeLogic,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		StackTrace: captureStackTrace(),
	}
}

// NewUserCanceledError reports an abandoned interactive step
func NewUserCanceledError(message string) *AppError {
	if message == "" {
		message = "canceled by user"
	}
	return &AppError{
		Type:       ErrorTypeUserCanceled,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

// NewConflictError creates a conflict error
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
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

func IsAmbiguousSelection(err error) bool { return IsType(err, ErrorTypeAmbiguousSelection) }
func IsUnconnectedAnchor(err error) bool  { return IsType(err, ErrorTypeUnconnectedAnchor) }
func IsSignalMismatch(err error) bool     { return IsType(err, ErrorTypeSignalMismatch) }
func IsNoTargetFound(err error) bool      { return IsType(err, ErrorTypeNoTargetFound) }
func IsLogic(err error) bool              { return IsType(err, ErrorTypeLogic) }
func IsUserCanceled(err error) bool       { return IsType(err, ErrorTypeUserCanceled) }
func IsValidation(err error) bool         { return IsType(err, ErrorTypeValidation) }
func IsNotFound(err error) bool           { return IsType(err, ErrorTypeNotFound) }
func IsConflict(err error) bool           { return IsType(err, ErrorTypeConflict) }

// Wrap adds context to an error. AppErrors keep their type; anything else
// becomes an internal error.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	if appErr := GetAppError(err); appErr != nil {
		return fmt.Errorf("%s: %w", message, err)
	}

	return NewInternalError(message).WithCause(err)
}

// Wrapf wraps an error with formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}
