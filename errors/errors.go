package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrorType represents the classification of an error
type ErrorType string

const (
	// Input errors, detected synchronously
	ErrorTypeLoad         ErrorType = "load"
	ErrorTypeNoImage      ErrorType = "no_image"
	ErrorTypeInvalidSize  ErrorType = "invalid_size"
	ErrorTypeInvalidPath  ErrorType = "invalid_path"
	ErrorTypeInvalidImage ErrorType = "invalid_image"
	ErrorTypeNoSourcePath ErrorType = "no_source_path"
	ErrorTypeValidation   ErrorType = "validation"

	// Background save errors
	ErrorTypeEncodeWrite ErrorType = "encode_write"

	// System errors
	ErrorTypeInternal ErrorType = "internal"
	ErrorTypeUnknown  ErrorType = "unknown"
)

// Severity tells the front end how loudly to surface an error.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Severity returns the display severity for the type.
func (t ErrorType) Severity() Severity {
	if t == ErrorTypeNoImage {
		return SeverityWarning
	}
	return SeverityError
}

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	InnerError error                  `json:"-"`
	Stack      []string               `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Type)
	}
	if e.InnerError != nil && e.Message != "" {
		return fmt.Sprintf("%s: %v", msg, e.InnerError)
	}
	if e.InnerError != nil {
		return e.InnerError.Error()
	}
	return msg
}

// Unwrap returns the inner error
func (e *AppError) Unwrap() error {
	return e.InnerError
}

// WithMessage adds a message to the error
func (e *AppError) WithMessage(msg string) *AppError {
	e.Message = msg
	return e
}

// WithCode adds a code to the error
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetail adds a detail to the error
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithInnerError sets the inner error
func (e *AppError) WithInnerError(err error) *AppError {
	e.InnerError = err
	return e
}

// WithStack captures the call stack
func (e *AppError) WithStack() *AppError {
	e.Stack = captureStack(3)
	return e
}

// Severity returns the display severity of the error.
func (e *AppError) Severity() Severity {
	return e.Type.Severity()
}

// Is reports whether target is an AppError of the same type.
func (e *AppError) Is(target error) bool {
	if targetApp, ok := target.(*AppError); ok {
		return e.Type == targetApp.Type
	}
	return false
}

// Sentinels for errors.Is. Only the Type is compared.
var (
	ErrLoad         = &AppError{Type: ErrorTypeLoad}
	ErrNoImage      = &AppError{Type: ErrorTypeNoImage}
	ErrInvalidSize  = &AppError{Type: ErrorTypeInvalidSize}
	ErrInvalidPath  = &AppError{Type: ErrorTypeInvalidPath}
	ErrInvalidImage = &AppError{Type: ErrorTypeInvalidImage}
	ErrNoSourcePath = &AppError{Type: ErrorTypeNoSourcePath}
	ErrEncodeWrite  = &AppError{Type: ErrorTypeEncodeWrite}
	ErrValidation   = &AppError{Type: ErrorTypeValidation}
)

// New creates a new AppError
func New(errType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Code:    strings.ToUpper(string(errType)),
	}
}

// FromError converts a standard error to AppError
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return &AppError{
		Type:       ErrorTypeUnknown,
		Code:       strings.ToUpper(string(ErrorTypeUnknown)),
		InnerError: err,
	}
}

// WrapWithType wraps an error with a specific type
func WrapWithType(err error, errType ErrorType, message string) *AppError {
	return New(errType, message).WithInnerError(err)
}

// TypeOf returns the classification of err, or ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeUnknown
}

// IsType reports whether err carries the given classification.
func IsType(err error, errType ErrorType) bool {
	return err != nil && TypeOf(err) == errType
}

func NewLoad(path string, cause error) *AppError {
	return WrapWithType(cause, ErrorTypeLoad, fmt.Sprintf("failed to load image %q", path)).
		WithDetail("path", path)
}

func NewNoImage(operation string) *AppError {
	return New(ErrorTypeNoImage, "no image loaded").
		WithDetail("operation", operation)
}

func NewInvalidSize(field string, value interface{}) *AppError {
	return New(ErrorTypeInvalidSize, fmt.Sprintf("invalid %s: %v", field, value)).
		WithDetail("field", field).
		WithDetail("value", value)
}

func NewInvalidPath(path, reason string) *AppError {
	return New(ErrorTypeInvalidPath, fmt.Sprintf("invalid output path %q: %s", path, reason)).
		WithDetail("path", path).
		WithDetail("reason", reason)
}

func NewInvalidImage(width, height int) *AppError {
	return New(ErrorTypeInvalidImage, fmt.Sprintf("degenerate image size %dx%d", width, height)).
		WithDetail("width", width).
		WithDetail("height", height)
}

func NewNoSourcePath() *AppError {
	return New(ErrorTypeNoSourcePath, "no source image path")
}

func NewEncodeWrite(path string, cause error) *AppError {
	return WrapWithType(cause, ErrorTypeEncodeWrite, fmt.Sprintf("failed to save %q", path)).
		WithDetail("path", path)
}

func NewValidation(message string) *AppError {
	return New(ErrorTypeValidation, message)
}

func NewInternal(message string) *AppError {
	return New(ErrorTypeInternal, message)
}

func captureStack(skip int) []string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var stack []string
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			stack = append(stack, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		}
		if !more {
			break
		}
	}
	return stack
}
