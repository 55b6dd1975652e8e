package errors

import (
	"fmt"
)

// ParseError represents a scenario-file parsing failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures environment or scenario validation issues.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// RequestError represents a failed call to the device update service.
type RequestError struct {
	Operation  string
	StatusCode int
	Err        error
}

// NewRequestError constructs a RequestError for the named service operation.
func NewRequestError(operation string, statusCode int, err error) error {
	return &RequestError{Operation: operation, StatusCode: statusCode, Err: err}
}

func (e *RequestError) Error() string {
	if e == nil {
		return ""
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("request error: %s: unexpected status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("request error: %s: %v", e.Operation, e.Err)
}

// Unwrap exposes the underlying error.
func (e *RequestError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// AssertionError records a scenario expectation that did not hold.
type AssertionError struct {
	Step    string
	Message string
}

// NewAssertionError constructs an AssertionError for the named scenario step.
func NewAssertionError(step, message string) error {
	return &AssertionError{Step: step, Message: message}
}

func (e *AssertionError) Error() string {
	if e == nil {
		return ""
	}
	if e.Step != "" {
		return fmt.Sprintf("assertion failed: %s: %s", e.Step, e.Message)
	}
	return fmt.Sprintf("assertion failed: %s", e.Message)
}
