// Package errors provides a lightweight structured error type (SlopeError)
// for category-based classification in the CLI and monitor daemon.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a slopekit error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryInput      ErrorCategory = "input"
	CategoryValidation ErrorCategory = "validation"

	// Analysis errors
	CategoryGeometry    ErrorCategory = "geometry"
	CategorySolve       ErrorCategory = "solve"
	CategoryConvergence ErrorCategory = "convergence"

	// Documentation-site errors
	CategoryDocs ErrorCategory = "docs"

	// Runtime and infrastructure errors
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryStore      ErrorCategory = "store"
	CategoryMonitor    ErrorCategory = "monitor"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// SlopeError is a structured error with category, retryability, and context
type SlopeError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for SlopeError
type ContextFields map[string]any

// Error implements the error interface
func (e *SlopeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *SlopeError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *SlopeError) WithContext(key string, value any) *SlopeError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new SlopeError
func New(category ErrorCategory, severity ErrorSeverity, message string) *SlopeError {
	return &SlopeError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Retryable: false,
	}
}

// Wrap creates a new SlopeError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *SlopeError {
	return &SlopeError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: false,
	}
}

// WrapRetryable creates a new retryable SlopeError that wraps an existing error
func WrapRetryable(err error, category ErrorCategory, severity ErrorSeverity, message string) *SlopeError {
	return &SlopeError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: true,
	}
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if se, ok := err.(*SlopeError); ok {
		return se.Category == category
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if se, ok := err.(*SlopeError); ok {
		return se.Retryable
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a SlopeError
func GetCategory(err error) ErrorCategory {
	if se, ok := err.(*SlopeError); ok {
		return se.Category
	}
	return CategoryInternal
}
