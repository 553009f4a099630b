// Package errors provides a lightweight structured error type (TexBuildError)
// for category-based classification of build failures in the driver and CLI.
package errors

import (
	stdErrors "errors"
	"fmt"
)

// ErrorCategory represents the category of a texbuild error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Tool failures reported with a parsed log excerpt
	CategoryLatex  ErrorCategory = "latex"
	CategoryBibtex ErrorCategory = "bibtex"

	// Build loop and bookkeeping errors
	CategoryConvergence ErrorCategory = "convergence"
	CategoryFileSystem  ErrorCategory = "filesystem"
	CategoryDeclare     ErrorCategory = "declare"

	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// TexBuildError is a structured error with category, severity and context
type TexBuildError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for TexBuildError
type ContextFields map[string]any

// Error implements the error interface
func (e *TexBuildError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *TexBuildError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *TexBuildError) WithContext(key string, value any) *TexBuildError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new TexBuildError
func New(category ErrorCategory, severity ErrorSeverity, message string) *TexBuildError {
	return &TexBuildError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new TexBuildError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *TexBuildError {
	return &TexBuildError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// As finds the first TexBuildError in err's chain.
func As(err error) (*TexBuildError, bool) {
	var tbe *TexBuildError
	if stdErrors.As(err, &tbe) {
		return tbe, true
	}
	return nil, false
}

// IsCategory checks if an error (or anything it wraps) belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if tbe, ok := As(err); ok {
		return tbe.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a TexBuildError
func GetCategory(err error) ErrorCategory {
	if tbe, ok := As(err); ok {
		return tbe.Category
	}
	return CategoryInternal
}
