// Package errors provides a lightweight structured error type (TallyError)
// for category-based classification across the tally engine and CLI.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a tally error for classification
type ErrorCategory string

const (
	// User-facing input errors
	CategoryValidation    ErrorCategory = "validation"
	CategoryDuplicateDate ErrorCategory = "duplicate_date"
	CategoryNotFound      ErrorCategory = "not_found"

	// Infrastructure errors
	CategoryStore    ErrorCategory = "store"
	CategoryConfig   ErrorCategory = "config"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// TallyError is a structured error with category, severity, and context
type TallyError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for TallyError
type ContextFields map[string]any

// Error implements the error interface
func (e *TallyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *TallyError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *TallyError) WithContext(key string, value any) *TallyError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new TallyError
func New(category ErrorCategory, severity ErrorSeverity, message string) *TallyError {
	return &TallyError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new TallyError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *TallyError {
	return &TallyError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if te, ok := err.(*TallyError); ok {
		return te.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal
// if it is not a TallyError
func GetCategory(err error) ErrorCategory {
	if te, ok := err.(*TallyError); ok {
		return te.Category
	}
	return CategoryInternal
}
