package errors

// Convenience constructors for the error categories the managers raise.

// Validation creates a precondition-failure error (bad caller input).
func Validation(message string) *TallyError {
	return New(CategoryValidation, SeverityWarning, message)
}

// ValidationField creates a precondition-failure error tagged with the
// offending field.
func ValidationField(field, reason string) *TallyError {
	return New(CategoryValidation, SeverityWarning, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// DuplicateDate signals an attempt to create a second workday for a date
// that already has one.
func DuplicateDate(date string) *TallyError {
	return New(CategoryDuplicateDate, SeverityWarning, "a workday already exists for this date").
		WithContext("date", date)
}

// NotFound signals that a referenced record does not exist.
func NotFound(kind, id string) *TallyError {
	return New(CategoryNotFound, SeverityError, kind+" not found").
		WithContext("id", id)
}

// StoreUnavailable wraps a persistence-layer failure. The cause is preserved
// untouched; recovery is the caller's responsibility.
func StoreUnavailable(operation string, cause error) *TallyError {
	return Wrap(cause, CategoryStore, SeverityFatal, "store operation failed").
		WithContext("operation", operation)
}

// Internal wraps a failure that indicates a bug rather than bad input.
func Internal(message string, cause error) *TallyError {
	return Wrap(cause, CategoryInternal, SeverityError, message)
}

// ConfigError wraps a configuration loading failure.
func ConfigError(message string, cause error) *TallyError {
	return Wrap(cause, CategoryConfig, SeverityFatal, message)
}
