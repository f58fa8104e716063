package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *SlopeError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigRequired(field string) *SlopeError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

func ValidationFailed(field, reason string) *SlopeError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Input errors

func InputError(sheet, reason string) *SlopeError {
	return New(CategoryInput, SeverityFatal, "invalid analysis input").
		WithContext("sheet", sheet).
		WithContext("reason", reason)
}

func InputReadError(path string, cause error) *SlopeError {
	return Wrap(cause, CategoryInput, SeverityFatal, "failed to read analysis input").
		WithContext("path", path)
}

// Analysis errors

func GeometryError(reason string) *SlopeError {
	return New(CategoryGeometry, SeverityError, "geometry operation failed").
		WithContext("reason", reason)
}

func SolveError(method string, cause error) *SlopeError {
	return Wrap(cause, CategorySolve, SeverityError, "solver failed").
		WithContext("method", method)
}

func NotConverged(method string, iterations int) *SlopeError {
	return New(CategoryConvergence, SeverityWarning, "solver did not converge").
		WithContext("method", method).
		WithContext("iterations", iterations)
}

// Documentation-site errors

func DocsLintError(check, detail string) *SlopeError {
	return New(CategoryDocs, SeverityError, "documentation lint check failed").
		WithContext("check", check).
		WithContext("detail", detail)
}

// Infrastructure errors

func StoreError(operation string, cause error) *SlopeError {
	return Wrap(cause, CategoryStore, SeverityError, "run store operation failed").
		WithContext("operation", operation)
}

func MonitorError(component string, cause error) *SlopeError {
	return WrapRetryable(cause, CategoryMonitor, SeverityWarning, "monitor component error").
		WithContext("component", component)
}
