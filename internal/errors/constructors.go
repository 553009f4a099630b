package errors

// Convenience functions for common error patterns

// Config errors

func ConfigInvalid(path string, cause error) *TexBuildError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "configuration file could not be parsed").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *TexBuildError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Tool errors

func LatexFailed(document string, cause error) *TexBuildError {
	return Wrap(cause, CategoryLatex, SeverityFatal, "LaTeX compilation failed").
		WithContext("document", document)
}

func BibtexFailed(document string, cause error) *TexBuildError {
	return Wrap(cause, CategoryBibtex, SeverityFatal, "BibTeX failed").
		WithContext("document", document)
}

func NotConverged(document string, repetitions int) *TexBuildError {
	return New(CategoryConvergence, SeverityFatal, "aux file did not converge").
		WithContext("document", document).
		WithContext("repetitions", repetitions)
}

// Bookkeeping errors

func FileSystemError(operation string, cause error) *TexBuildError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "filesystem operation failed").
		WithContext("operation", operation)
}

func DeclareFailed(sink string, cause error) *TexBuildError {
	return Wrap(cause, CategoryDeclare, SeverityFatal, "declaring build dependencies failed").
		WithContext("sink", sink)
}
