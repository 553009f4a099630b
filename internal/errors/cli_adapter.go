package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// CLIErrorAdapter handles error presentation and exit code determination for CLI applications.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	out     io.Writer
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
		out:     os.Stderr,
	}
}

// ExitCodeFor determines the exit code for an error. Diagnosis travels in the
// printed report, so every failure maps to 1.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	if tbe, ok := As(err); ok {
		return a.formatTexBuild(tbe)
	}

	return fmt.Sprintf("Error: %v", err)
}

// formatTexBuild formats a TexBuildError for display.
func (a *CLIErrorAdapter) formatTexBuild(err *TexBuildError) string {
	if a.verbose {
		return err.Error()
	}

	switch err.Category {
	case CategoryConfig, CategoryValidation:
		return err.Message
	default:
		return fmt.Sprintf("%s: %s", err.Category, err.Message)
	}
}

// Handle logs and prints err and returns the exit code; it does not exit.
func (a *CLIErrorAdapter) Handle(err error) int {
	if err == nil {
		return 0
	}
	if a.shouldLog(err) {
		a.logError(err)
	}
	_, _ = fmt.Fprintf(a.out, "%s\n", a.FormatError(err))
	return a.ExitCodeFor(err)
}

// shouldLog determines if an error should be logged.
func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}

	if tbe, ok := As(err); ok {
		return tbe.Category == CategoryInternal || tbe.Severity == SeverityFatal
	}

	return true
}

// logError logs an error with appropriate level and context.
func (a *CLIErrorAdapter) logError(err error) {
	if tbe, ok := As(err); ok {
		attrs := []slog.Attr{
			slog.String("category", string(tbe.Category)),
		}
		for k, v := range tbe.Context {
			attrs = append(attrs, slog.Any(k, v))
		}
		a.logger.LogAttrs(context.Background(), a.slogLevel(tbe.Severity), tbe.Message, attrs...)
		return
	}

	a.logger.Error("Unclassified error", "error", err)
}

// slogLevel converts TexBuildError severity to slog level.
func (a *CLIErrorAdapter) slogLevel(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
