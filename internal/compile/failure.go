package compile

import (
	stdErrors "errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"git.home.luguber.info/inful/texbuild/internal/errors"
	"git.home.luguber.info/inful/texbuild/internal/texlog"
)

// ToolError is returned when the compiler or the bibliography tool exits
// with a nonzero status. Report holds the diagnostics parsed from its log.
type ToolError struct {
	Document string
	Stage    StageName
	ExitCode int
	Report   texlog.ErrorReport
	cause    *errors.TexBuildError
}

func newToolError(doc string, stage StageName, code int, rep texlog.ErrorReport) *ToolError {
	e := &ToolError{Document: doc, Stage: stage, ExitCode: code, Report: rep}
	e.cause = e.category()
	return e
}

// category builds the categorized error from the exported fields, so a
// ToolError written as a literal unwraps the same way.
func (e *ToolError) category() *errors.TexBuildError {
	var cause *errors.TexBuildError
	if e.Report.Program == texlog.ProgramBibtex {
		cause = errors.BibtexFailed(e.Document, nil)
	} else {
		cause = errors.LatexFailed(e.Document, nil)
	}
	return cause.WithContext("exit_code", e.ExitCode).
		WithContext("source", e.Report.Source).
		WithContext("stage", string(e.Stage))
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s failed with exit code %d in %s (source: %s)", e.Report.Program, e.ExitCode, e.Document, e.Report.Source)
}

func (e *ToolError) Unwrap() error {
	if e.cause == nil {
		return e.category()
	}
	return e.cause
}

// Print writes the parsed report.
func (e *ToolError) Print(w io.Writer) { e.Report.Print(w) }

// ConvergenceError is returned when the .aux file keeps changing for
// MaxRepetitions compiler passes.
type ConvergenceError struct {
	Document       string
	AuxPath        string
	MaxRepetitions int
	History        []Digest
	cause          *errors.TexBuildError
}

func newConvergenceError(doc, aux string, maxReps int, history []Digest) *ConvergenceError {
	return &ConvergenceError{
		Document:       doc,
		AuxPath:        aux,
		MaxRepetitions: maxReps,
		History:        append([]Digest(nil), history...),
		cause:          errors.NotConverged(doc, maxReps).WithContext("aux", aux),
	}
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("aux file %s did not converge in %d iterations", e.AuxPath, e.MaxRepetitions)
}

func (e *ConvergenceError) Unwrap() error {
	if e.cause == nil {
		return errors.NotConverged(e.Document, e.MaxRepetitions).WithContext("aux", e.AuxPath)
	}
	return e.cause
}

var convergenceHeader = color.New(color.FgRed, color.Bold)

// Print writes the aux path and every digest in the history, oldest first.
func (e *ConvergenceError) Print(w io.Writer) {
	_, _ = convergenceHeader.Fprintf(w, "Aux file did not converge in %d iterations!", e.MaxRepetitions)
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, e.AuxPath)
	for _, d := range e.History {
		_, _ = fmt.Fprintln(w, d.String())
	}
}

// PrintFailure writes the diagnostic layout of err to w when err carries a
// ToolError or a ConvergenceError, and reports whether it did.
func PrintFailure(w io.Writer, err error) bool {
	var te *ToolError
	if stdErrors.As(err, &te) {
		te.Print(w)
		return true
	}
	var ce *ConvergenceError
	if stdErrors.As(err, &ce) {
		ce.Print(w)
		return true
	}
	return false
}
