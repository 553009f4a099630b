package texlog

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Program names used in reports.
const (
	ProgramLatex  = "LaTeX"
	ProgramBibtex = "BibTeX"
)

const defaultMessage = `> The error message could not be isolated from the file %[1]s.
> Open %[1]s in a text editor and locate the error manually.
`

const messageSuffix = `
> The excerpt above was extracted from %s.
> Consult the full log if it does not explain the failure.
`

const (
	warnUnmatched = "> [warning: unmatched closing parenthesis]\n"
	warnUnclosed  = "> [warning: unclosed source files remain on the stack]\n"
)

// DefaultMessage is the boilerplate used when no error excerpt is found.
func DefaultMessage(logPath string) string {
	return fmt.Sprintf(defaultMessage, logPath)
}

// ErrorReport is the single diagnostic produced for a failed tool run.
type ErrorReport struct {
	Program string `json:"program"`
	// Source is the best-effort originating file, UnknownSource if none.
	Source  string `json:"source"`
	Message string `json:"message"`
	LogPath string `json:"log_path,omitempty"`
	// Isolated is true when Message holds an excerpt rather than the default boilerplate.
	Isolated bool `json:"isolated"`
}

var (
	headerColor = color.New(color.FgRed, color.Bold)
	labelColor  = color.New(color.FgMagenta, color.Bold)
)

// Print writes the report in the human-readable diagnostic layout. Colors
// follow color.NoColor, which is set when the output is not a terminal.
func (r ErrorReport) Print(w io.Writer) {
	_, _ = headerColor.Fprintf(w, "%s ERROR", r.Program)
	_, _ = fmt.Fprintln(w)
	if r.LogPath != "" {
		_, _ = labelColor.Fprint(w, "Log file:")
		_, _ = fmt.Fprintf(w, " %s\n", r.LogPath)
	}
	if r.Source != "" {
		_, _ = labelColor.Fprint(w, "Source file:")
		_, _ = fmt.Fprintf(w, " %s\n", r.Source)
	}
	if r.Message != "" {
		_, _ = fmt.Fprint(w, r.Message)
		if r.Message[len(r.Message)-1] != '\n' {
			_, _ = fmt.Fprintln(w)
		}
	}
}
