// Package texlog reduces TeX and BibTeX logs to a single ErrorReport.
package texlog

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// captureState is the error-capture state of the LaTeX log parser.
type captureState int

const (
	// stateIdle: no error block is being recorded.
	stateIdle captureState = iota
	// stateRecording: inside a "!" block, no "l." location yet; a blank line
	// pauses recording without ending the parse.
	stateRecording
	// stateRecordingWithLocation: the location line was seen; the next blank
	// line ends the excerpt.
	stateRecordingWithLocation
	// stateDone: the excerpt is complete.
	stateDone
)

func (s captureState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateRecording:
		return "recording"
	case stateRecordingWithLocation:
		return "recording_with_location"
	case stateDone:
		return "done"
	default:
		return "unknown"
	}
}

// latexParser holds the state of one LaTeX log parse.
type latexParser struct {
	stack    *SourceStack
	state    captureState
	source   string
	recorded []string
}

func newLatexParser(wrap WrapOptions) *latexParser {
	return &latexParser{stack: NewSourceStack(wrap), source: UnknownSource}
}

// step advances the parser by one line and reports whether to continue.
func (p *latexParser) step(line string) bool {
	if p.state == stateRecording || p.state == stateRecordingWithLocation {
		p.recorded = append(p.recorded, strings.TrimRight(line, " \t"))
		if strings.TrimSpace(line) == "" {
			if p.state == stateRecordingWithLocation {
				p.state = stateDone
				return false
			}
			p.state = stateIdle
		}
	}
	switch {
	case strings.HasPrefix(line, "!"):
		// Error lines are not fed to the stack: attribution is the state
		// before the line that announced the error.
		if p.state == stateIdle {
			p.recorded = append(p.recorded, strings.TrimRight(line, " \t"))
			p.state = stateRecording
		}
		p.source = p.stack.Current()
	case strings.HasPrefix(line, "l."):
		if p.state == stateIdle {
			p.recorded = append(p.recorded, strings.TrimRight(line, " \t"))
		}
		p.state = stateRecordingWithLocation
	default:
		p.stack.Feed(line)
	}
	return true
}

func (p *latexParser) report(logPath string) ErrorReport {
	r := ErrorReport{Program: ProgramLatex, Source: p.source, LogPath: logPath}
	if len(p.recorded) > 0 {
		r.Message = strings.Join(p.recorded, "\n") + fmt.Sprintf(messageSuffix, logPath)
		r.Isolated = true
	} else {
		r.Message = DefaultMessage(logPath)
		r.Source = UnknownSource
	}
	if p.stack.Unmatched() {
		r.Message += warnUnmatched
	}
	if len(p.stack.Stack()) > 0 {
		r.Message += warnUnclosed
	}
	return r
}

// ParseLatexLog reads a LaTeX log and extracts the first error block with its
// originating source file. logPath is only used in messages.
func ParseLatexLog(r io.Reader, logPath string, wrap WrapOptions) (ErrorReport, error) {
	p := newLatexParser(wrap)
	if err := eachLine(r, p.step); err != nil {
		return ErrorReport{}, err
	}
	return p.report(logPath), nil
}

// ParseLatexLogFile parses the log at path. A missing log yields the default report.
func ParseLatexLogFile(path string, wrap WrapOptions) (ErrorReport, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return newLatexParser(wrap).report(path), nil
	}
	if err != nil {
		return ErrorReport{}, err
	}
	defer f.Close()
	return ParseLatexLog(f, path, wrap)
}
