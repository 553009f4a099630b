package texlog

import (
	"io"
	"os"
	"strings"
)

// Phrases BibTeX uses for fatal errors.
const (
	bibtexSkipping = "I'm skipping whatever remains"
	bibtexNoStyle  = `I found no \bibstyle command`
)

// bibtexMissingCommand lists the "I found no \... command" family. All of
// them name the offending aux file as the last word of the line.
var bibtexMissingCommand = []string{
	bibtexNoStyle,
	`I found no \bibdata command`,
	`I found no \citation commands`,
}

// ParseBibtexLog reads a BibTeX .blg log. BibTeX does not nest files, so the
// source is simply the file named by the latest "---line N of file X" line.
func ParseBibtexLog(r io.Reader, logPath string) (ErrorReport, error) {
	source := UnknownSource
	var recorded []string
	found := false

	err := eachLine(r, func(line string) bool {
		if strings.Contains(line, "---") && strings.Contains(line, "file ") {
			if f := strings.Fields(line); len(f) > 0 {
				source = f[len(f)-1]
			}
			recorded = recorded[:0]
		}
		recorded = append(recorded, line)
		if strings.HasPrefix(line, bibtexSkipping) {
			found = true
			return false
		}
		for _, phrase := range bibtexMissingCommand {
			if strings.HasPrefix(line, phrase) {
				if f := strings.Fields(line); len(f) > 0 {
					source = f[len(f)-1]
				}
				recorded = []string{line}
				found = true
				return false
			}
		}
		return true
	})
	if err != nil {
		return ErrorReport{}, err
	}

	rep := ErrorReport{Program: ProgramBibtex, Source: source, LogPath: logPath}
	if found {
		rep.Message = strings.Join(recorded, "\n")
		rep.Isolated = true
	} else {
		rep.Message = DefaultMessage(logPath)
	}
	return rep, nil
}

// ParseBibtexLogFile parses the log at path. A missing log yields the default report.
func ParseBibtexLogFile(path string) (ErrorReport, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return ErrorReport{Program: ProgramBibtex, Source: UnknownSource, LogPath: path, Message: DefaultMessage(path)}, nil
	}
	if err != nil {
		return ErrorReport{}, err
	}
	defer f.Close()
	return ParseBibtexLog(f, path)
}
