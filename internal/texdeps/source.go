package texdeps

import (
	"bufio"
	"io"
	"strings"
)

// DirectivePrefix starts an explicit dependency declaration comment.
const DirectivePrefix = "%REPREP"

// DirectiveKind selects the result set a directive path goes to.
type DirectiveKind string

const (
	DirectiveInput    DirectiveKind = "inp"
	DirectiveOutput   DirectiveKind = "out"
	DirectiveVolatile DirectiveKind = "vol"
	DirectiveIgnore   DirectiveKind = "ignore"
)

// directiveWords maps the word after the prefix to its kind; "input" is the
// long spelling accepted for compatibility.
var directiveWords = map[string]DirectiveKind{
	"inp":   DirectiveInput,
	"input": DirectiveInput,
	"out":   DirectiveOutput,
	"vol":   DirectiveVolatile,
}

// Directive is one explicit declaration read from a source comment.
type Directive struct {
	Kind DirectiveKind
	Path string
}

// Source is a LaTeX file reduced to what the scanner needs.
type Source struct {
	// Text has comments removed and ignored lines dropped.
	Text       string
	Directives []Directive
}

// ParseSource reads a LaTeX source, strips comments and collects directives.
func ParseSource(r io.Reader) (Source, error) {
	var src Source
	var kept []string
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			line = strings.TrimRight(line, "\r\n")
			if d, ok := parseDirective(line); ok {
				if d.Kind != DirectiveIgnore {
					src.Directives = append(src.Directives, d)
				}
			} else {
				kept = append(kept, strings.TrimRight(StripComment(line), " \t"))
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return Source{}, err
		}
	}
	src.Text = strings.Join(kept, "\n")
	return src, nil
}

// parseDirective recognizes directive lines. An ignore directive may trail
// ordinary LaTeX on the same line; the other kinds must start the line.
func parseDirective(line string) (Directive, bool) {
	if strings.Contains(line, DirectivePrefix+" "+string(DirectiveIgnore)) {
		return Directive{Kind: DirectiveIgnore}, true
	}
	rest, ok := strings.CutPrefix(line, DirectivePrefix+" ")
	if !ok {
		return Directive{}, false
	}
	word, path, _ := strings.Cut(rest, " ")
	kind, ok := directiveWords[word]
	path = strings.TrimSpace(path)
	if !ok || path == "" {
		return Directive{}, false
	}
	return Directive{Kind: kind, Path: path}, true
}

// StripComment drops everything from the first unescaped % onward. A % is
// escaped when preceded by an odd number of backslashes.
func StripComment(line string) string {
	backslashes := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			backslashes++
			continue
		case '%':
			if backslashes%2 == 0 {
				return line[:i]
			}
		}
		backslashes = 0
	}
	return line
}
