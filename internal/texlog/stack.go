package texlog

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// UnknownSource is reported when no source file can be attributed.
const UnknownSource = "(could not detect source file)"

// DefaultWrapWidth is pdfTeX's log line length including the newline.
const DefaultWrapWidth = 80

// DefaultWrapSuffixes end full-width lines that are not wrapped.
var DefaultWrapSuffixes = []string{".tex", ".sty", ".cls", ".def", ".cfg", ".clo"}

// reMarker matches an open marker, optionally followed by a path-like
// fragment, or a close marker.
var reMarker = regexp.MustCompile(`\((?:(?:\./|\.\./|/)[-_./a-zA-Z0-9]+)?|\)`)

// WrapOptions tunes the line-wrap heuristic. A zero Width disables it.
type WrapOptions struct {
	Width    int
	Suffixes []string
}

// DefaultWrapOptions returns pdfTeX's settings.
func DefaultWrapOptions() WrapOptions {
	return WrapOptions{Width: DefaultWrapWidth, Suffixes: slices.Clone(DefaultWrapSuffixes)}
}

// SourceStack tracks which source file is open at each point of a TeX log.
// TeX prints "(path" when it opens a file and ")" when it closes it, and hard
// wraps log lines at a fixed width, so a path can be split across two lines.
type SourceStack struct {
	wrap       WrapOptions
	stack      []string
	unfinished string
	pending    bool
	unmatched  bool
}

// NewSourceStack returns an empty tracker.
func NewSourceStack(wrap WrapOptions) *SourceStack {
	return &SourceStack{wrap: wrap}
}

// Current is the innermost open file, or UnknownSource.
func (s *SourceStack) Current() string {
	if len(s.stack) == 0 {
		return UnknownSource
	}
	return s.stack[len(s.stack)-1]
}

// Stack returns a copy of the open files, outermost first.
func (s *SourceStack) Stack() []string { return slices.Clone(s.stack) }

// Unfinished returns the buffered line suspected of being wrapped.
func (s *SourceStack) Unfinished() (string, bool) { return s.unfinished, s.pending }

// Unmatched reports whether a close marker ever arrived with an empty stack.
func (s *SourceStack) Unmatched() bool { return s.unmatched }

// Balanced reports whether every open marker was closed and vice versa.
func (s *SourceStack) Balanced() bool { return len(s.stack) == 0 && !s.unmatched }

// Feed consumes one log line without its terminator. A line that fills the
// wrap width is held back and prefixed to the next one, so the joined text is
// scanned exactly once.
func (s *SourceStack) Feed(line string) {
	full := s.isFull(line)
	if s.pending {
		line = s.unfinished + line
		s.unfinished, s.pending = "", false
	}
	if full {
		s.unfinished, s.pending = line, true
		return
	}
	for _, m := range reMarker.FindAllString(line, -1) {
		if m == ")" {
			if len(s.stack) == 0 {
				s.unmatched = true
			} else {
				s.stack = s.stack[:len(s.stack)-1]
			}
			continue
		}
		s.stack = append(s.stack, m[1:])
	}
}

// isFull applies the wrap heuristic to the raw line, before any merge.
func (s *SourceStack) isFull(line string) bool {
	if s.wrap.Width <= 0 || utf8.RuneCountInString(line)+1 != s.wrap.Width {
		return false
	}
	for _, suffix := range s.wrap.Suffixes {
		if strings.HasSuffix(line, suffix) {
			return false
		}
	}
	return true
}
