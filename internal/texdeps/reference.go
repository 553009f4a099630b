package texdeps

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Kind classifies a file reference found in a LaTeX source.
type Kind int

const (
	KindInput Kind = iota
	KindVerbatimInput
	KindGraphics
	KindBibliography
	KindImport
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindVerbatimInput:
		return "verbatiminput"
	case KindGraphics:
		return "includegraphics"
	case KindBibliography:
		return "bibliography"
	case KindImport:
		return "import"
	default:
		return "unknown"
	}
}

// DefaultExt is appended to targets whose basename has no extension. The
// guess for graphics is approximate: the real choice depends on the engine.
func (k Kind) DefaultExt() string {
	switch k {
	case KindInput, KindImport:
		return ".tex"
	case KindVerbatimInput:
		return ".txt"
	case KindGraphics:
		return ".pdf"
	case KindBibliography:
		return ".bib"
	default:
		return ""
	}
}

// recurses reports whether a resolved reference of this kind is scanned in turn.
func (k Kind) recurses() bool {
	return k == KindInput || k == KindImport
}

// Reference is one dependency as written in the source.
type Reference struct {
	Kind Kind
	// Target is the raw file argument.
	Target string
	// NewRoot is the directory argument of \import, empty otherwise.
	NewRoot string
}

var (
	reInput          = regexp.MustCompile(`\\input\s*\{([^}]*)\}`)
	reVerbatimInput  = regexp.MustCompile(`\\verbatiminput\s*\{([^}]*)\}`)
	reIncludeGraphic = regexp.MustCompile(`\\includegraphics(?:\s*\[[^\]]*\])?\s*\{([^}]*)\}`)
	reBibliography   = regexp.MustCompile(`\\bibliography\s*\{([^}]*)\}`)
	reImport         = regexp.MustCompile(`\\import\s*\{([^}]*)\}\s*\{([^}]*)\}`)

	reSpaces = regexp.MustCompile(`\s+`)
)

// References extracts every file reference from comment-free LaTeX text.
// \s also matches newlines, so arguments may span several lines.
func References(text string) []Reference {
	var refs []Reference
	single := []struct {
		re   *regexp.Regexp
		kind Kind
	}{
		{reInput, KindInput},
		{reVerbatimInput, KindVerbatimInput},
		{reIncludeGraphic, KindGraphics},
		{reBibliography, KindBibliography},
	}
	for _, p := range single {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			refs = append(refs, Reference{Kind: p.kind, Target: m[1]})
		}
	}
	for _, m := range reImport.FindAllStringSubmatch(text, -1) {
		refs = append(refs, Reference{Kind: KindImport, NewRoot: m[1], Target: m[2]})
	}
	return refs
}

// CleanupPath turns a raw reference argument into a relative or absolute file
// name: braces are dropped, whitespace runs collapse to one space, and ext is
// added when the basename has no dot. An empty argument yields "".
func CleanupPath(raw, ext string) string {
	p := strings.NewReplacer("{", "", "}", "").Replace(raw)
	p = strings.TrimSpace(reSpaces.ReplaceAllString(p, " "))
	if p == "" {
		return ""
	}
	if ext != "" && !strings.Contains(filepath.Base(p), ".") {
		p += ext
	}
	return filepath.Clean(p)
}

// resolve joins p onto dir unless p is already absolute. An empty p is dir.
func resolve(dir, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, p)
}
