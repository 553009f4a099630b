package config

// Built-in defaults, lowest precedence.
const (
	DefaultLatex          = "pdflatex"
	DefaultBibtex         = "bibtex"
	DefaultMaxRepetitions = 5
	DefaultMaxDepth       = 64
	// DefaultWrapWidth counts the line terminator, so pdfTeX's 79 visible
	// characters per log line make 80.
	DefaultWrapWidth = 80
	DefaultSubject   = "texbuild.declarations"
)

// Environment variables consulted once, in Resolve. The REPREP names are kept
// for projects migrating from the older tooling.
const (
	EnvLatex        = "TEXBUILD_LATEX"
	EnvBibtex       = "TEXBUILD_BIBTEX"
	EnvLatexLegacy  = "REPREP_LATEX"
	EnvBibtexLegacy = "REPREP_BIBTEX"
)

// DefaultWrapSuffixes are file extensions that legitimately end a full-width log line.
var DefaultWrapSuffixes = []string{".tex", ".sty", ".cls", ".def", ".cfg", ".clo"}

// DefaultExcludes keep TeX distribution files out of the dependency sets.
var DefaultExcludes = []string{"**/texmf*/**", "**/texlive/**", "**/miktex/**"}
