// Package texdeps discovers the files a LaTeX document depends on by scanning
// its sources, without running a TeX engine.
package texdeps

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"git.home.luguber.info/inful/texbuild/internal/logfields"
	"git.home.luguber.info/inful/texbuild/internal/util/sets"
)

// DefaultMaxDepth bounds \input nesting when no option overrides it.
const DefaultMaxDepth = 64

// Result holds the four disjoint path sets produced by one scan. All paths are
// absolute and cleaned.
type Result struct {
	Inputs   sets.Set[string]
	BibFiles sets.Set[string]
	Outputs  sets.Set[string]
	Volatile sets.Set[string]
}

// NewResult returns a Result with empty, non-nil sets.
func NewResult() Result {
	return Result{
		Inputs:   sets.New[string](),
		BibFiles: sets.New[string](),
		Outputs:  sets.New[string](),
		Volatile: sets.New[string](),
	}
}

// Merge adds the members of o to r.
func (r Result) Merge(o Result) {
	r.Inputs.Union(o.Inputs)
	r.BibFiles.Union(o.BibFiles)
	r.Outputs.Union(o.Outputs)
	r.Volatile.Union(o.Volatile)
}

// Scanner extracts dependencies from LaTeX sources.
type Scanner struct {
	filter   *Filter
	maxDepth int
	logger   *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithFilter restricts Inputs and BibFiles to the project tree.
func WithFilter(f *Filter) Option { return func(s *Scanner) { s.filter = f } }

// WithMaxDepth bounds the recursion depth.
func WithMaxDepth(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.maxDepth = n
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option { return func(s *Scanner) { s.logger = l } }

// NewScanner builds a Scanner.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{maxDepth: DefaultMaxDepth, logger: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Scan scans texPath with its own directory as the reference context.
func (s *Scanner) Scan(texPath string) Result {
	return s.ScanWithRoot(texPath, "")
}

// ScanWithRoot scans texPath, interpreting references relative to root (the
// file's directory when root is empty). A missing file yields empty sets.
func (s *Scanner) ScanWithRoot(texPath, root string) Result {
	abs, err := filepath.Abs(texPath)
	if err != nil {
		return NewResult()
	}
	if root == "" {
		root = filepath.Dir(abs)
	} else if root, err = filepath.Abs(root); err != nil {
		return NewResult()
	}

	res := s.scanFile(abs, root, nil)
	out := NewResult()
	for p := range res.Inputs {
		if s.filter.Allow(p) {
			out.Inputs.Add(p)
		}
	}
	for p := range res.BibFiles {
		if s.filter.Allow(p) {
			out.BibFiles.Add(p)
		}
	}
	out.Outputs.Union(res.Outputs)
	out.Volatile.Union(res.Volatile)
	s.logger.Debug("Scanned LaTeX dependencies",
		logfields.Document(abs),
		slog.Int("inputs", len(out.Inputs)),
		slog.Int("bib_files", len(out.BibFiles)))
	return out
}

// scanFile returns the dependencies of one file and of everything it pulls
// in. ancestors is the chain of (file, root) keys above this call; it is
// never mutated, so each call owns its result.
func (s *Scanner) scanFile(path, root string, ancestors []string) Result {
	res := NewResult()
	key := path + "\x00" + root
	if slices.Contains(ancestors, key) {
		s.logger.Debug("Skipping recursive include", logfields.Path(path))
		return res
	}
	if len(ancestors) >= s.maxDepth {
		s.logger.Warn("Include depth limit reached", logfields.Path(path), slog.Int("max_depth", s.maxDepth))
		return res
	}
	fi, err := os.Stat(path)
	if err != nil || !fi.Mode().IsRegular() {
		return res
	}
	f, err := os.Open(path)
	if err != nil {
		s.logger.Debug("Cannot open LaTeX source", logfields.Path(path), logfields.Error(err))
		return res
	}
	src, err := ParseSource(f)
	_ = f.Close()
	if err != nil {
		s.logger.Debug("Cannot read LaTeX source", logfields.Path(path), logfields.Error(err))
		return res
	}

	for _, d := range src.Directives {
		p := resolve(root, d.Path)
		switch d.Kind {
		case DirectiveInput:
			res.Inputs.Add(p)
		case DirectiveOutput:
			res.Outputs.Add(p)
		case DirectiveVolatile:
			res.Volatile.Add(p)
		}
	}

	chain := append(slices.Clip(ancestors), key)
	for _, ref := range References(src.Text) {
		target := CleanupPath(ref.Target, ref.Kind.DefaultExt())
		if target == "" {
			s.logger.Debug("Skipping empty reference", logfields.Path(path), slog.String("command", ref.Kind.String()))
			continue
		}
		dir := root
		if ref.Kind == KindImport {
			dir = resolve(root, CleanupPath(ref.NewRoot, ""))
		}
		p := resolve(dir, target)
		if ref.Kind == KindBibliography {
			res.BibFiles.Add(p)
		} else {
			res.Inputs.Add(p)
		}
		if ref.Kind.recurses() {
			res.Merge(s.scanFile(p, dir, chain))
		}
	}
	return res
}
