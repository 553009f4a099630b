// Package compile drives a LaTeX document to a fixed point: it runs the
// compiler, and BibTeX when needed, until the .aux file stops changing, and
// turns every failure into a single diagnostic report.
package compile

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/texbuild/internal/config"
	"git.home.luguber.info/inful/texbuild/internal/declare"
	"git.home.luguber.info/inful/texbuild/internal/errors"
	"git.home.luguber.info/inful/texbuild/internal/logfields"
	"git.home.luguber.info/inful/texbuild/internal/metrics"
	"git.home.luguber.info/inful/texbuild/internal/texdeps"
	"git.home.luguber.info/inful/texbuild/internal/texlog"
	"git.home.luguber.info/inful/texbuild/internal/util/sets"
)

// Result summarizes a finished build.
type Result struct {
	BuildID  string
	Document string
	// Passes counts compiler runs in the convergence loop, excluding the draft pass.
	Passes  int
	History []Digest
	// Inputs lists every path declared as an input, sorted.
	Inputs   []string
	Duration time.Duration
}

// Driver compiles documents. It is safe to reuse across builds.
type Driver struct {
	cfg      config.CompileConfig
	runner   Runner
	sink     declare.Sink
	recorder metrics.Recorder
	logger   *slog.Logger
}

// Option configures a Driver.
type Option func(*Driver)

func WithRunner(r Runner) Option             { return func(d *Driver) { d.runner = r } }
func WithSink(s declare.Sink) Option         { return func(d *Driver) { d.sink = s } }
func WithRecorder(r metrics.Recorder) Option { return func(d *Driver) { d.recorder = r } }
func WithLogger(l *slog.Logger) Option       { return func(d *Driver) { d.logger = l } }

// NewDriver returns a driver for cfg. Without options it runs real tools,
// discards declarations and records no metrics.
func NewDriver(cfg config.CompileConfig, opts ...Option) *Driver {
	d := &Driver{
		cfg:      cfg,
		sink:     declare.Nop{},
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(d)
	}
	if d.runner == nil {
		d.runner = ExecRunner{Logger: d.logger}
	}
	return d
}

// document names the files of one build. All paths are absolute.
type document struct {
	tex  string
	dir  string
	stem string
}

func newDocument(texPath string) (document, error) {
	abs, err := filepath.Abs(texPath)
	if err != nil {
		return document{}, errors.FileSystemError("resolve document path", err)
	}
	base := filepath.Base(abs)
	if filepath.Ext(base) != ".tex" {
		return document{}, errors.ValidationFailed("document", "the LaTeX source must have extension .tex: "+texPath)
	}
	return document{tex: abs, dir: filepath.Dir(abs), stem: strings.TrimSuffix(base, ".tex")}, nil
}

func (d document) path(ext string) string { return filepath.Join(d.dir, d.stem+"."+ext) }

// buildState carries everything the stages of one build share.
type buildState struct {
	cfg      config.CompileConfig
	doc      document
	runner   Runner
	sink     declare.Sink
	recorder metrics.Recorder
	logger   *slog.Logger
	filter   *texdeps.Filter
	scanner  *texdeps.Scanner
	wrap     texlog.WrapOptions

	inventoryPath string
	scan          texdeps.Result
	declared      sets.Set[string]
	inputs        sets.Set[string]
	inventory     []string
	history       []Digest
	passes        int
}

func (bs *buildState) needsBibtex() bool {
	return bs.cfg.RunBibtex && len(bs.scan.BibFiles) > 0
}

// declare forwards one batch to the sink and remembers its paths, so later
// stages do not declare them twice.
func (bs *buildState) declare(ctx context.Context, kind declare.Kind, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	bs.declared.Add(paths...)
	if kind == declare.KindInput || kind == declare.KindUntracked {
		bs.inputs.Add(paths...)
	}
	err := bs.sink.Declare(ctx, declare.Declaration{Document: bs.doc.tex, Kind: kind, Paths: paths})
	if err != nil {
		return errors.DeclareFailed(string(kind), err)
	}
	bs.logger.Debug("Declared paths", slog.String("kind", string(kind)), logfields.Count(len(paths)))
	return nil
}

// Compile builds the document at texPath. On failure the returned error
// wraps a *ToolError or a *ConvergenceError when the tools are at fault; use
// PrintFailure to render it. The Result is non-nil whenever the document
// path was valid.
func (d *Driver) Compile(ctx context.Context, texPath string) (*Result, error) {
	doc, err := newDocument(texPath)
	if err != nil {
		return nil, err
	}
	buildID := uuid.NewString()
	logger := d.logger.With(logfields.BuildID(buildID), logfields.Document(doc.tex))

	filter, err := d.filterFor(doc)
	if err != nil {
		return nil, err
	}
	bs := &buildState{
		cfg:      d.cfg,
		doc:      doc,
		runner:   d.runner,
		sink:     d.sink,
		recorder: d.recorder,
		logger:   logger,
		filter:   filter,
		scanner: texdeps.NewScanner(
			texdeps.WithFilter(filter),
			texdeps.WithMaxDepth(d.cfg.MaxDepth),
			texdeps.WithLogger(logger),
		),
		wrap:     texlog.WrapOptions{Width: d.cfg.WrapWidth, Suffixes: d.cfg.WrapSuffixes},
		declared: sets.New[string](),
		inputs:   sets.New[string](),
	}
	if d.cfg.InventoryPath != "" {
		if bs.inventoryPath, err = filepath.Abs(d.cfg.InventoryPath); err != nil {
			return nil, errors.FileSystemError("resolve inventory path", err)
		}
	}

	start := time.Now()
	logger.Info("Build started", logfields.Program(d.cfg.LatexPath))
	err = runStages(ctx, bs, defaultStages())
	dur := time.Since(start)
	d.recorder.ObserveBuildDuration(dur)
	d.recorder.IncBuildOutcome(outcomeFor(err))

	res := &Result{
		BuildID:  buildID,
		Document: doc.tex,
		Passes:   bs.passes,
		History:  append([]Digest(nil), bs.history...),
		Inputs:   bs.inputs.Sorted(),
		Duration: dur,
	}
	if err != nil {
		logger.Error("Build failed", logfields.Error(err), logfields.DurationMS(float64(dur.Milliseconds())))
		return res, err
	}
	d.recorder.SetConvergencePasses(bs.passes)
	logger.Info("Build complete",
		slog.Int("passes", bs.passes),
		logfields.DurationMS(float64(dur.Milliseconds())))
	return res, nil
}

func (d *Driver) filterFor(doc document) (*texdeps.Filter, error) {
	return ProjectFilter(d.cfg, doc.dir)
}

// ProjectFilter builds the project-tree filter for a document in docDir.
// Without an explicit root, the enclosing git worktree is used, then the
// working directory when it contains the document, then docDir itself.
func ProjectFilter(cfg config.CompileConfig, docDir string) (*texdeps.Filter, error) {
	root := cfg.ProjectRoot
	if root == "" {
		root = texdeps.DetectProjectRoot(docDir, fallbackRoot(docDir))
	}
	f, err := texdeps.NewFilter(root, cfg.Exclude)
	if err != nil {
		return nil, errors.ValidationFailed("scan.exclude", err.Error())
	}
	return f, nil
}

func fallbackRoot(docDir string) string {
	wd, err := os.Getwd()
	if err != nil {
		return docDir
	}
	rel, err := filepath.Rel(wd, docDir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return docDir
	}
	return wd
}

func outcomeFor(err error) metrics.BuildOutcomeLabel {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	if stdErrors.Is(err, context.Canceled) || stdErrors.Is(err, context.DeadlineExceeded) {
		return metrics.OutcomeCanceled
	}
	switch errors.GetCategory(err) {
	case errors.CategoryLatex:
		return metrics.OutcomeLatexFailed
	case errors.CategoryBibtex:
		return metrics.OutcomeBibtexFailed
	case errors.CategoryConvergence:
		return metrics.OutcomeNotConverged
	default:
		return metrics.OutcomeFailed
	}
}

// Diagnose parses an existing log file, choosing the BibTeX parser for .blg
// files and the LaTeX parser otherwise.
func Diagnose(path string, wrap texlog.WrapOptions) (texlog.ErrorReport, error) {
	if strings.EqualFold(filepath.Ext(path), ".blg") {
		return texlog.ParseBibtexLogFile(path)
	}
	return texlog.ParseLatexLogFile(path, wrap)
}
