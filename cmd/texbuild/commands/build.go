package commands

import (
	"context"
	stdErrors "errors"
	"log/slog"

	"git.home.luguber.info/inful/texbuild/internal/compile"
	"git.home.luguber.info/inful/texbuild/internal/config"
	"git.home.luguber.info/inful/texbuild/internal/declare"
	"git.home.luguber.info/inful/texbuild/internal/errors"
	"git.home.luguber.info/inful/texbuild/internal/metrics"
)

// BuildFlags are shared by every command that runs the compiler.
type BuildFlags struct {
	Document        string `arg:"" type:"path" help:"Main .tex file"`
	MaxRepetitions  int    `short:"m" name:"max-repetitions" help:"Maximum compiler passes before giving up (default 5)"`
	Latex           string `help:"LaTeX executable (env TEXBUILD_LATEX)"`
	Bibtex          string `help:"BibTeX executable (env TEXBUILD_BIBTEX)"`
	RunBibtex       bool   `short:"b" name:"run-bibtex" help:"Run BibTeX after a draft pass"`
	Inventory       string `short:"i" help:"Write an inventory of every input to this file"`
	ProjectRoot     string `name:"project-root" type:"path" help:"Only track inputs below this directory"`
	Declare         string `help:"Declaration sink (none|stdout|json|nats)"`
	MetricsTextfile string `name:"metrics-textfile" help:"Write Prometheus metrics to this file on exit"`
}

func (b *BuildFlags) overrides() config.Overrides {
	return config.Overrides{
		Latex:          b.Latex,
		Bibtex:         b.Bibtex,
		RunBibtex:      b.RunBibtex,
		MaxRepetitions: b.MaxRepetitions,
		Inventory:      b.Inventory,
		ProjectRoot:    b.ProjectRoot,
		Declare:        b.Declare,
		MetricsFile:    b.MetricsTextfile,
	}
}

func (b *BuildFlags) resolve(root *CLI) (config.CompileConfig, error) {
	cfg, err := root.loadConfig()
	if err != nil {
		return config.CompileConfig{}, err
	}
	return config.Resolve(cfg, b.overrides(), nil)
}

// session owns the collaborators of one invocation: the declaration sink and
// the metrics recorder outlive individual builds in watch mode.
type session struct {
	driver      *compile.Driver
	sink        declare.Sink
	prom        *metrics.PrometheusRecorder
	metricsFile string
}

func openSession(g *Global, cc config.CompileConfig) (*session, error) {
	sink, err := declare.Open(cc.Declare, g.Stdout)
	if err != nil {
		return nil, errors.DeclareFailed(string(cc.Declare.Sink), err)
	}
	s := &session{sink: sink, metricsFile: cc.MetricsFile}
	var rec metrics.Recorder = metrics.NoopRecorder{}
	if cc.MetricsFile != "" {
		s.prom = metrics.NewPrometheusRecorder(nil)
		rec = s.prom
	}
	s.driver = compile.NewDriver(cc,
		compile.WithSink(sink),
		compile.WithRecorder(rec),
		compile.WithLogger(slog.Default()),
	)
	return s, nil
}

func (s *session) close(ctx context.Context) error {
	var errs []error
	if err := s.sink.Close(ctx); err != nil {
		errs = append(errs, errors.DeclareFailed("close", err))
	}
	if s.prom != nil {
		if err := s.prom.WriteTextfile(s.metricsFile); err != nil {
			errs = append(errs, errors.FileSystemError("write metrics textfile", err))
		}
	}
	return stdErrors.Join(errs...)
}
