package config

import (
	"strconv"

	"git.home.luguber.info/inful/texbuild/internal/errors"
)

// CompileConfig is the fully resolved configuration of one build. It is
// computed once at the top of an invocation and passed down by value, so no
// code below the CLI consults the process environment.
type CompileConfig struct {
	LatexPath      string
	BibtexPath     string
	RunBibtex      bool
	MaxRepetitions int
	InventoryPath  string

	ProjectRoot string
	Exclude     []string
	MaxDepth    int

	WrapWidth    int
	WrapSuffixes []string

	MetricsFile string
	Declare     DeclareConfig
}

// Overrides carries CLI flag values. Zero values mean "not given".
type Overrides struct {
	Latex          string
	Bibtex         string
	RunBibtex      bool
	MaxRepetitions int
	Inventory      string
	ProjectRoot    string
	Declare        string
	MetricsFile    string
}

// Resolve merges flags, environment, config file and defaults, in that order
// of precedence, and validates the result.
func Resolve(cfg *Config, o Overrides, getenv Getenv) (CompileConfig, error) {
	if cfg == nil {
		cfg = Default()
	}
	cc := CompileConfig{
		LatexPath:      pick(o.Latex, firstEnv(getenv, EnvLatex, EnvLatexLegacy), cfg.Latex.Executable, DefaultLatex),
		BibtexPath:     pick(o.Bibtex, firstEnv(getenv, EnvBibtex, EnvBibtexLegacy), cfg.Bibtex.Executable, DefaultBibtex),
		RunBibtex:      o.RunBibtex || cfg.Bibtex.Run,
		MaxRepetitions: cfg.Latex.MaxRepetitions,
		InventoryPath:  pick(o.Inventory, cfg.Inventory),
		ProjectRoot:    pick(o.ProjectRoot, cfg.Scan.ProjectRoot),
		Exclude:        append([]string(nil), cfg.Scan.Exclude...),
		MaxDepth:       cfg.Scan.MaxDepth,
		WrapWidth:      cfg.Diagnostics.Width(),
		WrapSuffixes:   append([]string(nil), cfg.Diagnostics.WrapSuffixes...),
		MetricsFile:    pick(o.MetricsFile, cfg.Metrics.Textfile),
		Declare:        cfg.Declare,
	}
	if o.MaxRepetitions != 0 {
		cc.MaxRepetitions = o.MaxRepetitions
	}
	if o.Declare != "" {
		sink, err := ParseDeclareSink(o.Declare)
		if err != nil {
			return CompileConfig{}, errors.ValidationFailed("declare", err.Error())
		}
		cc.Declare.Sink = sink
	}
	if err := cc.Validate(); err != nil {
		return CompileConfig{}, err
	}
	return cc, nil
}

// Validate checks invariants the driver relies on.
func (c CompileConfig) Validate() error {
	if c.MaxRepetitions < 1 {
		return errors.ValidationFailed("max_repetitions", "must be at least 1, got "+strconv.Itoa(c.MaxRepetitions))
	}
	if c.LatexPath == "" {
		return errors.ValidationFailed("latex", "executable must not be empty")
	}
	if c.RunBibtex && c.BibtexPath == "" {
		return errors.ValidationFailed("bibtex", "executable must not be empty")
	}
	if c.WrapWidth < 0 {
		return errors.ValidationFailed("wrap_width", "must not be negative")
	}
	if c.MaxDepth < 1 {
		return errors.ValidationFailed("max_depth", "must be at least 1")
	}
	if c.Declare.Sink == DeclareNATS && c.Declare.NATSURL == "" {
		return errors.ValidationFailed("declare.nats_url", "required for the nats sink")
	}
	return nil
}

func pick(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
