package commands

import (
	stdErrors "errors"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/texbuild/internal/compile"
	"git.home.luguber.info/inful/texbuild/internal/config"
	"git.home.luguber.info/inful/texbuild/internal/errors"
)

// ErrReported signals a failure whose details were already written out.
var ErrReported = stdErrors.New("failure already reported")

// Global carries the output streams shared by subcommands.
type Global struct {
	Logger *slog.Logger
	Stdout io.Writer
	Stderr io.Writer
}

// NewGlobal returns a Global bound to the process streams.
func NewGlobal() *Global {
	return &Global{Logger: slog.Default(), Stdout: os.Stdout, Stderr: os.Stderr}
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path" default:"texbuild.yaml"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `name:"log-format" help:"Log output format (text|json)"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Compile  CompileCmd  `cmd:"" help:"Compile a LaTeX document until its aux file converges"`
	Scan     ScanCmd     `cmd:"" help:"List the files a LaTeX document depends on without compiling"`
	Diagnose DiagnoseCmd `cmd:"" help:"Extract the error from an existing .log or .blg file"`
	Watch    WatchCmd    `cmd:"" help:"Recompile whenever one of the document's inputs changes"`
	Verify   VerifyCmd   `cmd:"" help:"Check files against a previously written inventory"`
	Init     InitCmd     `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	configureLogging(level, config.NormalizeLogFormat(c.LogFormat))
	return nil
}

// loadConfig reads the config file and applies its logging section unless
// flags already decided.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	level := slogLevel(cfg.Logging.Level)
	if c.Verbose {
		level = slog.LevelDebug
	}
	format := cfg.Logging.Format
	if c.LogFormat != "" {
		format = config.NormalizeLogFormat(c.LogFormat)
	}
	configureLogging(level, format)
	return cfg, nil
}

func configureLogging(level slog.Level, format config.LogFormat) {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if format == config.LogFormatJSON {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

func slogLevel(l config.LogLevel) slog.Level {
	switch l {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ExitCode renders err on w and returns the process exit status. Tool and
// convergence failures print their diagnostic layout; anything else goes
// through the CLI error adapter.
func ExitCode(err error, verbose bool, w io.Writer) int {
	switch {
	case err == nil:
		return 0
	case stdErrors.Is(err, ErrReported):
		return 1
	case compile.PrintFailure(w, err):
		return 1
	default:
		return errors.NewCLIErrorAdapter(verbose, slog.Default()).Handle(err)
	}
}
