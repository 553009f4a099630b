package commands

import (
	"encoding/json"

	"git.home.luguber.info/inful/texbuild/internal/compile"
	"git.home.luguber.info/inful/texbuild/internal/errors"
	"git.home.luguber.info/inful/texbuild/internal/texlog"
)

// DiagnoseCmd implements the 'diagnose' command. It exits non-zero when an
// error excerpt was found in the log.
type DiagnoseCmd struct {
	Log    string `arg:"" type:"path" help:"LaTeX .log or BibTeX .blg file"`
	Format string `short:"f" enum:"text,json" default:"text" help:"Output format (text|json)"`
}

func (d *DiagnoseCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	wrap := texlog.WrapOptions{Width: cfg.Diagnostics.Width(), Suffixes: cfg.Diagnostics.WrapSuffixes}
	rep, err := compile.Diagnose(d.Log, wrap)
	if err != nil {
		return errors.FileSystemError("read log", err)
	}
	if d.Format == "json" {
		enc := json.NewEncoder(g.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return err
		}
	} else {
		rep.Print(g.Stdout)
	}
	if rep.Isolated {
		return ErrReported
	}
	return nil
}
