package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"git.home.luguber.info/inful/texbuild/internal/compile"
	"git.home.luguber.info/inful/texbuild/internal/config"
	"git.home.luguber.info/inful/texbuild/internal/errors"
	"git.home.luguber.info/inful/texbuild/internal/texdeps"
)

// ScanCmd implements the 'scan' command.
type ScanCmd struct {
	Document    string `arg:"" type:"path" help:"Main .tex file"`
	Format      string `short:"f" enum:"text,json" default:"text" help:"Output format (text|json)"`
	ProjectRoot string `name:"project-root" type:"path" help:"Only report inputs below this directory"`
}

type scanOutput struct {
	Inputs   []string `json:"inputs"`
	BibFiles []string `json:"bib_files"`
	Outputs  []string `json:"outputs"`
	Volatile []string `json:"volatile"`
}

func (s *ScanCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	cc, err := config.Resolve(cfg, config.Overrides{ProjectRoot: s.ProjectRoot}, nil)
	if err != nil {
		return err
	}
	doc, err := filepath.Abs(s.Document)
	if err != nil {
		return errors.FileSystemError("resolve document path", err)
	}
	filter, err := compile.ProjectFilter(cc, filepath.Dir(doc))
	if err != nil {
		return err
	}
	res := texdeps.NewScanner(
		texdeps.WithFilter(filter),
		texdeps.WithMaxDepth(cc.MaxDepth),
		texdeps.WithLogger(slog.Default()),
	).Scan(doc)

	out := scanOutput{
		Inputs:   res.Inputs.Sorted(),
		BibFiles: res.BibFiles.Sorted(),
		Outputs:  res.Outputs.Sorted(),
		Volatile: res.Volatile.Sorted(),
	}
	if s.Format == "json" {
		enc := json.NewEncoder(g.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	writeSection(g.Stdout, "inputs", out.Inputs)
	writeSection(g.Stdout, "bib_files", out.BibFiles)
	writeSection(g.Stdout, "outputs", out.Outputs)
	writeSection(g.Stdout, "volatile", out.Volatile)
	return nil
}

func writeSection(w io.Writer, name string, paths []string) {
	_, _ = fmt.Fprintf(w, "%s:\n", name)
	for _, p := range paths {
		_, _ = fmt.Fprintf(w, "  %s\n", p)
	}
}
