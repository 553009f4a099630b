package compile

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"git.home.luguber.info/inful/texbuild/internal/declare"
	"git.home.luguber.info/inful/texbuild/internal/errors"
	"git.home.luguber.info/inful/texbuild/internal/inventory"
	"git.home.luguber.info/inful/texbuild/internal/logfields"
	"git.home.luguber.info/inful/texbuild/internal/texlog"
)

// staleExtensions are removed before a build; remnants of an older run can
// make LaTeX fail in ways unrelated to the current sources.
var staleExtensions = []string{"log", "aux", "blg", "fls", "out", "toc", "nlo", "synctex", "synctex.gz"}

const interaction = "-interaction=errorstopmode"

func stageCleanup(_ context.Context, bs *buildState) error {
	exts := staleExtensions
	if bs.cfg.RunBibtex {
		exts = append(slices.Clip(exts), "bbl")
	}
	for _, ext := range exts {
		p := bs.doc.path(ext)
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return errors.FileSystemError("remove stale artifact", err).WithContext("path", p)
		}
	}
	return nil
}

func stageScan(ctx context.Context, bs *buildState) error {
	bs.scan = bs.scanner.Scan(bs.doc.tex)
	implicit := bs.scan.Inputs.Sorted()
	bib := bs.scan.BibFiles.Sorted()
	bbl := bs.doc.path("bbl")

	inputs := append([]string{bs.doc.tex}, implicit...)
	outputs := []string{bs.doc.path("aux"), bs.doc.path("pdf")}
	switch {
	case len(bib) == 0:
		bs.inventory = implicit
	case bs.cfg.RunBibtex:
		inputs = append(inputs, bib...)
		outputs = append(outputs, bbl)
		bs.inventory = slices.Concat(implicit, bib, []string{bbl})
	default:
		// The resolved bibliography is maintained by hand.
		inputs = append(inputs, bbl)
		bs.inventory = slices.Concat(implicit, []string{bbl})
	}
	outputs = append(outputs, bs.scan.Outputs.Sorted()...)
	if bs.inventoryPath != "" {
		outputs = append(outputs, bs.inventoryPath)
	}

	if err := bs.declare(ctx, declare.KindInput, inputs); err != nil {
		return err
	}
	if err := bs.declare(ctx, declare.KindOutput, outputs); err != nil {
		return err
	}
	return bs.declare(ctx, declare.KindVolatile, bs.scan.Volatile.Sorted())
}

func stageDraftBibtex(ctx context.Context, bs *buildState) error {
	code, err := bs.run(ctx, bs.cfg.LatexPath, interaction, "-draftmode", bs.doc.stem)
	if err != nil {
		return errors.LatexFailed(bs.doc.tex, err).WithContext("program", bs.cfg.LatexPath)
	}
	if code != 0 {
		return bs.latexFailure(StageDraftBibtex, code)
	}
	if err := bs.recordDigest(0); err != nil {
		return err
	}

	code, err = bs.run(ctx, bs.cfg.BibtexPath, bs.doc.stem)
	if err != nil {
		return errors.BibtexFailed(bs.doc.tex, err).WithContext("program", bs.cfg.BibtexPath)
	}
	if code != 0 {
		rep, perr := texlog.ParseBibtexLogFile(bs.doc.path("blg"))
		if perr != nil {
			return errors.FileSystemError("read bibtex log", perr)
		}
		return newToolError(bs.doc.tex, StageDraftBibtex, code, rep)
	}
	return nil
}

func stageConverge(ctx context.Context, bs *buildState) error {
	for i := 1; i <= bs.cfg.MaxRepetitions; i++ {
		code, err := bs.run(ctx, bs.cfg.LatexPath, interaction, "-recorder", bs.doc.stem)
		if err != nil {
			return errors.LatexFailed(bs.doc.tex, err).WithContext("program", bs.cfg.LatexPath)
		}
		bs.passes = i
		if code != 0 {
			return bs.latexFailure(StageConverge, code)
		}
		if err := bs.recordDigest(i); err != nil {
			return err
		}
		if converged(bs.history) {
			return nil
		}
	}
	return newConvergenceError(bs.doc.tex, bs.doc.path("aux"), bs.cfg.MaxRepetitions, bs.history)
}

func stageRecorderSweep(ctx context.Context, bs *buildState) error {
	f, err := os.Open(bs.doc.path("fls"))
	if os.IsNotExist(err) {
		return bs.sweepSiblings(ctx)
	}
	if err != nil {
		return errors.FileSystemError("open recorder file", err)
	}
	rec, err := parseRecorder(f, bs.doc.dir)
	_ = f.Close()
	if err != nil {
		return errors.FileSystemError("read recorder file", err)
	}

	keep := func(p string) bool {
		return !bs.declared.Has(p) && p != bs.inventoryPath && bs.filter.Allow(p)
	}
	var untracked, volatile []string
	for _, p := range rec.Outputs.Sorted() {
		if keep(p) {
			volatile = append(volatile, p)
		}
	}
	if fls := bs.doc.path("fls"); !bs.declared.Has(fls) && !slices.Contains(volatile, fls) {
		volatile = append(volatile, fls)
	}
	for _, p := range rec.Inputs.Sorted() {
		// Files the compiler both wrote and read back are its own by-products.
		if keep(p) && !rec.Outputs.Has(p) {
			untracked = append(untracked, p)
		}
	}
	if err := bs.declare(ctx, declare.KindUntracked, untracked); err != nil {
		return err
	}
	return bs.declare(ctx, declare.KindVolatile, volatile)
}

// sweepSiblings declares every <stem>.* file next to the document that is
// not declared yet as volatile. It stands in for the recorder file when the
// compiler did not write one.
func (bs *buildState) sweepSiblings(ctx context.Context) error {
	entries, err := os.ReadDir(bs.doc.dir)
	if err != nil {
		return errors.FileSystemError("list document directory", err)
	}
	var volatile []string
	prefix := bs.doc.stem + "."
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		p := filepath.Join(bs.doc.dir, e.Name())
		if !bs.declared.Has(p) && p != bs.inventoryPath {
			volatile = append(volatile, p)
		}
	}
	bs.logger.Debug("No recorder file, declared siblings as volatile", logfields.Count(len(volatile)))
	return bs.declare(ctx, declare.KindVolatile, volatile)
}

func stageInventory(ctx context.Context, bs *buildState) error {
	files := slices.Concat(bs.inventory, []string{bs.doc.tex, bs.doc.path("aux"), bs.doc.path("pdf")})
	if err := inventory.Write(ctx, bs.inventoryPath, files); err != nil {
		return errors.FileSystemError("write inventory", err).WithContext("path", bs.inventoryPath)
	}
	bs.logger.Info("Wrote inventory", logfields.Path(bs.inventoryPath), logfields.Count(len(files)))
	return nil
}

// run executes one tool in the document directory and records the pass.
func (bs *buildState) run(ctx context.Context, program string, args ...string) (int, error) {
	t0 := time.Now()
	code, err := bs.runner.Run(ctx, Invocation{Program: program, Args: args, Dir: bs.doc.dir})
	bs.recorder.ObservePass(filepath.Base(program), time.Since(t0), err == nil && code == 0)
	return code, err
}

func (bs *buildState) recordDigest(iteration int) error {
	d, err := digestFile(bs.doc.path("aux"))
	if err != nil {
		return errors.FileSystemError("hash aux file", err)
	}
	bs.history = append(bs.history, d)
	bs.logger.Info("Compiler pass complete", logfields.Iteration(iteration), logfields.Digest(d.Short()))
	return nil
}

func (bs *buildState) latexFailure(stage StageName, code int) error {
	rep, err := texlog.ParseLatexLogFile(bs.doc.path("log"), bs.wrap)
	if err != nil {
		return errors.FileSystemError("read compiler log", err)
	}
	return newToolError(bs.doc.tex, stage, code, rep)
}
