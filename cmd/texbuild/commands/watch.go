package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/texbuild/internal/compile"
	"git.home.luguber.info/inful/texbuild/internal/errors"
	"git.home.luguber.info/inful/texbuild/internal/logfields"
	"git.home.luguber.info/inful/texbuild/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	BuildFlags `embed:""`
	Debounce   time.Duration `default:"300ms" help:"Quiet period before a rebuild"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cc, err := w.resolve(root)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openSession(g, cc)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.close(context.Background()); cerr != nil {
			slog.Warn("Failed to close session", logfields.Error(cerr))
		}
	}()

	adapter := errors.NewCLIErrorAdapter(root.Verbose, slog.Default())
	build := func(ctx context.Context) ([]string, error) {
		res, err := s.driver.Compile(ctx, w.Document)
		if err != nil && ctx.Err() == nil && !compile.PrintFailure(g.Stderr, err) {
			_, _ = fmt.Fprintln(g.Stderr, adapter.FormatError(err))
		}
		if res == nil {
			return nil, err
		}
		return res.Inputs, err
	}
	slog.Info("Watching document", logfields.Document(w.Document), slog.Duration("debounce", w.Debounce))
	return watch.New(build, watch.WithDebounce(w.Debounce), watch.WithLogger(slog.Default())).Run(ctx)
}
