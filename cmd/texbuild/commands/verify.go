package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/texbuild/internal/errors"
	"git.home.luguber.info/inful/texbuild/internal/inventory"
)

// VerifyCmd implements the 'verify' command.
type VerifyCmd struct {
	Inventory string `arg:"" type:"path" help:"Inventory file written by compile --inventory"`
}

func (v *VerifyCmd) Run(g *Global, _ *CLI) error {
	problems, err := inventory.Verify(context.Background(), v.Inventory)
	if err != nil {
		return errors.FileSystemError("read inventory", err)
	}
	for _, p := range problems {
		_, _ = fmt.Fprintln(g.Stdout, p)
	}
	if len(problems) > 0 {
		_, _ = fmt.Fprintf(g.Stdout, "%d file(s) changed since %s\n", len(problems), v.Inventory)
		return ErrReported
	}
	_, _ = fmt.Fprintf(g.Stdout, "All files match %s\n", v.Inventory)
	return nil
}
