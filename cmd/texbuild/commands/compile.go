package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// CompileCmd implements the 'compile' command.
type CompileCmd struct {
	BuildFlags `embed:""`
}

func (c *CompileCmd) Run(g *Global, root *CLI) error {
	cc, err := c.resolve(root)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openSession(g, cc)
	if err != nil {
		return err
	}
	_, buildErr := s.driver.Compile(ctx, c.Document)
	closeErr := s.close(context.Background())
	if buildErr != nil {
		return buildErr
	}
	return closeErr
}
