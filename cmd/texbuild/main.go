package main

import (
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/texbuild/cmd/texbuild/commands"
	"git.home.luguber.info/inful/texbuild/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("texbuild"),
		kong.Description("Compile LaTeX documents to a fixed point and explain why they fail."),
		kong.Vars{"version": version.String()},
		kong.UsageOnError(),
	)

	global := commands.NewGlobal()
	err := parser.Run(global, cli)
	os.Exit(commands.ExitCode(err, cli.Verbose, global.Stderr))
}
