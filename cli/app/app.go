package app

import (
	"fmt"
	"os"
	"runtime"

	"github.com/lobsterdao/mintreveal/cli/reveal"
	"github.com/lobsterdao/mintreveal/cli/server"
	"github.com/lobsterdao/mintreveal/cli/tree"
	"github.com/lobsterdao/mintreveal/pkg/config"
	"github.com/urfave/cli"
)

func versionPrinter(c *cli.Context) {
	_, _ = fmt.Fprintf(c.App.Writer, "mintreveal\nVersion: %s\nGoVersion: %s\n",
		config.Version,
		runtime.Version(),
	)
}

// New creates a mintreveal instance of [cli.App] with all commands included.
func New() *cli.App {
	cli.VersionPrinter = versionPrinter
	ctl := cli.NewApp()
	ctl.Name = "mintreveal"
	ctl.Version = config.Version
	ctl.Usage = "Allocation claim and fair reveal engine"
	ctl.ErrWriter = os.Stdout

	ctl.Commands = append(ctl.Commands, server.NewCommands()...)
	ctl.Commands = append(ctl.Commands, tree.NewCommands()...)
	ctl.Commands = append(ctl.Commands, reveal.NewCommands()...)
	return ctl
}
