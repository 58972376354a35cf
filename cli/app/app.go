/*
Package app assembles the hypertrie command line application.
*/
package app

import (
	"fmt"
	"os"
	"runtime"

	"github.com/nspcc-dev/hypertrie/cli/load"
	"github.com/nspcc-dev/hypertrie/cli/query"
	"github.com/nspcc-dev/hypertrie/pkg/config"
	"github.com/urfave/cli"
)

const description = `Loads delimited files of unsigned integer tuples into an in-memory
   hypertrie and runs slice and diagonal join queries over them.`

func versionPrinter(c *cli.Context) {
	_, _ = fmt.Fprintf(c.App.Writer, "Hypertrie\nVersion: %s\nGoVersion: %s\nMaxDepth: %d\n",
		config.Version,
		runtime.Version(),
		config.MaxSupportedDepth,
	)
}

// New creates a hypertrie [cli.App] with load and query commands.
func New() *cli.App {
	cli.VersionPrinter = versionPrinter
	ctl := cli.NewApp()
	ctl.Name = "hypertrie"
	ctl.Version = config.Version
	ctl.Usage = "Hypertrie relation loader and query tool"
	ctl.Description = description
	ctl.ErrWriter = os.Stdout
	ctl.Commands = append(load.NewCommands(), query.NewCommands()...)
	return ctl
}
