package main

import (
	"os"
	"runtime"

	"github.com/activecm/iptrack/commands"
	"github.com/activecm/iptrack/config"
	"github.com/urfave/cli"
)

// Entry point of iptrack
func main() {
	app := cli.NewApp()
	app.Name = "iptrack"
	app.Usage = "Look up an IP address across several independent sources."

	// Change the version string with updates so that a quick help command will
	// let the testers know what version of iptrack they're on
	app.Version = config.Version

	// Without a subcommand the interactive destination menu is started
	app.Flags = commands.GlobalFlags()
	app.Action = commands.Interactive

	// Define commands used with this application
	app.Commands = commands.Commands()
	cli.VersionPrinter = commands.GetVersionPrinter()

	runtime.GOMAXPROCS(runtime.NumCPU())
	app.Run(os.Args)
}
