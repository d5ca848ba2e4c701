package commands

import (
	"github.com/urfave/cli"
)

var (
	// allCommands is filled by the init function of every command file
	allCommands []cli.Command

	configFlag = cli.StringFlag{
		Name:  "config, c",
		Usage: "Use a given `CONFIG_FILE` when running this command",
		Value: "",
	}

	humanFlag = cli.BoolFlag{
		Name:  "human-readable, H",
		Usage: "Print a report instead of csv",
	}

	limitFlag = cli.IntFlag{
		Name:  "limit, l",
		Usage: "Only print the latest `N` lookups, 0 prints every lookup",
		Value: 0,
	}

	noColorFlag = cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable colored output",
	}
)

// Commands provides all of the defined commands to the front end
func Commands() []cli.Command {
	return allCommands
}

// GlobalFlags are the flags accepted by the interactive default action
func GlobalFlags() []cli.Flag {
	return []cli.Flag{configFlag, noColorFlag}
}

// bootstrapCommands simply adds a given command to the allCommands array
func bootstrapCommands(commands ...cli.Command) {
	for _, command := range commands {
		allCommands = append(allCommands, command)
	}
}
