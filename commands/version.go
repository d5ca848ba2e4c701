package commands

import (
	"fmt"
	"time"

	"github.com/activecm/iptrack/resources"
	"github.com/urfave/cli"
)

func init() {
	command := cli.Command{
		Name:  "version",
		Usage: "Show iptrack version and check for updates",
		Flags: []cli.Flag{
			configFlag,
		},
		Action: func(c *cli.Context) error {
			GetVersionPrinter()(c)
			return nil
		},
	}

	bootstrapCommands(command)
}

// GetVersionPrinter prints the version followed by the update notice, if
// any. It is also installed as the --version handler.
func GetVersionPrinter() func(*cli.Context) {
	return func(c *cli.Context) {
		fmt.Printf("%s version %s\n", c.App.Name, c.App.Version)
		res := resources.InitResources(c.String("config"))
		defer res.Close()
		fmt.Print(updateCheck(res, time.Now()))
	}
}
