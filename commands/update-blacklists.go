package commands

import (
	"fmt"

	"github.com/activecm/iptrack/pkg/blacklist"
	"github.com/activecm/iptrack/resources"
	"github.com/urfave/cli"
)

func init() {
	command := cli.Command{
		Name:  "update-blacklists",
		Usage: "Download the configured blacklists into MongoDB",
		Flags: []cli.Flag{
			configFlag,
		},
		Action: updateBlacklists,
	}

	bootstrapCommands(command)
}

func updateBlacklists(c *cli.Context) error {
	res := resources.InitResources(c.String("config"))
	defer res.Close()

	if !res.Config.R.MongoDB.Enabled {
		return cli.NewExitError("MongoDB.ConnectionString must be set to store blacklists", -1)
	}

	fmt.Println("\t[-] Updating blacklists")
	if err := blacklist.UpdateLists(res.Config, res.Log); err != nil {
		return cli.NewExitError(err.Error(), -1)
	}
	fmt.Println("\t[+] Blacklists updated")
	return nil
}
