package commands

import (
	"encoding/csv"
	"io"
	"os"
	"strings"
	"time"

	"github.com/activecm/iptrack/datatypes/report"
	"github.com/activecm/iptrack/reporting"
	"github.com/activecm/iptrack/resources"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

func init() {
	command := cli.Command{
		Name:  "show-history",
		Usage: "Print the lookups recorded in the log",
		Flags: []cli.Flag{
			humanFlag,
			limitFlag,
			configFlag,
		},
		Action: showHistory,
	}

	bootstrapCommands(command)
}

func showHistory(c *cli.Context) error {
	res := resources.InitResources(c.String("config"))
	defer res.Close()

	book := reporting.NewLogbook(res.Config.S.Output.Directory, res.Config.S.Output.LogFile)
	entries, skipped, err := reporting.ReadLog(book.Path())
	if os.IsNotExist(err) {
		return cli.NewExitError("No lookups were found in "+book.Path(), -1)
	}
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}
	if skipped > 0 {
		res.Log.WithFields(log.Fields{
			"file":    book.Path(),
			"skipped": skipped,
		}).Warn("unreadable lookup log entries")
	}

	if limit := c.Int("limit"); limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	if len(entries) == 0 {
		return cli.NewExitError("No lookups were found in "+book.Path(), -1)
	}

	if c.Bool("human-readable") {
		err = showHistoryHuman(os.Stdout, entries, time.Now())
	} else {
		err = showHistoryRaw(os.Stdout, entries)
	}
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}
	return nil
}

func showHistoryRaw(w io.Writer, entries []report.LogEntry) error {
	csvWriter := csv.NewWriter(w)
	csvWriter.Write([]string{"ID", "Timestamp", "IP", "Destination", "Location", "Sources", "Reverse DNS", "ASN"})
	for _, entry := range entries {
		csvWriter.Write(historyRow(entry, entry.Timestamp.UTC().Format(time.RFC3339)))
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

func showHistoryHuman(w io.Writer, entries []report.LogEntry, now time.Time) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "When", "IP", "Destination", "Location", "Sources", "Reverse DNS", "ASN"})
	for _, entry := range entries {
		row := historyRow(entry, humanize.RelTime(entry.Timestamp, now, "ago", "from now"))
		// the full uuid is noise in a table
		if len(row[0]) > 8 {
			row[0] = row[0][:8]
		}
		table.Append(row)
	}
	table.Render()
	return nil
}

func historyRow(entry report.LogEntry, when string) []string {
	rep := entry.Report
	var names []string
	for _, src := range rep.Sources {
		names = append(names, src.Source)
	}
	return []string{
		entry.ID,
		when,
		rep.Address.String(),
		rep.Label,
		historyLocation(rep),
		strings.Join(names, " "),
		rep.ReverseDNS,
		rep.ASN,
	}
}

// historyLocation is the city and country of the first source naming one
func historyLocation(rep *report.Report) string {
	if !rep.Address.IsGlobal() {
		return rep.Address.Scope().String()
	}
	for _, src := range rep.Sources {
		country, _ := src.String(report.FieldCountry)
		city, _ := src.String(report.FieldCity)
		switch {
		case city != "" && country != "":
			return city + ", " + country
		case country != "":
			return country
		}
	}
	return ""
}
