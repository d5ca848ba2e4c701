package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/activecm/iptrack/database"
	"github.com/activecm/iptrack/intel"
	"github.com/activecm/iptrack/lookup"
	"github.com/activecm/iptrack/menu"
	"github.com/activecm/iptrack/printing"
	"github.com/activecm/iptrack/reporting"
	"github.com/activecm/iptrack/resources"
	"github.com/skratchdot/open-golang/open"
	"github.com/urfave/cli"
	"golang.org/x/term"
)

const geoLiteHint = `For offline geolocation, download the GeoLite2 City database:
https://dev.maxmind.com/geoip/geolite2-free-geolocation-data
and point GeoIP.DatabasePath at the .mmdb file (currently %s)
`

// Interactive runs the destination menu until the user exits
func Interactive(c *cli.Context) error {
	res := resources.InitResources(c.String("config"))
	defer res.Close()
	conf := res.Config

	noColor := conf.S.Display.NoColor || c.Bool("no-color") ||
		!term.IsTerminal(int(os.Stdout.Fd()))
	style := printing.NewStyle(noColor)

	geo := intel.NewOfflineGeo(conf.S.GeoIP.DatabasePath)
	if !geo.Available() {
		fmt.Fprintf(os.Stdout, style.Warning(geoLiteHint), conf.S.GeoIP.DatabasePath)
	}
	geo.Close()

	agg := lookup.NewAggregator(res)
	defer agg.Close()
	if conf.S.Display.Progress && term.IsTerminal(int(os.Stderr.Fd())) {
		agg.Progress = os.Stderr
	}

	m := &menu.Menu{
		Destinations: conf.S.Lookup.Destinations,
		Lookup:       agg,
		PublicIP: intel.NewPublicIP(
			conf.S.PublicIP.Providers,
			conf.R.Timeouts.PublicIP,
			conf.S.RemoteAPI.UserAgent,
		),
		Logbook:     reporting.NewLogbook(conf.S.Output.Directory, conf.S.Output.LogFile),
		ExportDir:   conf.S.Output.Directory,
		MapTemplate: conf.S.Output.MapProvider,
		Style:       style,
		ShowBanner:  conf.S.Display.ShowBanner,
		Version:     conf.S.Version,
		OpenURL:     open.Run,
		Log:         res.Log,
	}

	if conf.S.MongoDB.MirrorReports && res.DB != nil {
		mirror, err := database.NewReportMirror(res.DB, conf.T.Reports.ReportTable, res.Log)
		if err != nil {
			fmt.Fprintf(os.Stdout, "\t[!] Reports will not be mirrored: %s\n", err.Error())
		} else {
			m.Mirror = mirror
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := m.Run(ctx, os.Stdin, os.Stdout); err != nil {
		return cli.NewExitError(err.Error(), -1)
	}
	return nil
}
