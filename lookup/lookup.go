package lookup

import (
	"context"
	"io"
	"time"

	"github.com/activecm/iptrack/address"
	"github.com/activecm/iptrack/datatypes/report"
	"github.com/activecm/iptrack/intel"
	"github.com/activecm/iptrack/pkg/blacklist"
	"github.com/activecm/iptrack/resources"
	log "github.com/sirupsen/logrus"
	"github.com/vbauerster/mpb"
	"github.com/vbauerster/mpb/decor"
)

type (
	// GeoSource produces a SourceResult for an address
	GeoSource interface {
		Name() string
		Query(ctx context.Context, addr address.Address) (report.SourceResult, error)
	}

	// TextSource produces a single string, such as a hostname or an AS
	TextSource interface {
		Lookup(ctx context.Context, addr address.Address) (string, error)
	}

	// WhoisSource produces a WHOIS record
	WhoisSource interface {
		Lookup(ctx context.Context, addr address.Address) (*report.WhoisRecord, error)
	}

	// TraceSource produces a path trace
	TraceSource interface {
		Trace(ctx context.Context, addr address.Address) (string, error)
	}

	// Aggregator runs every configured source for one address and merges
	// what succeeded. Nil sources are skipped.
	Aggregator struct {
		Sources    []GeoSource
		ReverseDNS TextSource
		ASN        TextSource
		Whois      WhoisSource
		Tracer     TraceSource
		Interfaces func() ([]report.Interface, error)

		// Progress receives a progress bar when non nil
		Progress io.Writer

		log *log.Logger
		now func() time.Time
	}
)

// Failure keys used for the enrichment lookups
const (
	StepReverseDNS = "reverse_dns"
	StepASN        = "asn"
	StepWhois      = "whois"
	StepTraceroute = "traceroute"
	StepInterfaces = "interfaces"
)

// NewAggregator wires the sources enabled in the configuration
func NewAggregator(res *resources.Resources) *Aggregator {
	conf := res.Config
	agg := &Aggregator{
		Interfaces: intel.LocalInterfaces,
		log:        res.Log,
		now:        time.Now,
	}

	agg.Sources = append(agg.Sources, intel.NewOfflineGeo(conf.S.GeoIP.DatabasePath))
	if conf.S.RemoteAPI.Enabled {
		agg.Sources = append(agg.Sources, intel.NewRemoteGeo(
			conf.S.RemoteAPI.URL,
			conf.S.RemoteAPI.UserAgent,
			conf.R.Timeouts.RemoteAPI,
			conf.S.RemoteAPI.RequestsPerMinute,
		))
	}
	if conf.S.Blacklisted.Enabled && res.DB != nil {
		agg.Sources = append(agg.Sources,
			blacklist.NewSource(blacklist.NewMongoRepository(res.DB, conf)))
	}
	if conf.S.ReverseDNS.Enabled {
		agg.ReverseDNS = intel.NewReverseDNS(conf.R.Timeouts.ReverseDNS)
	}
	if conf.S.ASN.Enabled {
		agg.ASN = intel.NewASN()
	}
	if conf.S.Whois.Enabled {
		agg.Whois = intel.NewWhois(conf.S.Whois.Server, conf.R.Timeouts.Whois, res.Log)
	}
	if conf.S.Traceroute.Enabled {
		agg.Tracer = intel.NewTracer(
			conf.S.Traceroute.Command,
			conf.S.Traceroute.MaxHops,
			conf.R.Timeouts.TraceroutePerHop,
		)
	}
	return agg
}

// Lookup queries every source for addr. Failures are logged and recorded
// in the report, they never abort the lookup. A non global address only
// gets the local interface listing.
func (a *Aggregator) Lookup(ctx context.Context, addr address.Address, label string) *report.Report {
	started := a.now()
	extra := report.Enrichment{Failures: make(map[string]string)}

	if !addr.IsGlobal() {
		if a.Interfaces != nil {
			ifaces, err := a.Interfaces()
			if err != nil {
				a.fail(extra.Failures, StepInterfaces, addr, err)
			}
			extra.Interfaces = ifaces
		}
		return report.Merge(addr, label, started, nil, extra)
	}

	tick, done := a.startProgress(a.steps())
	defer done()

	var results []report.SourceResult
	for _, src := range a.Sources {
		res, err := src.Query(ctx, addr)
		tick()
		if err != nil {
			a.fail(extra.Failures, src.Name(), addr, err)
			continue
		}
		results = append(results, res)
	}

	if a.ReverseDNS != nil {
		name, err := a.ReverseDNS.Lookup(ctx, addr)
		tick()
		if err != nil {
			a.fail(extra.Failures, StepReverseDNS, addr, err)
		}
		extra.ReverseDNS = name
	}

	if a.ASN != nil {
		asn, err := a.ASN.Lookup(ctx, addr)
		tick()
		if err != nil {
			a.fail(extra.Failures, StepASN, addr, err)
		}
		extra.ASN = asn
	}

	if a.Whois != nil {
		record, err := a.Whois.Lookup(ctx, addr)
		tick()
		if err != nil {
			a.fail(extra.Failures, StepWhois, addr, err)
		}
		extra.Whois = record
	}

	if a.Tracer != nil {
		trace, err := a.Tracer.Trace(ctx, addr)
		tick()
		if err != nil {
			a.fail(extra.Failures, StepTraceroute, addr, err)
		} else {
			extra.Traceroute = trace
		}
	}

	return report.Merge(addr, label, started, results, extra)
}

// Close releases the sources holding files or connections open
func (a *Aggregator) Close() error {
	var first error
	for _, src := range a.Sources {
		closer, ok := src.(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// steps counts the queries Lookup will run for a global address
func (a *Aggregator) steps() int {
	count := len(a.Sources)
	for _, present := range []bool{a.ReverseDNS != nil, a.ASN != nil, a.Whois != nil, a.Tracer != nil} {
		if present {
			count++
		}
	}
	return count
}

func (a *Aggregator) fail(failures map[string]string, source string, addr address.Address, err error) {
	failures[source] = err.Error()
	if a.log == nil {
		return
	}
	a.log.WithFields(log.Fields{
		"source": source,
		"ip":     addr.String(),
		"error":  err.Error(),
	}).Warn("source failed")
}

// startProgress returns a function advancing the bar by one step and a
// function waiting for the bar to finish rendering. Every step must tick
// or the wait never returns.
func (a *Aggregator) startProgress(total int) (func(), func()) {
	if a.Progress == nil || total == 0 {
		return func() {}, func() {}
	}

	p := mpb.New(mpb.WithWidth(20), mpb.WithOutput(a.Progress))
	bar := p.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name("[-] Querying sources:", decor.WC{W: 24, C: decor.DidentRight}),
			decor.CountersNoUnit(" %d / %d ", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(decor.Percentage()),
	)

	last := time.Now()
	tick := func() {
		bar.IncrBy(1, time.Since(last))
		last = time.Now()
	}
	return tick, p.Wait
}
