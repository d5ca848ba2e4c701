package report

import (
	"time"

	"github.com/activecm/iptrack/address"
)

// Merge assembles a Report from whatever the sources returned. Results
// are copied in the order given. Sources that disagree are kept side by
// side under their own source name.
//
// A non global address never carries source results or remote
// enrichment, only the local interface listing.
func Merge(addr address.Address, label string, at time.Time, results []SourceResult, extra Enrichment) *Report {
	rep := &Report{
		Address:   addr,
		Label:     label,
		Timestamp: at,
		Sources:   []SourceResult{},
	}

	if len(extra.Failures) > 0 {
		rep.Failures = make(map[string]string, len(extra.Failures))
		for name, reason := range extra.Failures {
			rep.Failures[name] = reason
		}
	}

	if !addr.IsGlobal() {
		rep.Interfaces = append([]Interface(nil), extra.Interfaces...)
		return rep
	}

	for _, res := range results {
		rep.Sources = append(rep.Sources, copySource(res))
	}
	rep.ReverseDNS = extra.ReverseDNS
	rep.ASN = extra.ASN
	if !extra.Whois.IsEmpty() {
		whois := *extra.Whois
		rep.Whois = &whois
	}
	rep.Traceroute = extra.Traceroute
	return rep
}

func copySource(src SourceResult) SourceResult {
	fields := make(map[string]interface{}, len(src.Fields))
	for key, val := range src.Fields {
		fields[key] = val
	}
	return SourceResult{Source: src.Source, Fields: fields}
}
