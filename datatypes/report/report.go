package report

import (
	"sort"
	"time"

	"github.com/activecm/iptrack/address"
)

// Field names shared by the geolocation sources. Each source fills the
// subset it knows about.
const (
	FieldCountry     = "country"
	FieldCountryCode = "country_code"
	FieldRegion      = "region"
	FieldCity        = "city"
	FieldPostal      = "postal"
	FieldLatitude    = "latitude"
	FieldLongitude   = "longitude"
	FieldTimezone    = "timezone"
	FieldAccuracy    = "accuracy_radius"
	FieldISP         = "isp"
	FieldOrg         = "org"
	FieldAS          = "as"
	FieldReverse     = "reverse"
	FieldBlacklists  = "lists"
	FieldListed      = "listed"
)

// FieldOrder is the order fields are displayed in. Unknown fields follow
// in lexical order.
var FieldOrder = []string{
	FieldCountry, FieldCountryCode, FieldRegion, FieldCity, FieldPostal,
	FieldLatitude, FieldLongitude, FieldTimezone, FieldAccuracy,
	FieldISP, FieldOrg, FieldAS, FieldReverse, FieldListed, FieldBlacklists,
}

type (
	// SourceResult holds the findings of a single source. It is never
	// modified once it has been handed to a Report.
	SourceResult struct {
		// Source identifies the provider, e.g. "GeoIP2" or "IP-API"
		Source string `json:"source"`

		// Fields maps a field name to the value the source reported
		Fields map[string]interface{} `json:"fields"`
	}

	// Interface describes one local network interface address
	Interface struct {
		Name      string `json:"interface"`
		IP        string `json:"ip"`
		Netmask   string `json:"netmask"`
		Broadcast string `json:"broadcast"`
		Type      string `json:"type"`
	}

	// Enrichment carries the scalar results gathered next to the
	// geolocation sources. Empty values mean the lookup failed.
	Enrichment struct {
		ReverseDNS string
		ASN        string
		Whois      *WhoisRecord
		Traceroute string
		Interfaces []Interface
		Failures   map[string]string
	}

	// Report is the merged result of one lookup
	Report struct {
		// Address is the queried address
		Address address.Address `json:"address"`

		// Label is the destination chosen from the menu
		Label string `json:"label"`

		// Timestamp is when the lookup started
		Timestamp time.Time `json:"timestamp"`

		// Sources are kept in completion order
		Sources []SourceResult `json:"sources"`

		ReverseDNS string       `json:"reverse_dns,omitempty"`
		ASN        string       `json:"asn,omitempty"`
		Whois      *WhoisRecord `json:"whois,omitempty"`
		Traceroute string       `json:"traceroute,omitempty"`

		// Interfaces is only filled for non global addresses
		Interfaces []Interface `json:"interfaces,omitempty"`

		// Failures maps a source name to the reason it is absent
		Failures map[string]string `json:"failures,omitempty"`
	}

	// LogEntry is a Report captured into the append only log
	LogEntry struct {
		ID        string    `json:"id"`
		Timestamp time.Time `json:"timestamp"`
		Report    *Report   `json:"data"`
	}
)

// NewSourceResult copies fields into a new SourceResult, dropping empty
// strings and nil values so absent fields stay absent.
func NewSourceResult(source string, fields map[string]interface{}) SourceResult {
	out := SourceResult{Source: source, Fields: make(map[string]interface{}, len(fields))}
	for key, val := range fields {
		switch v := val.(type) {
		case nil:
			continue
		case string:
			if v == "" {
				continue
			}
		}
		out.Fields[key] = val
	}
	return out
}

// String returns a field as text, ok is false when the field is absent
func (s SourceResult) String(field string) (string, bool) {
	val, ok := s.Fields[field]
	if !ok {
		return "", false
	}
	str, ok := val.(string)
	return str, ok
}

// Coordinates returns the latitude/longitude pair of the source if it
// reported both values.
func (s SourceResult) Coordinates() (lat float64, lon float64, ok bool) {
	lat, latOK := toFloat(s.Fields[FieldLatitude])
	lon, lonOK := toFloat(s.Fields[FieldLongitude])
	return lat, lon, latOK && lonOK
}

// Keys returns the field names in display order
func (s SourceResult) Keys() []string {
	var keys []string
	seen := make(map[string]bool, len(s.Fields))
	for _, key := range FieldOrder {
		if _, ok := s.Fields[key]; ok {
			keys = append(keys, key)
			seen[key] = true
		}
	}
	var rest []string
	for key := range s.Fields {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// FirstCoordinates returns the first coordinate pair in source insertion
// order.
func (r *Report) FirstCoordinates() (lat float64, lon float64, ok bool) {
	for _, src := range r.Sources {
		if lat, lon, ok := src.Coordinates(); ok {
			return lat, lon, true
		}
	}
	return 0, 0, false
}

// Source returns the result reported by the named source
func (r *Report) Source(name string) (SourceResult, bool) {
	for _, src := range r.Sources {
		if src.Source == name {
			return src, true
		}
	}
	return SourceResult{}, false
}

func toFloat(val interface{}) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
