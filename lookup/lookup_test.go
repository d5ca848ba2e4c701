package lookup

import (
	"context"
	"testing"
	"time"

	"github.com/activecm/iptrack/address"
	"github.com/activecm/iptrack/datatypes/report"
	"github.com/activecm/iptrack/intel"
	"github.com/activecm/iptrack/resources"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGeo struct {
	name   string
	fields map[string]interface{}
	err    error
	calls  int
}

func (f *fakeGeo) Name() string { return f.name }

func (f *fakeGeo) Query(ctx context.Context, addr address.Address) (report.SourceResult, error) {
	f.calls++
	if f.err != nil {
		return report.SourceResult{}, f.err
	}
	return report.NewSourceResult(f.name, f.fields), nil
}

type fakeText struct {
	text string
	err  error
}

func (f fakeText) Lookup(ctx context.Context, addr address.Address) (string, error) {
	return f.text, f.err
}

type fakeWhois struct {
	record *report.WhoisRecord
	err    error
}

func (f fakeWhois) Lookup(ctx context.Context, addr address.Address) (*report.WhoisRecord, error) {
	return f.record, f.err
}

type fakeTracer struct {
	out string
	err error
}

func (f fakeTracer) Trace(ctx context.Context, addr address.Address) (string, error) {
	return f.out, f.err
}

var fixedNow = time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)

func newTestAggregator(t *testing.T) (*Aggregator, *test.Hook) {
	logger, hook := test.NewNullLogger()
	return &Aggregator{log: logger, now: func() time.Time { return fixedNow }}, hook
}

func mustAddr(t *testing.T, text string) address.Address {
	addr, err := address.Validate(text)
	require.NoError(t, err)
	return addr
}

func TestLookupPrivateSkipsRemoteSources(t *testing.T) {
	agg, _ := newTestAggregator(t)
	geo := &fakeGeo{name: "GeoIP2", fields: map[string]interface{}{"city": "x"}}
	agg.Sources = []GeoSource{geo}
	agg.ReverseDNS = fakeText{text: "should.not.appear"}
	agg.Interfaces = func() ([]report.Interface, error) {
		return []report.Interface{{Name: "eth0", IP: "192.168.1.5", Type: "Private"}}, nil
	}

	rep := agg.Lookup(context.Background(), mustAddr(t, "192.168.1.5"), "Italy")

	assert.Equal(t, 0, geo.calls)
	assert.Empty(t, rep.Sources)
	assert.Equal(t, "", rep.ReverseDNS)
	require.Len(t, rep.Interfaces, 1)
	assert.Equal(t, "eth0", rep.Interfaces[0].Name)
	assert.Equal(t, "Italy", rep.Label)
	assert.Equal(t, fixedNow, rep.Timestamp)
}

func TestLookupOmitsAPIErrorSource(t *testing.T) {
	agg, hook := newTestAggregator(t)
	offline := &fakeGeo{name: "GeoIP2", fields: map[string]interface{}{
		"city": "Mountain View", "latitude": 37.4, "longitude": -122.1,
	}}
	remote := &fakeGeo{name: "IP-API", err: &intel.APIError{Source: "IP-API", Status: "fail", Message: "quota"}}
	agg.Sources = []GeoSource{offline, remote}
	agg.ReverseDNS = fakeText{text: "dns.google"}
	agg.ASN = fakeText{text: "AS15169 GOOGLE"}
	agg.Whois = fakeWhois{record: &report.WhoisRecord{Registrar: "Google LLC"}}
	agg.Tracer = fakeTracer{out: "1 hop"}

	rep := agg.Lookup(context.Background(), mustAddr(t, "8.8.8.8"), "Kenya")

	require.Len(t, rep.Sources, 1)
	assert.Equal(t, "GeoIP2", rep.Sources[0].Source)
	_, found := rep.Source("IP-API")
	assert.False(t, found)
	assert.Contains(t, rep.Failures["IP-API"], "quota")
	assert.Equal(t, "dns.google", rep.ReverseDNS)
	assert.Equal(t, "AS15169 GOOGLE", rep.ASN)
	assert.Equal(t, "Google LLC", rep.Whois.Registrar)
	assert.Equal(t, "1 hop", rep.Traceroute)

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, "IP-API", hook.LastEntry().Data["source"])
	assert.Equal(t, "8.8.8.8", hook.LastEntry().Data["ip"])
}

func TestLookupEveryEnrichmentFails(t *testing.T) {
	agg, hook := newTestAggregator(t)
	agg.Sources = []GeoSource{&fakeGeo{name: "GeoIP2", err: intel.ErrLookupMiss}}
	agg.ReverseDNS = fakeText{err: intel.ErrNotFound}
	agg.ASN = fakeText{err: intel.ErrLookupFailed}
	agg.Whois = fakeWhois{err: intel.ErrLookupFailed}
	agg.Tracer = fakeTracer{out: "partial", err: intel.ErrTimeout}

	rep := agg.Lookup(context.Background(), mustAddr(t, "1.1.1.1"), "Japan")

	assert.Empty(t, rep.Sources)
	assert.Equal(t, "", rep.ReverseDNS)
	assert.Equal(t, "", rep.ASN)
	assert.Nil(t, rep.Whois)
	assert.Equal(t, "", rep.Traceroute)
	assert.Len(t, rep.Failures, 5)
	assert.Len(t, hook.Entries, 5)
	assert.Equal(t, intel.ErrTimeout.Error(), rep.Failures[StepTraceroute])
}

func TestLookupKeepsDisagreeingSources(t *testing.T) {
	agg, _ := newTestAggregator(t)
	agg.Sources = []GeoSource{
		&fakeGeo{name: "GeoIP2", fields: map[string]interface{}{"city": "Sydney"}},
		&fakeGeo{name: "IP-API", fields: map[string]interface{}{"city": "Brisbane"}},
	}

	rep := agg.Lookup(context.Background(), mustAddr(t, "1.1.1.1"), "Korea")
	require.Len(t, rep.Sources, 2)
	assert.Equal(t, "Sydney", rep.Sources[0].Fields["city"])
	assert.Equal(t, "Brisbane", rep.Sources[1].Fields["city"])
}

func TestNewAggregatorFromConfig(t *testing.T) {
	res, _ := resources.InitTestResources(t)
	agg := NewAggregator(res)

	// the testing config disables traceroute and has no MongoDB
	require.Len(t, agg.Sources, 2)
	assert.Equal(t, intel.SourceGeoIP, agg.Sources[0].Name())
	assert.Equal(t, intel.SourceIPAPI, agg.Sources[1].Name())
	assert.NotNil(t, agg.ReverseDNS)
	assert.NotNil(t, agg.ASN)
	assert.NotNil(t, agg.Whois)
	assert.Nil(t, agg.Tracer)
	assert.Equal(t, 5, agg.steps())
}
