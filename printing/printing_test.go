package printing

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/activecm/iptrack/address"
	"github.com/activecm/iptrack/datatypes/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMapTemplate = "https://maps.test/?q={lat},{lon}"

var plain = NewStyle(true)

func globalReport(t *testing.T, sources ...report.SourceResult) *report.Report {
	addr, err := address.Validate("8.8.8.8")
	require.NoError(t, err)
	return report.Merge(addr, "Germany", time.Now(), sources, report.Enrichment{
		ReverseDNS: "dns.google",
		Whois: &report.WhoisRecord{
			Registrar:    "Google LLC",
			NameServers:  []string{"ns1.google.com"},
			CreationDate: report.DateValue{"2014-03-14T00:00:00Z", "2015-01-01T00:00:00Z"},
		},
	})
}

func TestNoColorStyleIsPlain(t *testing.T) {
	assert.Equal(t, "hello", plain.Heading("hello"))
	assert.Equal(t, "hello", plain.Error("hello"))
}

func TestPrintReportLinks(t *testing.T) {
	rep := globalReport(t,
		report.NewSourceResult("GeoIP2", map[string]interface{}{
			"country": "United States", "latitude": 37.751, "longitude": -97.822,
		}),
		report.NewSourceResult("IP-API", map[string]interface{}{
			"country": "United States", "city": "Mountain View", "isp": "Google LLC",
		}),
	)

	var out bytes.Buffer
	links := PrintReport(&out, rep, plain, testMapTemplate)

	assert.Equal(t, []string{"https://maps.test/?q=37.751,-97.822"}, links)
	text := out.String()
	assert.Contains(t, text, "[ GeoIP2 - Germany ]")
	assert.Contains(t, text, "[ IP-API - Germany ]")
	assert.Contains(t, text, "City: N/A")
	assert.Contains(t, text, "City: Mountain View")
	assert.Contains(t, text, "Coordinates: Not available")
	assert.Contains(t, text, "ISP: Google LLC")
	assert.Contains(t, text, "[ Source Comparison ]")
	assert.Contains(t, text, "Reverse DNS: dns.google")
	assert.Contains(t, text, "ASN Info: N/A")
	assert.Contains(t, text, "Creation Date: 2014-03-14T00:00:00Z")
	assert.Contains(t, text, "- ns1.google.com")
}

func TestPrintReportWithoutCoordinates(t *testing.T) {
	rep := globalReport(t, report.NewSourceResult("IP-API", map[string]interface{}{"city": "Paris"}))

	var out bytes.Buffer
	links := PrintReport(&out, rep, plain, testMapTemplate)
	assert.Empty(t, links)
	assert.NotContains(t, out.String(), "[ Source Comparison ]")
}

func TestPrintReportLocal(t *testing.T) {
	addr, err := address.Validate("10.0.0.7")
	require.NoError(t, err)
	rep := report.Merge(addr, "Kenya", time.Now(), nil, report.Enrichment{
		Interfaces: []report.Interface{{Name: "eth0", IP: "10.0.0.7", Type: "Private", Netmask: "255.0.0.0", Broadcast: "10.255.255.255"}},
	})

	var out bytes.Buffer
	links := PrintReport(&out, rep, plain, testMapTemplate)
	assert.Nil(t, links)
	text := out.String()
	assert.Contains(t, text, "[ Local Network - Kenya ]")
	assert.Contains(t, text, "(private)")
	assert.Contains(t, text, "Interface #1:")
	assert.Contains(t, text, "Broadcast: 10.255.255.255")
}

func TestPrintComparison(t *testing.T) {
	var out bytes.Buffer
	PrintComparison(&out, []report.SourceResult{
		report.NewSourceResult("GeoIP2", map[string]interface{}{"city": "Sydney", "custom": "x"}),
		report.NewSourceResult("IP-API", map[string]interface{}{"city": "Brisbane", "isp": "APNIC"}),
	})

	lines := strings.Split(out.String(), "\n")
	var cityLine, ispLine string
	for _, line := range lines {
		if strings.Contains(line, "City") {
			cityLine = line
		}
		if strings.Contains(line, "ISP") {
			ispLine = line
		}
	}
	assert.Contains(t, cityLine, "Sydney")
	assert.Contains(t, cityLine, "Brisbane")
	assert.Contains(t, ispLine, "N/A")
	assert.Contains(t, out.String(), "custom")
}

func TestPrintTraceroute(t *testing.T) {
	rep := globalReport(t)
	var out bytes.Buffer
	PrintTraceroute(&out, rep, plain)
	assert.Contains(t, out.String(), "N/A")

	rep.Traceroute = "1  10.0.0.1  1.2 ms\n"
	out.Reset()
	PrintTraceroute(&out, rep, plain)
	assert.Contains(t, out.String(), "1  10.0.0.1  1.2 ms")
}

func TestPrintMenu(t *testing.T) {
	var out bytes.Buffer
	PrintMenu(&out, plain, []string{"Italy", "Japan", "Kenya"})
	text := out.String()
	assert.Contains(t, text, "[1] Italy")
	assert.Contains(t, text, "[3] Kenya")
	assert.Contains(t, text, "[4] Exit")
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "37.5", FormatValue(37.5))
	assert.Equal(t, "yes", FormatValue(true))
	assert.Equal(t, "a, b", FormatValue([]string{"a", "b"}))
	assert.Equal(t, "a, 2", FormatValue([]interface{}{"a", 2}))
	assert.Equal(t, "50", FormatValue(50))
}
