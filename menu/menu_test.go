package menu

import (
	"bytes"
	"context"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/activecm/iptrack/address"
	"github.com/activecm/iptrack/datatypes/report"
	"github.com/activecm/iptrack/printing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDestinations = []string{
	"Italy", "Indonesia", "Japan", "United States", "France",
	"Korea", "Germany", "Turkey", "Kenya",
}

type fakeLooker struct {
	mu     sync.Mutex
	calls  []string
	labels []string
}

func (f *fakeLooker) Lookup(ctx context.Context, addr address.Address, label string) *report.Report {
	f.mu.Lock()
	f.calls = append(f.calls, addr.String())
	f.labels = append(f.labels, label)
	f.mu.Unlock()

	var sources []report.SourceResult
	if addr.IsGlobal() {
		sources = append(sources, report.NewSourceResult("GeoIP2", map[string]interface{}{
			report.FieldCountry:   "Japan",
			report.FieldLatitude:  35.5,
			report.FieldLongitude: 139.5,
		}))
	}
	return report.Merge(addr, label, time.Now(), sources, report.Enrichment{
		Traceroute: "1  gateway  1 ms",
		Interfaces: []report.Interface{{Name: "eth0", IP: "192.168.1.10", Type: "Private"}},
	})
}

type fakeDiscoverer struct {
	addr  string
	err   error
	calls int
}

func (f *fakeDiscoverer) Discover(ctx context.Context) (address.Address, error) {
	f.calls++
	if f.err != nil {
		return address.Address{}, f.err
	}
	return address.Validate(f.addr)
}

type fakeRecorder struct {
	entries []report.LogEntry
	err     error
}

func (f *fakeRecorder) Append(rep *report.Report) (report.LogEntry, error) {
	if f.err != nil {
		return report.LogEntry{}, f.err
	}
	entry := report.LogEntry{ID: "id", Timestamp: time.Now(), Report: rep}
	f.entries = append(f.entries, entry)
	return entry, nil
}

type fakeMirror struct {
	ids []string
}

func (f *fakeMirror) Mirror(entry report.LogEntry) error {
	f.ids = append(f.ids, entry.ID)
	return nil
}

func newTestMenu() (*Menu, *fakeLooker, *fakeDiscoverer, *fakeRecorder, *fakeMirror) {
	looker := &fakeLooker{}
	discoverer := &fakeDiscoverer{addr: "1.1.1.1"}
	recorder := &fakeRecorder{}
	mirror := &fakeMirror{}
	m := &Menu{
		Destinations: testDestinations,
		Lookup:       looker,
		PublicIP:     discoverer,
		Logbook:      recorder,
		Mirror:       mirror,
		ExportDir:    os.TempDir(),
		MapTemplate:  "https://maps.example.com/?q={lat},{lon}",
		Style:        printing.NewStyle(true),
		Version:      "v0.0.0",
	}
	return m, looker, discoverer, recorder, mirror
}

func run(t *testing.T, m *Menu, input string) string {
	var out bytes.Buffer
	require.NoError(t, m.Run(context.Background(), strings.NewReader(input), &out))
	return out.String()
}

func TestExitChoice(t *testing.T) {
	m, looker, _, _, _ := newTestMenu()
	out := run(t, m, "10\n")
	assert.Empty(t, looker.calls)
	assert.Contains(t, out, "[10] Exit")
	assert.Contains(t, out, "Exiting...")
	assert.Equal(t, Exit, m.state)
}

func TestEOFExits(t *testing.T) {
	m, looker, _, _, _ := newTestMenu()
	run(t, m, "")
	assert.Empty(t, looker.calls)

	m, looker, _, _, _ = newTestMenu()
	run(t, m, "3\n")
	assert.Empty(t, looker.calls)
}

func TestCancelledContextExits(t *testing.T) {
	m, looker, _, _, _ := newTestMenu()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	reader, writer, err := os.Pipe()
	require.NoError(t, err)
	defer reader.Close()
	defer writer.Close()

	assert.NoError(t, m.Run(ctx, reader, &out))
	assert.Empty(t, looker.calls)
}

func TestInvalidChoices(t *testing.T) {
	m, looker, _, _, _ := newTestMenu()
	out := run(t, m, "42\n\nabc\n0\n10\n")
	assert.Empty(t, looker.calls)
	assert.Equal(t, 4, strings.Count(out, "Invalid choice!"))
}

func TestInvalidAddressReturnsToMenu(t *testing.T) {
	m, looker, _, recorder, _ := newTestMenu()
	out := run(t, m, "1\nnot-an-ip\n1\n::1\n10\n")
	assert.Empty(t, looker.calls)
	assert.Empty(t, recorder.entries)
	assert.Equal(t, 2, strings.Count(out, "Invalid IP address format!"))
}

func TestFullLookup(t *testing.T) {
	m, looker, _, recorder, mirror := newTestMenu()
	var opened []string
	m.OpenURL = func(url string) error {
		opened = append(opened, url)
		return nil
	}

	// destination, address, open map, traceroute, export, continue, exit
	out := run(t, m, "3\n8.8.8.8\ny\ny\nn\n\n10\n")

	assert.Equal(t, []string{"8.8.8.8"}, looker.calls)
	assert.Equal(t, []string{"Japan"}, looker.labels)
	assert.Equal(t, []string{"https://maps.example.com/?q=35.5,139.5"}, opened)
	assert.Contains(t, out, "Traceroute Results:")
	assert.Contains(t, out, "1  gateway  1 ms")
	require.Len(t, recorder.entries, 1)
	assert.Equal(t, []string{"id"}, mirror.ids)
	assert.Contains(t, out, "Lookup logged")
}

func TestBlankAddressUsesPublicIP(t *testing.T) {
	m, looker, discoverer, _, _ := newTestMenu()
	out := run(t, m, "1\n\nn\nn\nn\n\n10\n")
	assert.Equal(t, 1, discoverer.calls)
	assert.Equal(t, []string{"1.1.1.1"}, looker.calls)
	assert.Contains(t, out, "Using your public IP: 1.1.1.1")
}

func TestPublicIPFailureReturnsToMenu(t *testing.T) {
	m, looker, discoverer, _, _ := newTestMenu()
	discoverer.err = errors.New("all providers failed")
	out := run(t, m, "1\n\n10\n")
	assert.Empty(t, looker.calls)
	assert.Contains(t, out, "Could not determine your public IP")
}

func TestPrivateAddressOffersPublicIP(t *testing.T) {
	dir, err := ioutil.TempDir("", "iptrack-menu")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	m, looker, discoverer, recorder, _ := newTestMenu()
	m.ExportDir = dir

	// destination, private address, track public, track this, then the
	// global result: map, traceroute, export, continue
	out := run(t, m, "2\n192.168.1.10\ny\ny\nn\nn\ny\n\n")

	assert.Contains(t, out, "[ Local Network - Indonesia ]")
	assert.Contains(t, out, "Your public IP: 1.1.1.1")
	assert.Equal(t, 1, discoverer.calls)
	assert.Equal(t, []string{"192.168.1.10", "1.1.1.1"}, looker.calls)

	// only the global report is logged
	require.Len(t, recorder.entries, 1)
	assert.Equal(t, "1.1.1.1", recorder.entries[0].Report.Address.String())

	jsonFiles, err := filepath.Glob(filepath.Join(dir, "ip_report_*.json"))
	require.NoError(t, err)
	csvFiles, err := filepath.Glob(filepath.Join(dir, "ip_report_*.csv"))
	require.NoError(t, err)
	assert.Len(t, jsonFiles, 1)
	assert.Len(t, csvFiles, 1)
	assert.Contains(t, out, "JSON report saved to")
	assert.Contains(t, out, "CSV report saved to")
}

func TestPrivateAddressDeclined(t *testing.T) {
	m, looker, discoverer, recorder, _ := newTestMenu()
	run(t, m, "2\n10.0.0.1\nn\n\n10\n")
	assert.Equal(t, []string{"10.0.0.1"}, looker.calls)
	assert.Equal(t, 0, discoverer.calls)
	assert.Empty(t, recorder.entries)
}

func TestLogFailureIsReported(t *testing.T) {
	m, _, _, recorder, mirror := newTestMenu()
	recorder.err = errors.New("disk full")
	out := run(t, m, "4\n8.8.4.4\nn\nn\nn\n\n10\n")
	assert.Contains(t, out, "Failed to log lookup: disk full")
	assert.Empty(t, mirror.ids)
}

func TestStateNames(t *testing.T) {
	assert.Equal(t, "menu", MenuDisplayed.String())
	assert.Equal(t, "exit", Exit.String())
	assert.Equal(t, "unknown", State(42).String())
}
