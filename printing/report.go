package printing

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/activecm/iptrack/datatypes/report"
	"github.com/activecm/iptrack/util"
	"github.com/olekukonko/tablewriter"
)

// NotAvailable is shown for fields no source reported
const NotAvailable = "N/A"

// alwaysShown are printed for every source, as N/A when missing
var alwaysShown = []string{
	report.FieldCountry,
	report.FieldRegion,
	report.FieldCity,
	report.FieldTimezone,
}

// fieldLabels are the human names of the known fields
var fieldLabels = map[string]string{
	report.FieldCountry:     "Country",
	report.FieldCountryCode: "Country Code",
	report.FieldRegion:      "Region",
	report.FieldCity:        "City",
	report.FieldPostal:      "Postal",
	report.FieldLatitude:    "Latitude",
	report.FieldLongitude:   "Longitude",
	report.FieldTimezone:    "Timezone",
	report.FieldAccuracy:    "Accuracy (km)",
	report.FieldISP:         "ISP",
	report.FieldOrg:         "Organization",
	report.FieldAS:          "AS",
	report.FieldReverse:     "Reverse DNS",
	report.FieldListed:      "Blacklisted",
	report.FieldBlacklists:  "Lists",
}

// PrintReport renders the report and returns the map link of every
// source that reported coordinates. The caller may only offer to open a
// map when the returned list is non empty.
func PrintReport(w io.Writer, rep *report.Report, style Style, mapTemplate string) []string {
	if !rep.Address.IsGlobal() {
		printLocal(w, rep, style)
		return nil
	}

	var links []string
	for _, src := range rep.Sources {
		if link := printSource(w, rep, src, style, mapTemplate); link != "" {
			links = append(links, link)
		}
	}
	if len(rep.Sources) == 0 {
		fmt.Fprintln(w, style.Warning("\nNo geolocation source answered"))
	}
	if len(rep.Sources) > 1 {
		fmt.Fprintln(w, style.Heading("\n[ Source Comparison ]"))
		PrintComparison(w, rep.Sources)
	}
	printInsights(w, rep, style)
	return links
}

func printSource(w io.Writer, rep *report.Report, src report.SourceResult, style Style, mapTemplate string) string {
	fmt.Fprintf(w, "\n%s\n", style.Heading(fmt.Sprintf("[ %s - %s ]", src.Source, rep.Label)))
	printField(w, style, "IP", rep.Address.String())

	shown := make(map[string]bool)
	for _, field := range alwaysShown {
		shown[field] = true
		val, ok := src.Fields[field]
		if !ok {
			printField(w, style, fieldLabels[field], NotAvailable)
			continue
		}
		printField(w, style, fieldLabels[field], FormatValue(val))
	}

	var link string
	shown[report.FieldLatitude] = true
	shown[report.FieldLongitude] = true
	if lat, lon, ok := src.Coordinates(); ok {
		printField(w, style, "Coordinates",
			util.FormatCoordinate(lat)+", "+util.FormatCoordinate(lon))
		link = util.MapURL(mapTemplate, lat, lon)
		printField(w, style, "Map", link)
	} else {
		fmt.Fprintln(w, style.Warning("Coordinates: Not available"))
	}

	for _, field := range src.Keys() {
		if shown[field] {
			continue
		}
		printField(w, style, labelFor(field), FormatValue(src.Fields[field]))
	}
	return link
}

// PrintComparison writes one row per field and one column per source so
// disagreeing sources can be read side by side
func PrintComparison(w io.Writer, sources []report.SourceResult) {
	var fields []string
	seen := make(map[string]bool)
	for _, field := range report.FieldOrder {
		for _, src := range sources {
			if _, ok := src.Fields[field]; ok && !seen[field] {
				seen[field] = true
				fields = append(fields, field)
			}
		}
	}
	var extra []string
	for _, src := range sources {
		for field := range src.Fields {
			if !seen[field] {
				seen[field] = true
				extra = append(extra, field)
			}
		}
	}
	sort.Strings(extra)
	fields = append(fields, extra...)

	header := []string{"Field"}
	for _, src := range sources {
		header = append(header, src.Source)
	}

	table := tablewriter.NewWriter(w)
	table.SetColWidth(60)
	table.SetHeader(header)
	for _, field := range fields {
		row := []string{labelFor(field)}
		for _, src := range sources {
			val, ok := src.Fields[field]
			if !ok {
				row = append(row, NotAvailable)
				continue
			}
			row = append(row, FormatValue(val))
		}
		table.Append(row)
	}
	table.Render()
}

func printInsights(w io.Writer, rep *report.Report, style Style) {
	fmt.Fprintf(w, "\n%s\n", style.Heading("[ Insights ]"))
	printField(w, style, "Reverse DNS", orNA(rep.ReverseDNS))
	printField(w, style, "ASN Info", orNA(rep.ASN))

	if rep.Whois.IsEmpty() {
		printField(w, style, "Whois", NotAvailable)
		return
	}
	fmt.Fprintln(w, style.Label("\nWhois Information:"))
	printField(w, style, "Registrar", orNA(rep.Whois.Registrar))
	if created := rep.Whois.CreationDate.First(); created != "" {
		printField(w, style, "Creation Date", created)
	}
	if expires := rep.Whois.ExpirationDate.First(); expires != "" {
		printField(w, style, "Expiration Date", expires)
	}
	if len(rep.Whois.NameServers) > 0 {
		fmt.Fprintln(w, style.Label("Name Servers:"))
		for _, ns := range rep.Whois.NameServers {
			fmt.Fprintln(w, style.Value("- "+ns))
		}
	}
}

// PrintTraceroute writes the captured trace, or N/A when it failed
func PrintTraceroute(w io.Writer, rep *report.Report, style Style) {
	fmt.Fprintf(w, "\n%s\n", style.Label("Traceroute Results:"))
	fmt.Fprintln(w, orNA(strings.TrimRight(rep.Traceroute, "\n")))
}

func printLocal(w io.Writer, rep *report.Report, style Style) {
	fmt.Fprintf(w, "\n%s\n", style.Heading(fmt.Sprintf("[ Local Network - %s ]", rep.Label)))
	fmt.Fprintf(w, "%s %s %s\n", style.Label("IP:"), style.Value(rep.Address.String()),
		style.Warning("("+rep.Address.Scope().String()+")"))

	if len(rep.Interfaces) == 0 {
		fmt.Fprintln(w, style.Error("No network interfaces found!"))
		return
	}
	fmt.Fprintln(w, style.Accent("\nNetwork Interfaces:"))
	for idx, iface := range rep.Interfaces {
		fmt.Fprintf(w, "\n%s\n", style.Success(fmt.Sprintf("Interface #%d:", idx+1)))
		printField(w, style, "  Name", iface.Name)
		printField(w, style, "  IP", iface.IP)
		printField(w, style, "  Type", iface.Type)
		printField(w, style, "  Netmask", iface.Netmask)
		printField(w, style, "  Broadcast", iface.Broadcast)
	}
}

func printField(w io.Writer, style Style, label, value string) {
	fmt.Fprintf(w, "%s %s\n", style.Label(label+":"), style.Value(value))
}

// FormatValue renders a field value for display
func FormatValue(val interface{}) string {
	switch v := val.(type) {
	case string:
		return v
	case float64:
		return util.FormatCoordinate(v)
	case bool:
		if v {
			return "yes"
		}
		return "no"
	case []string:
		return strings.Join(v, ", ")
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, FormatValue(item))
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprint(val)
}

func labelFor(field string) string {
	if label, ok := fieldLabels[field]; ok {
		return label
	}
	return field
}

func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}
