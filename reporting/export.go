package reporting

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/activecm/iptrack/datatypes/report"
	"github.com/activecm/iptrack/util"
)

// Format selects the snapshot encoding
type Format string

const (
	// FormatJSON writes the whole report, indented
	FormatJSON Format = "json"
	// FormatCSV writes the flattened report as one row
	FormatCSV Format = "csv"
)

// CSVColumns is the fixed header of a CSV snapshot
var CSVColumns = []string{
	"ip", "country", "timestamp", "reverse_dns", "asn_info",
	"latitude", "longitude", "map_url",
}

// ExportSnapshot writes rep into dir as ip_report_<time>.<format> and
// returns the path written. An existing file is never overwritten, a
// counter is appended instead.
func ExportSnapshot(dir string, rep *report.Report, format Format, mapTemplate string, now time.Time) (string, error) {
	var data []byte
	var err error
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(rep, "", "    ")
		if err == nil {
			data = append(data, '\n')
		}
	case FormatCSV:
		data, err = flattenCSV(rep, mapTemplate, now)
	default:
		return "", fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	base := "ip_report_" + now.Format(util.FileTimeFormat)
	path := filepath.Join(dir, base+"."+string(format))
	counter := 1

	//while the file exists, append the next counter
	for exists, _ := util.Exists(path); exists; exists, _ = util.Exists(path) {
		path = filepath.Join(dir, base+"_"+strconv.Itoa(counter)+"."+string(format))
		counter++
	}

	if err := ioutil.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// Flatten returns the CSV row for rep. The coordinates are the first pair
// found in source order. The country column carries the destination label.
func Flatten(rep *report.Report, mapTemplate string, now time.Time) []string {
	row := []string{
		rep.Address.String(),
		rep.Label,
		now.Format(time.RFC3339),
		rep.ReverseDNS,
		rep.ASN,
		"", "", "",
	}
	if lat, lon, ok := rep.FirstCoordinates(); ok {
		row[5] = util.FormatCoordinate(lat)
		row[6] = util.FormatCoordinate(lon)
		row[7] = util.MapURL(mapTemplate, lat, lon)
	}
	return row
}

func flattenCSV(rep *report.Report, mapTemplate string, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(CSVColumns); err != nil {
		return nil, err
	}
	if err := writer.Write(Flatten(rep, mapTemplate, now)); err != nil {
		return nil, err
	}
	writer.Flush()
	return buf.Bytes(), writer.Error()
}
