package intel

import (
	"context"
	"fmt"
	"sync"

	"github.com/activecm/iptrack/address"
	"github.com/activecm/iptrack/datatypes/report"
	"github.com/oschwald/maxminddb-golang/v2"
)

// SourceGeoIP identifies results from the offline GeoLite2 database
const SourceGeoIP = "GeoIP2"

type (
	// OfflineGeo reads a local GeoLite2 City database. The file is opened on
	// first use and kept open until Close.
	OfflineGeo struct {
		path    string
		once    sync.Once
		db      *maxminddb.Reader
		openErr error
	}

	// cityRecord is the subset of the GeoLite2 City schema we report
	cityRecord struct {
		Country struct {
			ISOCode string            `maxminddb:"iso_code"`
			Names   map[string]string `maxminddb:"names"`
		} `maxminddb:"country"`
		Subdivisions []struct {
			Names map[string]string `maxminddb:"names"`
		} `maxminddb:"subdivisions"`
		City struct {
			Names map[string]string `maxminddb:"names"`
		} `maxminddb:"city"`
		Postal struct {
			Code string `maxminddb:"code"`
		} `maxminddb:"postal"`
		Location struct {
			Latitude       *float64 `maxminddb:"latitude"`
			Longitude      *float64 `maxminddb:"longitude"`
			TimeZone       string   `maxminddb:"time_zone"`
			AccuracyRadius uint16   `maxminddb:"accuracy_radius"`
		} `maxminddb:"location"`
	}
)

// NewOfflineGeo returns a reader for the database at path
func NewOfflineGeo(path string) *OfflineGeo {
	return &OfflineGeo{path: path}
}

// Name returns the source identifier
func (o *OfflineGeo) Name() string { return SourceGeoIP }

// Available reports whether the database file could be opened
func (o *OfflineGeo) Available() bool {
	o.open()
	return o.openErr == nil
}

func (o *OfflineGeo) open() {
	o.once.Do(func() {
		o.db, o.openErr = maxminddb.Open(o.path)
	})
}

// Query looks the address up in the database. A missing database or an
// unmapped address is ErrLookupMiss.
func (o *OfflineGeo) Query(ctx context.Context, addr address.Address) (report.SourceResult, error) {
	o.open()
	if o.openErr != nil {
		return report.SourceResult{}, fmt.Errorf("%w: %v", ErrLookupMiss, o.openErr)
	}

	result := o.db.Lookup(addr.Netip())
	if err := result.Err(); err != nil {
		return report.SourceResult{}, fmt.Errorf("%w: %v", ErrLookupMiss, err)
	}
	if !result.Found() {
		return report.SourceResult{}, ErrLookupMiss
	}

	var record cityRecord
	if err := result.Decode(&record); err != nil {
		return report.SourceResult{}, fmt.Errorf("%w: %v", ErrLookupMiss, err)
	}
	return record.toSourceResult(), nil
}

func (r *cityRecord) toSourceResult() report.SourceResult {
	fields := map[string]interface{}{
		report.FieldCountry:     r.Country.Names["en"],
		report.FieldCountryCode: r.Country.ISOCode,
		report.FieldCity:        r.City.Names["en"],
		report.FieldPostal:      r.Postal.Code,
		report.FieldTimezone:    r.Location.TimeZone,
	}
	// the last subdivision is the most specific one
	if n := len(r.Subdivisions); n > 0 {
		fields[report.FieldRegion] = r.Subdivisions[n-1].Names["en"]
	}
	if r.Location.Latitude != nil && r.Location.Longitude != nil {
		fields[report.FieldLatitude] = *r.Location.Latitude
		fields[report.FieldLongitude] = *r.Location.Longitude
	}
	if r.Location.AccuracyRadius > 0 {
		fields[report.FieldAccuracy] = int(r.Location.AccuracyRadius)
	}
	return report.NewSourceResult(SourceGeoIP, fields)
}

// Close releases the database file
func (o *OfflineGeo) Close() error {
	if o.db == nil {
		return nil
	}
	return o.db.Close()
}
