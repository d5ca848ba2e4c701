package intel

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	"github.com/activecm/iptrack/address"
	"github.com/activecm/iptrack/datatypes/report"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SourceIPAPI identifies results from the remote geolocation API
const SourceIPAPI = "IP-API"

type (
	// RemoteGeo queries an ip-api.com style JSON endpoint
	RemoteGeo struct {
		urlTemplate string
		userAgent   string
		timeout     time.Duration
		client      *http.Client
		limiter     *rate.Limiter
	}

	// ipAPIResponse is the body returned by ip-api.com
	ipAPIResponse struct {
		Status      string   `json:"status"`
		Message     string   `json:"message"`
		Query       string   `json:"query"`
		Country     string   `json:"country"`
		CountryCode string   `json:"countryCode"`
		RegionName  string   `json:"regionName"`
		City        string   `json:"city"`
		Zip         string   `json:"zip"`
		Lat         *float64 `json:"lat"`
		Lon         *float64 `json:"lon"`
		Timezone    string   `json:"timezone"`
		ISP         string   `json:"isp"`
		Org         string   `json:"org"`
		AS          string   `json:"as"`
		Reverse     string   `json:"reverse"`
	}
)

// NewRemoteGeo creates a client for urlTemplate, which must contain an
// {ip} placeholder. requestsPerMinute <= 0 disables the client side limit.
func NewRemoteGeo(urlTemplate, userAgent string, timeout time.Duration, requestsPerMinute int) *RemoteGeo {
	r := &RemoteGeo{
		urlTemplate: urlTemplate,
		userAgent:   userAgent,
		timeout:     timeout,
		client:      &http.Client{},
	}
	if requestsPerMinute > 0 {
		r.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
	}
	return r
}

// Name returns the source identifier
func (r *RemoteGeo) Name() string { return SourceIPAPI }

// Query issues one GET for the address. The status field of the body is
// checked before any other field is trusted.
func (r *RemoteGeo) Query(ctx context.Context, addr address.Address) (report.SourceResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return report.SourceResult{}, &NetworkError{Source: SourceIPAPI, Err: err}
		}
	}

	url := strings.Replace(r.urlTemplate, "{ip}", addr.String(), -1)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return report.SourceResult{}, &NetworkError{Source: SourceIPAPI, Err: err}
	}
	req = req.WithContext(ctx)
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return report.SourceResult{}, &NetworkError{Source: SourceIPAPI, Err: err}
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return report.SourceResult{}, &NetworkError{Source: SourceIPAPI, Err: err}
	}

	var parsed ipAPIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode != http.StatusOK {
			return report.SourceResult{}, &APIError{Source: SourceIPAPI, Status: resp.Status}
		}
		return report.SourceResult{}, &NetworkError{
			Source: SourceIPAPI,
			Err:    fmt.Errorf("could not decode response: %v", err),
		}
	}

	if parsed.Status != "success" {
		status := parsed.Status
		if status == "" {
			status = resp.Status
		}
		return report.SourceResult{}, &APIError{Source: SourceIPAPI, Status: status, Message: parsed.Message}
	}

	return parsed.toSourceResult(), nil
}

func (p *ipAPIResponse) toSourceResult() report.SourceResult {
	fields := map[string]interface{}{
		report.FieldCountry:     p.Country,
		report.FieldCountryCode: p.CountryCode,
		report.FieldRegion:      p.RegionName,
		report.FieldCity:        p.City,
		report.FieldPostal:      p.Zip,
		report.FieldTimezone:    p.Timezone,
		report.FieldISP:         p.ISP,
		report.FieldOrg:         p.Org,
		report.FieldAS:          p.AS,
		report.FieldReverse:     p.Reverse,
	}
	if p.Lat != nil && p.Lon != nil {
		fields[report.FieldLatitude] = *p.Lat
		fields[report.FieldLongitude] = *p.Lon
	}
	return report.NewSourceResult(SourceIPAPI, fields)
}
