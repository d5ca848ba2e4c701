package intel

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/activecm/iptrack/address"
	"github.com/activecm/iptrack/datatypes/report"
	"github.com/araddon/dateparse"
	"github.com/likexian/whois"
	log "github.com/sirupsen/logrus"
)

type (
	// Whois queries the WHOIS service over port 43 and normalizes the
	// free text answer
	Whois struct {
		query func(target string) (string, error)
		log   *log.Logger
	}

	// whoisField says which record field a WHOIS key feeds
	whoisField int
)

const (
	whoisRegistrar whoisField = iota
	whoisNameServer
	whoisCreated
	whoisExpires
)

// whoisKeys maps the lower case keys used by the registries we know of to
// record fields. Domain registries and the RIRs disagree on naming.
var whoisKeys = map[string]whoisField{
	"registrar":                              whoisRegistrar,
	"sponsoring registrar":                   whoisRegistrar,
	"registrar name":                         whoisRegistrar,
	"orgname":                                whoisRegistrar,
	"org-name":                               whoisRegistrar,
	"owner":                                  whoisRegistrar,
	"name server":                            whoisNameServer,
	"nameserver":                             whoisNameServer,
	"nserver":                                whoisNameServer,
	"creation date":                          whoisCreated,
	"created":                                whoisCreated,
	"created on":                             whoisCreated,
	"regdate":                                whoisCreated,
	"registered on":                          whoisCreated,
	"registration time":                      whoisCreated,
	"registry expiry date":                   whoisExpires,
	"registrar registration expiration date": whoisExpires,
	"expiration date":                        whoisExpires,
	"expiry date":                            whoisExpires,
	"expires":                                whoisExpires,
	"expires on":                             whoisExpires,
	"paid-till":                              whoisExpires,
}

// NewWhois creates a WHOIS source. An empty server lets the client follow
// the IANA referral for the address.
func NewWhois(server string, timeout time.Duration, logger *log.Logger) *Whois {
	client := whois.NewClient().SetTimeout(timeout)
	return &Whois{
		query: func(target string) (string, error) {
			if server != "" {
				return client.Whois(target, server)
			}
			return client.Whois(target)
		},
		log: logger,
	}
}

// Lookup queries WHOIS for the address. A failed query or an answer with
// nothing we recognize is ErrLookupFailed.
func (w *Whois) Lookup(ctx context.Context, addr address.Address) (*report.WhoisRecord, error) {
	type answer struct {
		text string
		err  error
	}
	done := make(chan answer, 1)
	go func() {
		text, err := w.query(addr.String())
		done <- answer{text, err}
	}()

	var text string
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, ctx.Err())
	case ans := <-done:
		if ans.err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLookupFailed, ans.err)
		}
		text = ans.text
	}

	record := w.parseWhoisResponse(text)
	if record.IsEmpty() {
		return nil, ErrLookupFailed
	}
	return record, nil
}

// parseWhoisResponse walks the response line by line. The first registrar
// wins, name servers and dates accumulate.
func (w *Whois) parseWhoisResponse(text string) *report.WhoisRecord {
	record := &report.WhoisRecord{}
	var created, expires []string
	seenNS := make(map[string]bool)

	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		key, val, ok := splitWhoisLine(scanner.Text())
		if !ok {
			continue
		}
		field, known := whoisKeys[key]
		if !known {
			continue
		}

		switch field {
		case whoisRegistrar:
			if record.Registrar == "" {
				record.Registrar = val
			}
		case whoisNameServer:
			// some registries append the glue address after the name
			ns := strings.ToLower(strings.Fields(val)[0])
			ns = strings.TrimSuffix(ns, ".")
			if !seenNS[ns] {
				seenNS[ns] = true
				record.NameServers = append(record.NameServers, ns)
			}
		case whoisCreated:
			created = append(created, val)
		case whoisExpires:
			expires = append(expires, val)
		}
	}

	record.CreationDate = w.normalizeDates(created)
	record.ExpirationDate = w.normalizeDates(expires)
	return record
}

// normalizeDates converts each candidate to RFC 3339 in UTC and drops
// duplicates, keeping the first occurrence order
func (w *Whois) normalizeDates(raw []string) report.DateValue {
	var out report.DateValue
	seen := make(map[string]bool)
	for _, candidate := range raw {
		parsed, err := dateparse.ParseAny(candidate)
		if err != nil {
			w.log.WithFields(log.Fields{
				"error": PEBadWhoisDate.Error(),
				"value": candidate,
			}).Warn("could not parse WHOIS date")
			continue
		}
		canonical := parsed.UTC().Format(time.RFC3339)
		if !seen[canonical] {
			seen[canonical] = true
			out = append(out, canonical)
		}
	}
	return out
}

// splitWhoisLine returns the lower cased key and the value of a "key: value"
// line. Comments and lines without a value are skipped.
func splitWhoisLine(line string) (string, string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "%") || strings.HasPrefix(line, "#") ||
		strings.HasPrefix(line, ">>>") {
		return "", "", false
	}
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}
	key := strings.ToLower(strings.TrimSpace(line[:idx]))
	val := strings.TrimSpace(line[idx+1:])
	if val == "" {
		return "", "", false
	}
	return key, val, true
}
