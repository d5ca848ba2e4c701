package blacklist

import (
	"context"
	"fmt"
	"sort"

	"github.com/activecm/iptrack/address"
	"github.com/activecm/iptrack/datatypes/report"
)

// SourceName identifies blacklist results in a report
const SourceName = "Blacklist"

// Source reports whether an address is on any of the configured lists
type Source struct {
	repo Repository
}

// NewSource wraps a Repository as a lookup source
func NewSource(repo Repository) *Source {
	return &Source{repo: repo}
}

// Name returns the source identifier
func (s *Source) Name() string { return SourceName }

// Query returns "listed" and, when listed, the sorted list names
func (s *Source) Query(ctx context.Context, addr address.Address) (report.SourceResult, error) {
	if err := ctx.Err(); err != nil {
		return report.SourceResult{}, err
	}
	listings, err := s.repo.Lookup(addr.String())
	if err != nil {
		return report.SourceResult{}, fmt.Errorf("blacklist lookup: %w", err)
	}

	seen := make(map[string]bool)
	var names []string
	for _, listing := range listings {
		if listing.List != "" && !seen[listing.List] {
			seen[listing.List] = true
			names = append(names, listing.List)
		}
	}
	sort.Strings(names)

	fields := map[string]interface{}{
		report.FieldListed: len(names) > 0,
	}
	if len(names) > 0 {
		fields[report.FieldBlacklists] = names
	}
	return report.NewSourceResult(SourceName, fields), nil
}
