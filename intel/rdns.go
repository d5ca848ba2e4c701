package intel

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/activecm/iptrack/address"
)

// ReverseDNS resolves PTR records for an address
type ReverseDNS struct {
	resolver *net.Resolver
	timeout  time.Duration
}

// NewReverseDNS uses the system resolver
func NewReverseDNS(timeout time.Duration) *ReverseDNS {
	return &ReverseDNS{resolver: net.DefaultResolver, timeout: timeout}
}

// Lookup returns the first name for the address without the trailing dot.
// Any resolution failure is ErrNotFound.
func (r *ReverseDNS) Lookup(ctx context.Context, addr address.Address) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	names, err := r.resolver.LookupAddr(ctx, addr.String())
	if err != nil || len(names) == 0 {
		return "", ErrNotFound
	}
	name := strings.TrimSuffix(names[0], ".")
	if name == "" {
		return "", ErrNotFound
	}
	return name, nil
}
