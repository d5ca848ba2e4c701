package intel

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/activecm/iptrack/address"
	"github.com/ammario/ipisp"
)

// ASN looks up the origin AS of an address through the Team Cymru DNS
// interface
type ASN struct {
	lookup func(net.IP) (*ipisp.Response, error)
}

// NewASN returns an ASN source that opens a fresh DNS client per lookup
func NewASN() *ASN {
	return &ASN{lookup: cymruLookup}
}

func cymruLookup(ip net.IP) (*ipisp.Response, error) {
	client, err := ipisp.NewDNSClient()
	if err != nil {
		return nil, err
	}
	defer client.Close()
	return client.LookupIP(ip)
}

// Lookup returns the AS formatted as "AS<number> <name>"
func (a *ASN) Lookup(ctx context.Context, addr address.Address) (string, error) {
	type answer struct {
		resp *ipisp.Response
		err  error
	}
	// the DNS client takes no context, so the lookup is abandoned on cancel
	done := make(chan answer, 1)
	go func() {
		resp, err := a.lookup(addr.IP())
		done <- answer{resp, err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", ErrLookupFailed, ctx.Err())
	case ans := <-done:
		if ans.err != nil {
			return "", fmt.Errorf("%w: %v", ErrLookupFailed, ans.err)
		}
		return formatASN(ans.resp)
	}
}

func formatASN(resp *ipisp.Response) (string, error) {
	if resp == nil || resp.ASN == 0 {
		return "", ErrLookupFailed
	}
	name := strings.TrimSpace(resp.Name.Raw)
	if name == "" {
		return fmt.Sprintf("AS%d", int(resp.ASN)), nil
	}
	return fmt.Sprintf("AS%d %s", int(resp.ASN), name), nil
}
