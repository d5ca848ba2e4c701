package intel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/netip"
	"time"

	"github.com/activecm/iptrack/address"
)

// PublicIP discovers the address this host is seen as by racing several
// "what is my IP" providers
type PublicIP struct {
	providers []string
	timeout   time.Duration
	userAgent string
	client    *http.Client
}

// NewPublicIP creates a discoverer over the provider URLs. Each request
// is bounded by timeout.
func NewPublicIP(providers []string, timeout time.Duration, userAgent string) *PublicIP {
	return &PublicIP{
		providers: providers,
		timeout:   timeout,
		userAgent: userAgent,
		client:    &http.Client{},
	}
}

// Discover returns the first address any provider reports. The remaining
// requests are cancelled. ErrUnknown is returned when every provider fails.
func (p *PublicIP) Discover(ctx context.Context) (address.Address, error) {
	if len(p.providers) == 0 {
		return address.Address{}, ErrUnknown
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type answer struct {
		addr address.Address
		err  error
	}
	// buffered so losers never block after we return
	results := make(chan answer, len(p.providers))
	for _, provider := range p.providers {
		go func(url string) {
			addr, err := p.ask(ctx, url)
			results <- answer{addr, err}
		}(provider)
	}

	var errs []error
	for range p.providers {
		select {
		case <-ctx.Done():
			return address.Address{}, fmt.Errorf("%w: %v", ErrUnknown, ctx.Err())
		case ans := <-results:
			if ans.err == nil {
				return ans.addr, nil
			}
			errs = append(errs, ans.err)
		}
	}
	return address.Address{}, fmt.Errorf("%w: %v", ErrUnknown, errors.Join(errs...))
}

// ask queries one provider. JSON bodies carrying "ip" or "ip_addr" and
// plain text bodies are both understood.
func (p *PublicIP) ask(ctx context.Context, url string) (address.Address, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return address.Address{}, err
	}
	req = req.WithContext(ctx)
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return address.Address{}, &NetworkError{Source: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return address.Address{}, &APIError{Source: url, Status: resp.Status}
	}

	body, err := ioutil.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return address.Address{}, &NetworkError{Source: url, Err: err}
	}
	return parsePublicIP(body)
}

func parsePublicIP(body []byte) (address.Address, error) {
	body = bytes.TrimSpace(body)

	text := string(body)
	if bytes.HasPrefix(body, []byte("{")) {
		var parsed struct {
			IP     string `json:"ip"`
			IPAddr string `json:"ip_addr"`
		}
		if err := json.Unmarshal(body, &parsed); err != nil {
			return address.Address{}, err
		}
		text = parsed.IP
		if text == "" {
			text = parsed.IPAddr
		}
	}

	ip, err := netip.ParseAddr(text)
	if err != nil {
		return address.Address{}, fmt.Errorf("%w: %q", address.ErrInvalidFormat, text)
	}
	return address.FromAddr(ip)
}
