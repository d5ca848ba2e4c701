package address

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"regexp"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrInvalidFormat is returned when the text is not a strict IPv4 dotted
// quad or a full eight group IPv6 address.
var ErrInvalidFormat = errors.New("invalid IP address format")

// The IPv6 grammar only accepts the uncompressed eight group form.
// Compressed forms such as ::1 or fe80::1 are rejected.
var (
	ipv4Pattern = regexp.MustCompile(`^((25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)$`)
	ipv6Pattern = regexp.MustCompile(`^([0-9a-fA-F]{1,4}:){7}[0-9a-fA-F]{1,4}$`)
)

type (
	// Address is a validated IP literal. The zero value is not valid.
	Address struct {
		text    string
		version int
		scope   Scope
	}

	// addressJSON is the serialized form of an Address
	addressJSON struct {
		IP      string `json:"ip"`
		Version int    `json:"version"`
		Scope   Scope  `json:"scope"`
	}
)

// Validate checks text against the strict IPv4 and IPv6 grammars and
// returns the classified Address. IPv4 octets written with leading zeros
// are normalized, so "192.168.001.005" becomes "192.168.1.5".
func Validate(text string) (Address, error) {
	text = strings.TrimSpace(text)

	var version int
	switch {
	case ipv4Pattern.MatchString(text):
		version = 4
		text = canonicalIPv4(text)
	case ipv6Pattern.MatchString(text):
		version = 6
	default:
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidFormat, text)
	}

	addr := Address{text: text, version: version}
	addr.scope = Classify(addr)
	return addr, nil
}

// canonicalIPv4 strips leading zeros from each octet of a dotted quad
// that already matched ipv4Pattern.
func canonicalIPv4(text string) string {
	octets := strings.Split(text, ".")
	for i, octet := range octets {
		n, _ := strconv.Atoi(octet)
		octets[i] = strconv.Itoa(n)
	}
	return strings.Join(octets, ".")
}

// FromAddr builds an Address from an already parsed address. IPv6
// addresses are rendered in the expanded form so the text satisfies the
// strict grammar.
func FromAddr(ip netip.Addr) (Address, error) {
	if !ip.IsValid() {
		return Address{}, ErrInvalidFormat
	}
	ip = ip.Unmap()
	if ip.Is4() {
		return Validate(ip.String())
	}
	return Validate(ip.WithZone("").StringExpanded())
}

// String returns the normalized address text
func (a Address) String() string { return a.text }

// Version returns 4 or 6
func (a Address) Version() int { return a.version }

// Scope returns the routing scope of the address
func (a Address) Scope() Scope { return a.scope }

// IsGlobal is true for publicly routable addresses
func (a Address) IsGlobal() bool { return a.scope == Global }

// IsZero reports whether the Address was never validated
func (a Address) IsZero() bool { return a.text == "" }

// IP returns the address as a net.IP
func (a Address) IP() net.IP { return net.ParseIP(a.text) }

// Netip returns the address as a netip.Addr
func (a Address) Netip() netip.Addr {
	ip, err := netip.ParseAddr(a.text)
	if err != nil {
		return netip.Addr{}
	}
	return ip
}

// MarshalJSON implements json.Marshaler
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(addressJSON{IP: a.text, Version: a.version, Scope: a.scope})
}

// UnmarshalJSON implements json.Unmarshaler. The text is validated again
// so a decoded Address holds the same guarantees as a fresh one.
func (a *Address) UnmarshalJSON(data []byte) error {
	var raw addressJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.IP == "" {
		*a = Address{}
		return nil
	}
	parsed, err := Validate(raw.IP)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
