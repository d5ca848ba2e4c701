package address

import (
	"fmt"
	"net"

	"github.com/activecm/iptrack/util"
)

// Scope describes whether an address is globally routable
type Scope int

const (
	//Global addresses are publicly routable
	Global Scope = iota
	//Private covers RFC1918 and IPv6 unique local addresses
	Private
	//Loopback covers 127.0.0.0/8 and ::1
	Loopback
	//LinkLocal covers 169.254.0.0/16 and fe80::/10
	LinkLocal
)

var scopeNames = map[Scope]string{
	Global:    "global",
	Private:   "private",
	Loopback:  "loopback",
	LinkLocal: "link-local",
}

var (
	privateBlocks   []*net.IPNet
	loopbackBlocks  []*net.IPNet
	linkLocalBlocks []*net.IPNet
)

func init() {
	privateBlocks = mustParse(
		"10.0.0.0/8",     // RFC1918
		"172.16.0.0/12",  // RFC1918
		"192.168.0.0/16", // RFC1918
		"fc00::/7",       // IPv6 unique local addr
	)
	loopbackBlocks = mustParse("127.0.0.0/8", "::1/128")
	linkLocalBlocks = mustParse("169.254.0.0/16", "fe80::/10")
}

func mustParse(subnets ...string) []*net.IPNet {
	blocks, err := util.ParseSubnets(subnets)
	if err != nil {
		panic(fmt.Sprintf("Error defining address scopes: %v", err.Error()))
	}
	return blocks
}

// Classify tests the address against the private, loopback and link-local
// prefix tables. Anything not matched is Global.
func Classify(a Address) Scope {
	ip := a.IP()
	if ip == nil {
		return Global
	}
	switch {
	case util.ContainsIP(loopbackBlocks, ip):
		return Loopback
	case util.ContainsIP(linkLocalBlocks, ip):
		return LinkLocal
	case util.ContainsIP(privateBlocks, ip):
		return Private
	}
	return Global
}

func (s Scope) String() string {
	if name, ok := scopeNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler
func (s Scope) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Scope) UnmarshalText(text []byte) error {
	for scope, name := range scopeNames {
		if name == string(text) {
			*s = scope
			return nil
		}
	}
	return fmt.Errorf("unknown address scope %q", string(text))
}
