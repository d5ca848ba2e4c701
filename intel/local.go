package intel

import (
	"net"
	"net/netip"

	"github.com/activecm/iptrack/address"
	"github.com/activecm/iptrack/datatypes/report"
	"github.com/activecm/iptrack/util"
)

const notAvailable = "N/A"

// LocalInterfaces lists the IPv4 addresses assigned to this host
func LocalInterfaces() ([]report.Interface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	var out []report.Interface
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		out = append(out, describeInterface(iface.Name, iface.Flags, addrs)...)
	}
	return out, nil
}

// describeInterface converts the IPv4 addresses of one interface
func describeInterface(name string, flags net.Flags, addrs []net.Addr) []report.Interface {
	var out []report.Interface
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		ip4 := ipNet.IP.To4()
		if ip4 == nil {
			continue
		}

		entry := report.Interface{
			Name:      name,
			IP:        ip4.String(),
			Netmask:   notAvailable,
			Broadcast: notAvailable,
			Type:      "Public",
		}
		if len(ipNet.Mask) == net.IPv4len || len(ipNet.Mask) == net.IPv6len {
			mask := ipNet.Mask
			if len(mask) == net.IPv6len {
				mask = mask[12:]
			}
			entry.Netmask = net.IP(mask).String()
		}
		if flags&net.FlagBroadcast != 0 {
			if bcast := util.BroadcastAddr(&net.IPNet{IP: ip4, Mask: ipNet.Mask}); bcast != nil {
				entry.Broadcast = bcast.String()
			}
		}
		if parsed, ok := netip.AddrFromSlice(ip4); ok {
			if a, err := address.FromAddr(parsed); err == nil && !a.IsGlobal() {
				entry.Type = "Private"
			}
		}
		out = append(out, entry)
	}
	return out
}
