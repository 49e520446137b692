// Package privacy reduces client addresses to network prefixes before they
// reach logs or the audit stream.
package privacy

import "net/netip"

const (
	ipv4Bits = 24
	ipv6Bits = 48
)

// AnonymizeIP keeps the /24 of an IPv4 address and the /48 of an IPv6
// address. IPv4-mapped IPv6 is treated as IPv4. Empty input yields
// "unknown" and unparseable input yields "invalid".
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap().WithZone("")
	bits := ipv6Bits
	if addr.Is4() {
		bits = ipv4Bits
	}
	prefix, err := addr.Prefix(bits)
	if err != nil {
		return "invalid"
	}
	return prefix.Addr().String()
}
