package utils

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
)

// ErrAddressParse reports text that is not a dotted-quad IPv4 address.
var ErrAddressParse = errors.New("invalid IPv4 address")

// ParseIPv4 converts a dotted-quad address into its integer form.
// IPv4-mapped IPv6 text such as ::ffff:1.2.3.4 is rejected.
func ParseIPv4(s string) (uint32, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrAddressParse, s)
	}
	if !addr.Is4() {
		return 0, fmt.Errorf("%w: %q is not IPv4", ErrAddressParse, s)
	}
	v4 := addr.As4()
	return uint32(v4[0])<<24 | uint32(v4[1])<<16 | uint32(v4[2])<<8 | uint32(v4[3]), nil
}

// FormatIPv4 renders an integer address in dotted-quad form.
func FormatIPv4(addr uint32) string {
	return net.IPv4(byte(addr>>24), byte(addr>>16), byte(addr>>8), byte(addr)).String()
}

// MaskPrefix returns the prefix length of a dotted netmask such as 255.255.255.0.
func MaskPrefix(mask string) (int, error) {
	ip := net.ParseIP(mask).To4()
	if ip == nil {
		return 0, fmt.Errorf("%w: netmask %q", ErrAddressParse, mask)
	}
	ones, bits := net.IPMask(ip).Size()
	if bits == 0 {
		return 0, fmt.Errorf("non-canonical netmask %q", mask)
	}
	return ones, nil
}

// CIDRSize returns the number of addresses in a CIDR network.
func CIDRSize(cidr *net.IPNet) uint64 {
	ones, bits := cidr.Mask.Size()
	return 1 << (bits - ones)
}
