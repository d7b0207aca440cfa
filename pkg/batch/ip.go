package batch

import (
	"fmt"
	"net/netip"

	"github.com/Mindburn-Labs/mtc/pkg/mtc"
)

func parseIPv4(s string) (mtc.IPv4Address, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return mtc.IPv4Address{}, err
	}
	if !addr.Is4() {
		return mtc.IPv4Address{}, fmt.Errorf("%q is not an IPv4 address", s)
	}
	var out mtc.IPv4Address
	copy(out[:], addr.AsSlice())
	return out, nil
}

func parseIPv6(s string) (mtc.IPv6Address, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return mtc.IPv6Address{}, err
	}
	if !addr.Is6() {
		return mtc.IPv6Address{}, fmt.Errorf("%q is not an IPv6 address", s)
	}
	var out mtc.IPv6Address
	copy(out[:], addr.AsSlice())
	return out, nil
}
