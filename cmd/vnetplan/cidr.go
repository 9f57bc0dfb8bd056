package main

import (
	"fmt"
	"net/netip"
)

// parseBlock parses a CIDR literal into a canonical IPv4 prefix. The
// network address is masked, so "10.0.0.1/24" normalizes to
// "10.0.0.0/24". Bare addresses normalize to /32.
func parseBlock(raw string) (netip.Prefix, error) {
	if p, err := netip.ParsePrefix(raw); err == nil {
		if !p.Addr().Is4() {
			return netip.Prefix{}, fmt.Errorf("%w: %q: IPv6 is not supported", errInvalidCIDR, raw)
		}
		return p.Masked(), nil
	}
	if a, err := netip.ParseAddr(raw); err == nil {
		if !a.Is4() {
			return netip.Prefix{}, fmt.Errorf("%w: %q: IPv6 is not supported", errInvalidCIDR, raw)
		}
		return netip.PrefixFrom(a, 32), nil
	}
	return netip.Prefix{}, fmt.Errorf("%w: %q", errInvalidCIDR, raw)
}

// nextBlock returns the block of the same size immediately after p, or
// false when the successor would leave pool (or the IPv4 space).
func nextBlock(pool, p netip.Prefix) (netip.Prefix, bool) {
	next := uint64(prefixFirstU32(p)) + prefixSize(p)
	if next >= 1<<32 {
		return netip.Prefix{}, false
	}
	cand := netip.PrefixFrom(u32ToAddr(uint32(next)), p.Bits())
	if !prefixWithin(pool, cand) {
		return netip.Prefix{}, false
	}
	return cand, true
}

func validPrefixLen(bits int) error {
	if bits < 0 || bits > 32 {
		return fmt.Errorf("%w: prefix length /%d out of range", errInvalidCIDR, bits)
	}
	return nil
}
