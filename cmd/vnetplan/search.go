package main

import (
	"fmt"
	"net/netip"
)

const (
	strategyExpanding = "expanding"
	strategyBase      = "base"
)

var (
	pool10  = netip.MustParsePrefix("10.0.0.0/8")
	pool172 = netip.MustParsePrefix("172.16.0.0/12")
)

// searchBase scans every block of prefixLen inside base in ascending
// address order and returns the first that avoids the reservation set.
func searchBase(base netip.Prefix, prefixLen int, used *reservationSet) (netip.Prefix, error) {
	if err := validPrefixLen(prefixLen); err != nil {
		return netip.Prefix{}, err
	}
	if prefixLen < base.Bits() {
		return netip.Prefix{}, fmt.Errorf("%w: /%d does not fit inside %s", errSearchExhausted, prefixLen, base)
	}
	cand := netip.PrefixFrom(base.Masked().Addr(), prefixLen)
	for {
		if !used.overlapsAny(cand) {
			return cand, nil
		}
		next, ok := nextBlock(base, cand)
		if !ok {
			return netip.Prefix{}, fmt.Errorf("%w: no free /%d inside %s", errSearchExhausted, prefixLen, base)
		}
		cand = next
	}
}

// expandingBounds maps a /16 base to its enclosing private pool and the
// inclusive range of second octets the outer loop may visit.
func expandingBounds(base netip.Prefix) (netip.Prefix, int, int, error) {
	if base.Bits() != 16 {
		return netip.Prefix{}, 0, 0, fmt.Errorf("%w: expanding search requires a /16 base, got %s", errInvalidCIDR, base)
	}
	addr := base.Masked().Addr()
	switch {
	case pool10.Contains(addr):
		return pool10, int(addr.As4()[1]), 255, nil
	case pool172.Contains(addr):
		return pool172, int(addr.As4()[1]), 31, nil
	}
	return netip.Prefix{}, 0, 0, fmt.Errorf("%w: expanding search supports bases inside %s or %s, got %s",
		errInvalidCIDR, pool10, pool172, base)
}

// searchExpanding walks /24 buckets A.outer.inner.0/24, advancing the
// inner (third) octet before the outer (second) octet. startThird
// offsets the inner loop for the first outer value only. Callers rely
// on this exact low-address-first order.
func searchExpanding(base netip.Prefix, prefixLen, startThird int, used *reservationSet) (netip.Prefix, error) {
	if err := validPrefixLen(prefixLen); err != nil {
		return netip.Prefix{}, err
	}
	if prefixLen < 24 {
		return netip.Prefix{}, fmt.Errorf("%w: expanding search requires a target of /24 or longer, got /%d", errInvalidCIDR, prefixLen)
	}
	if startThird < 0 || startThird > 255 {
		return netip.Prefix{}, fmt.Errorf("%w: start third octet %d out of range", errInvalidCIDR, startThird)
	}
	_, outerStart, outerStop, err := expandingBounds(base)
	if err != nil {
		return netip.Prefix{}, err
	}
	first := base.Masked().Addr().As4()[0]

	for outer := outerStart; outer <= outerStop; outer++ {
		innerStart := 0
		if outer == outerStart {
			innerStart = startThird
		}
		for inner := innerStart; inner <= 255; inner++ {
			bucket := netip.PrefixFrom(netip.AddrFrom4([4]byte{first, byte(outer), byte(inner), 0}), 24)
			cand := netip.PrefixFrom(bucket.Addr(), prefixLen)
			for {
				if !used.overlapsAny(cand) {
					return cand, nil
				}
				next, ok := nextBlock(bucket, cand)
				if !ok {
					break
				}
				cand = next
			}
		}
	}
	return netip.Prefix{}, fmt.Errorf("%w: no free /%d starting at %s", errSearchExhausted, prefixLen, base)
}
