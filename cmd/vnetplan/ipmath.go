package main

import "net/netip"

// IPv4-only address arithmetic on uint32 values. All prefixes handled
// here are assumed canonical (Masked) unless noted.

func addrToU32(a netip.Addr) uint32 {
	b := a.As4()
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func u32ToAddr(v uint32) netip.Addr {
	return netip.AddrFrom4([4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
}

// prefixSize returns the number of addresses in p as a uint64 so that
// /0 (2^32) does not overflow.
func prefixSize(p netip.Prefix) uint64 {
	return uint64(1) << uint(32-p.Bits())
}

func prefixFirstU32(p netip.Prefix) uint32 {
	return addrToU32(p.Masked().Addr())
}

func prefixLastU32(p netip.Prefix) uint32 {
	return prefixFirstU32(p) + uint32(prefixSize(p)-1)
}

func prefixLastAddr(p netip.Prefix) netip.Addr {
	return u32ToAddr(prefixLastU32(p))
}

func prefixWithin(pool, p netip.Prefix) bool {
	return prefixFirstU32(p) >= prefixFirstU32(pool) && prefixLastU32(p) <= prefixLastU32(pool)
}

func prefixesOverlap(a, b netip.Prefix) bool {
	return prefixFirstU32(a) <= prefixLastU32(b) && prefixFirstU32(b) <= prefixLastU32(a)
}

// alignUp rounds n up to the next multiple of step. step must be a
// power of two. Returns false on wrap past the end of the IPv4 space.
func alignUp(n uint64, step uint64) (uint64, bool) {
	if step == 0 {
		return n, true
	}
	rem := n % step
	if rem == 0 {
		return n, true
	}
	out := n + step - rem
	if out > 1<<32 {
		return 0, false
	}
	return out, true
}
