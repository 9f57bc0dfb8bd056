package main

import (
	"fmt"
	"math/bits"
)

// Azure reserves the network address, the broadcast address, the
// gateway and two platform addresses in every subnet.
const defaultReservedPerSubnet = 5

func nextPowerOfTwo(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	return 1 << uint(bits.Len64(n-1))
}

// prefixForAddresses returns the smallest prefix length whose block
// holds at least total addresses.
func prefixForAddresses(total uint64) (int, error) {
	if total == 0 {
		return 0, fmt.Errorf("%w: address count must be positive", errCapacityUnsatisfiable)
	}
	// nextPowerOfTwo wraps above 2^63, so bound the input first.
	if total > 1<<32 {
		return 0, fmt.Errorf("%w: %d addresses exceed the IPv4 space", errCapacityUnsatisfiable, total)
	}
	size := nextPowerOfTwo(total)
	return 32 - (bits.Len64(size) - 1), nil
}

// subnetPrefixForUsable returns the smallest prefix length whose block
// still offers usable host addresses after the per-subnet reservation
// overhead. Sizing is monotonic: a larger request never yields a
// smaller block.
func subnetPrefixForUsable(usable uint64, reserved int) (int, error) {
	if usable == 0 {
		return 0, fmt.Errorf("%w: usable address count must be positive", errCapacityUnsatisfiable)
	}
	if usable > (1<<32)-uint64(reserved) {
		return 0, fmt.Errorf("%w: %d usable addresses with %d reserved", errCapacityUnsatisfiable, usable, reserved)
	}
	p, err := prefixForAddresses(usable + uint64(reserved))
	if err != nil {
		return 0, fmt.Errorf("%w: %d usable addresses with %d reserved", errCapacityUnsatisfiable, usable, reserved)
	}
	return p, nil
}

func usableAddresses(prefixLen, reserved int) uint64 {
	size := uint64(1) << uint(32-prefixLen)
	if size <= uint64(reserved) {
		return 0
	}
	return size - uint64(reserved)
}
