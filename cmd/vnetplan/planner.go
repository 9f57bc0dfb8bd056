package main

import (
	"fmt"
	"net/netip"
)

var defaultBase = netip.MustParsePrefix("172.16.0.0/16")

// defaultStartThird makes 172.16.1.0/24 the first expanding candidate,
// keeping A.B.0.0/24 free for shared infrastructure.
const defaultStartThird = 1

type subnetRequest struct {
	Role      string
	Prefix    int    // explicit prefix length, 0 when unset
	UsableIPs uint64 // required usable addresses, 0 when unset
}

type planRequest struct {
	Strategy          string
	Base              netip.Prefix
	StartThird        int
	NetworkPrefix     int    // explicit network prefix, 0 when unset
	NetworkIPs        uint64 // explicit total address count, 0 when unset
	ReservedPerSubnet int
	Subnets           []subnetRequest
}

type planSubnet struct {
	Role  string
	Block netip.Prefix
}

type allocationPlan struct {
	Network netip.Prefix
	Subnets []planSubnet
}

func defaultPlanRequest() planRequest {
	return planRequest{
		Strategy:          strategyExpanding,
		Base:              defaultBase,
		StartThird:        defaultStartThird,
		ReservedPerSubnet: defaultReservedPerSubnet,
	}
}

// buildPlan sizes the requested subnets, finds a non-overlapping
// network block with the selected strategy and packs the subnets into
// it in request order. The caller's reservation set is never mutated;
// identical inputs produce identical plans or identical errors.
func buildPlan(existing *reservationSet, req planRequest) (allocationPlan, error) {
	if req.Strategy == "" {
		req.Strategy = strategyExpanding
	}
	if !req.Base.IsValid() {
		req.Base = defaultBase
	}
	if req.ReservedPerSubnet <= 0 {
		req.ReservedPerSubnet = defaultReservedPerSubnet
	}

	sizes, err := sizeSubnets(req.Subnets, req.ReservedPerSubnet)
	if err != nil {
		return allocationPlan{}, err
	}

	netPrefix, err := resolveNetworkPrefix(req, sizes)
	if err != nil {
		return allocationPlan{}, err
	}

	var network netip.Prefix
	switch req.Strategy {
	case strategyBase:
		network, err = searchBase(req.Base, netPrefix, existing)
	case strategyExpanding:
		network, err = searchExpanding(req.Base, netPrefix, req.StartThird, existing)
	default:
		return allocationPlan{}, fmt.Errorf("%w: unknown search strategy %q", errInvalidCIDR, req.Strategy)
	}
	if err != nil {
		return allocationPlan{}, err
	}

	// Working copy: pre-existing reservations plus blocks committed in
	// this run. The chosen network is fixed now, so the search is never
	// re-entered for subnets.
	working := existing.clone()

	plan := allocationPlan{Network: network}
	cursor := uint64(prefixFirstU32(network))
	for i, sub := range req.Subnets {
		block, next, err := packSubnet(network, working, cursor, sizes[i], sub.Role)
		if err != nil {
			return allocationPlan{}, err
		}
		working.add(block)
		cursor = next
		plan.Subnets = append(plan.Subnets, planSubnet{Role: sub.Role, Block: block})
	}
	return plan, nil
}

func sizeSubnets(subnets []subnetRequest, reserved int) ([]int, error) {
	sizes := make([]int, len(subnets))
	for i, sub := range subnets {
		switch {
		case sub.Prefix != 0:
			if err := validPrefixLen(sub.Prefix); err != nil {
				return nil, err
			}
			sizes[i] = sub.Prefix
		case sub.UsableIPs != 0:
			p, err := subnetPrefixForUsable(sub.UsableIPs, reserved)
			if err != nil {
				return nil, fmt.Errorf("subnet %q: %w", sub.Role, err)
			}
			sizes[i] = p
		default:
			return nil, fmt.Errorf("%w: subnet %q requests neither a prefix nor a usable-address count", errCapacityUnsatisfiable, sub.Role)
		}
	}
	return sizes, nil
}

// resolveNetworkPrefix picks the network block size: an explicit prefix
// wins, then an explicit address count, then the smallest block holding
// the sum of the individually sized subnets.
func resolveNetworkPrefix(req planRequest, sizes []int) (int, error) {
	if req.NetworkPrefix != 0 {
		if err := validPrefixLen(req.NetworkPrefix); err != nil {
			return 0, err
		}
		return req.NetworkPrefix, nil
	}
	if req.NetworkIPs != 0 {
		return prefixForAddresses(req.NetworkIPs)
	}
	if len(sizes) == 0 {
		return 0, fmt.Errorf("%w: no subnets and no explicit network size", errCapacityUnsatisfiable)
	}
	var total uint64
	for _, p := range sizes {
		total += uint64(1) << uint(32-p)
	}
	return prefixForAddresses(total)
}

// packSubnet places one block of prefixLen at or after cursor inside
// network: align up to the block boundary, skip forward over anything
// already taken, fail once the candidate leaves the network block.
func packSubnet(network netip.Prefix, used *reservationSet, cursor uint64, prefixLen int, role string) (netip.Prefix, uint64, error) {
	step := uint64(1) << uint(32-prefixLen)
	for {
		aligned, ok := alignUp(cursor, step)
		if !ok || aligned+step > uint64(prefixLastU32(network))+1 {
			return netip.Prefix{}, 0, fmt.Errorf("%w: subnet %q (/%d) does not fit inside %s", errSubnetOverflow, role, prefixLen, network)
		}
		cand := netip.PrefixFrom(u32ToAddr(uint32(aligned)), prefixLen)
		if !used.overlapsAny(cand) {
			return cand, aligned + step, nil
		}
		cursor = aligned + step
	}
}
