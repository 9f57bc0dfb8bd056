package main

import "net/netip"

// reservationSet is the working collection of blocks considered taken.
// It only ever grows within a planning run; the planner works on a
// clone so the caller's snapshot is never mutated.
type reservationSet struct {
	blocks []netip.Prefix
	seen   map[netip.Prefix]struct{}
}

func newReservationSet(blocks ...netip.Prefix) *reservationSet {
	s := &reservationSet{seen: map[netip.Prefix]struct{}{}}
	for _, p := range blocks {
		s.add(p.Masked())
	}
	return s
}

// parseReservations parses an inventory listing. A single malformed
// entry aborts the whole parse; entries with host bits set are
// normalized, duplicates collapse.
func parseReservations(entries []string) (*reservationSet, error) {
	s := newReservationSet()
	for _, raw := range entries {
		p, err := parseBlock(raw)
		if err != nil {
			return nil, err
		}
		s.add(p)
	}
	return s, nil
}

func (s *reservationSet) add(p netip.Prefix) {
	p = p.Masked()
	if _, ok := s.seen[p]; ok {
		return
	}
	s.seen[p] = struct{}{}
	s.blocks = append(s.blocks, p)
}

func (s *reservationSet) overlapsAny(candidate netip.Prefix) bool {
	for _, p := range s.blocks {
		if prefixesOverlap(candidate, p) {
			return true
		}
	}
	return false
}

func (s *reservationSet) clone() *reservationSet {
	out := newReservationSet()
	for _, p := range s.blocks {
		out.add(p)
	}
	return out
}

func (s *reservationSet) len() int {
	return len(s.blocks)
}
