package main

import (
	"errors"
	"net/netip"
	"testing"
)

func mustReservations(t *testing.T, entries ...string) *reservationSet {
	t.Helper()
	s, err := parseReservations(entries)
	if err != nil {
		t.Fatalf("parse reservations: %v", err)
	}
	return s
}

func TestSearchBaseFirstFree(t *testing.T) {
	used := mustReservations(t, "10.0.0.0/26", "10.0.0.128/26")
	got, err := searchBase(netip.MustParsePrefix("10.0.0.0/24"), 26, used)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if got.String() != "10.0.0.64/26" {
		t.Fatalf("expected 10.0.0.64/26, got %s", got)
	}
}

func TestSearchBaseExhausted(t *testing.T) {
	used := mustReservations(t, "10.0.0.0/24")
	_, err := searchBase(netip.MustParsePrefix("10.0.0.0/24"), 26, used)
	if !errors.Is(err, errSearchExhausted) {
		t.Fatalf("expected search exhausted, got %v", err)
	}
}

func TestSearchBaseTooLarge(t *testing.T) {
	used := newReservationSet()
	_, err := searchBase(netip.MustParsePrefix("10.0.0.0/24"), 22, used)
	if !errors.Is(err, errSearchExhausted) {
		t.Fatalf("expected search exhausted, got %v", err)
	}
}

// The documented ordering contract: the inner (third) octet advances
// before the outer (second) octet.
func TestExpandingOrderContract(t *testing.T) {
	used := mustReservations(t, "172.16.0.0/24", "172.16.1.0/24")
	got, err := searchExpanding(netip.MustParsePrefix("172.16.0.0/16"), 24, 0, used)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if got.String() != "172.16.2.0/24" {
		t.Fatalf("expected 172.16.2.0/24, got %s", got)
	}
}

func TestExpandingStartThirdOctet(t *testing.T) {
	used := newReservationSet()
	got, err := searchExpanding(netip.MustParsePrefix("10.5.0.0/16"), 24, 1, used)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if got.String() != "10.5.1.0/24" {
		t.Fatalf("expected 10.5.1.0/24, got %s", got)
	}
}

func TestExpandingRollsOverToSecondOctet(t *testing.T) {
	used := mustReservations(t, "10.5.0.0/16")
	got, err := searchExpanding(netip.MustParsePrefix("10.5.0.0/16"), 24, 1, used)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if got.String() != "10.6.0.0/24" {
		t.Fatalf("expected 10.6.0.0/24, got %s", got)
	}
}

func TestExpandingSubBucketCandidates(t *testing.T) {
	used := mustReservations(t, "172.16.1.0/27")
	got, err := searchExpanding(netip.MustParsePrefix("172.16.0.0/16"), 27, 1, used)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if got.String() != "172.16.1.32/27" {
		t.Fatalf("expected 172.16.1.32/27, got %s", got)
	}
}

func TestExpandingExhaustedAfterFullScan(t *testing.T) {
	used := mustReservations(t, "172.16.0.0/12")
	_, err := searchExpanding(netip.MustParsePrefix("172.16.0.0/16"), 24, 0, used)
	if !errors.Is(err, errSearchExhausted) {
		t.Fatalf("expected search exhausted, got %v", err)
	}
}

func TestExpandingRejectsBadInputs(t *testing.T) {
	used := newReservationSet()
	if _, err := searchExpanding(netip.MustParsePrefix("192.168.0.0/16"), 24, 0, used); !errors.Is(err, errInvalidCIDR) {
		t.Fatalf("expected invalid CIDR for base outside the pools, got %v", err)
	}
	if _, err := searchExpanding(netip.MustParsePrefix("10.5.0.0/24"), 26, 0, used); !errors.Is(err, errInvalidCIDR) {
		t.Fatalf("expected invalid CIDR for a non-/16 base, got %v", err)
	}
	if _, err := searchExpanding(netip.MustParsePrefix("10.5.0.0/16"), 22, 0, used); !errors.Is(err, errInvalidCIDR) {
		t.Fatalf("expected invalid CIDR for a target shorter than /24, got %v", err)
	}
}

func TestSearchDoesNotMutateReservations(t *testing.T) {
	used := mustReservations(t, "172.16.1.0/24")
	before := used.len()
	if _, err := searchExpanding(netip.MustParsePrefix("172.16.0.0/16"), 24, 1, used); err != nil {
		t.Fatalf("search: %v", err)
	}
	if _, err := searchBase(netip.MustParsePrefix("172.16.0.0/16"), 24, used); err != nil {
		t.Fatalf("search: %v", err)
	}
	if used.len() != before {
		t.Fatalf("reservation set mutated: %d -> %d", before, used.len())
	}
}
