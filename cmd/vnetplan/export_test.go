package main

import (
	"encoding/json"
	"net/netip"
	"strings"
	"testing"
)

func testPlan() allocationPlan {
	return allocationPlan{
		Network: netip.MustParsePrefix("172.16.1.0/26"),
		Subnets: []planSubnet{
			{Role: "webapp", Block: netip.MustParsePrefix("172.16.1.0/27")},
			{Role: "private-endpoint", Block: netip.MustParsePrefix("172.16.1.32/27")},
		},
	}
}

func TestRoleParam(t *testing.T) {
	cases := map[string]string{
		"webapp":           "webappSubnetAddressPrefix",
		"web-app":          "webAppSubnetAddressPrefix",
		"private-endpoint": "privateEndpointSubnetAddressPrefix",
		"Primary":          "primarySubnetAddressPrefix",
		"db_replica":       "dbReplicaSubnetAddressPrefix",
	}
	for role, want := range cases {
		if got := roleParam(role); got != want {
			t.Fatalf("roleParam(%q) = %q, want %q", role, got, want)
		}
	}
}

func TestRenderBicep(t *testing.T) {
	out := renderBicep(testPlan())
	want := "# Bicep parameter values\n" +
		"vnetAddressPrefix: 172.16.1.0/26\n" +
		"webappSubnetAddressPrefix: 172.16.1.0/27\n" +
		"privateEndpointSubnetAddressPrefix: 172.16.1.32/27\n"
	if out != want {
		t.Fatalf("bicep output:\n%s\nwant:\n%s", out, want)
	}
}

func TestRenderJSON(t *testing.T) {
	out, err := renderJSON(testPlan(), defaultReservedPerSubnet)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	var doc planDocument
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.Network != "172.16.1.0/26" {
		t.Fatalf("network: %s", doc.Network)
	}
	if len(doc.Subnets) != 2 {
		t.Fatalf("subnets: %d", len(doc.Subnets))
	}
	if doc.Subnets[0].Broadcast != "172.16.1.31" {
		t.Fatalf("broadcast: %s", doc.Subnets[0].Broadcast)
	}
	if doc.Subnets[0].Usable != 27 {
		t.Fatalf("usable: %d", doc.Subnets[0].Usable)
	}
	if doc.Params["privateEndpointSubnetAddressPrefix"] != "172.16.1.32/27" {
		t.Fatalf("params: %v", doc.Params)
	}
}

func TestRenderCSV(t *testing.T) {
	out, err := renderCSV(testPlan(), defaultReservedPerSubnet)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d lines:\n%s", len(lines), out)
	}
	if lines[0] != "role,cidr,network,broadcast,prefix,usable" {
		t.Fatalf("header: %s", lines[0])
	}
	if !strings.HasPrefix(lines[1], "vnet,172.16.1.0/26") {
		t.Fatalf("vnet row: %s", lines[1])
	}
}

func TestRenderPlanUnknownFormat(t *testing.T) {
	if _, err := renderPlan(testPlan(), defaultReservedPerSubnet, "toml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestPlanXLSX(t *testing.T) {
	raw, err := planXLSX(testPlan(), defaultReservedPerSubnet)
	if err != nil {
		t.Fatalf("xlsx: %v", err)
	}
	if len(raw) == 0 {
		t.Fatalf("empty workbook")
	}
	// xlsx files are zip archives
	if raw[0] != 'P' || raw[1] != 'K' {
		t.Fatalf("not a zip container")
	}
}
