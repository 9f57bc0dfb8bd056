package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

type planDocument struct {
	Network string            `json:"vnetAddressPrefix" yaml:"vnetAddressPrefix"`
	Subnets []planDocSubnet   `json:"subnets" yaml:"subnets"`
	Params  map[string]string `json:"parameters" yaml:"parameters"`
}

type planDocSubnet struct {
	Role      string `json:"role" yaml:"role"`
	CIDR      string `json:"cidr" yaml:"cidr"`
	Network   string `json:"network" yaml:"network"`
	Broadcast string `json:"broadcast" yaml:"broadcast"`
	Usable    uint64 `json:"usable" yaml:"usable"`
}

func buildPlanDocument(plan allocationPlan, reserved int) planDocument {
	doc := planDocument{
		Network: plan.Network.String(),
		Params:  map[string]string{"vnetAddressPrefix": plan.Network.String()},
	}
	for _, sub := range plan.Subnets {
		doc.Subnets = append(doc.Subnets, planDocSubnet{
			Role:      sub.Role,
			CIDR:      sub.Block.String(),
			Network:   sub.Block.Masked().Addr().String(),
			Broadcast: prefixLastAddr(sub.Block).String(),
			Usable:    usableAddresses(sub.Block.Bits(), reserved),
		})
		doc.Params[roleParam(sub.Role)] = sub.Block.String()
	}
	return doc
}

// roleParam derives the Bicep parameter name for a subnet role:
// "web-app" becomes "webAppSubnetAddressPrefix".
func roleParam(role string) string {
	parts := strings.FieldsFunc(role, func(r rune) bool {
		return r == '-' || r == '_' || r == ' ' || r == '.'
	})
	var b strings.Builder
	for i, part := range parts {
		if part == "" {
			continue
		}
		if i == 0 {
			b.WriteString(strings.ToLower(part[:1]) + part[1:])
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]) + part[1:])
	}
	if b.Len() == 0 {
		return "subnetAddressPrefix"
	}
	return b.String() + "SubnetAddressPrefix"
}

func renderBicep(plan allocationPlan) string {
	var b strings.Builder
	b.WriteString("# Bicep parameter values\n")
	b.WriteString("vnetAddressPrefix: " + plan.Network.String() + "\n")
	for _, sub := range plan.Subnets {
		b.WriteString(roleParam(sub.Role) + ": " + sub.Block.String() + "\n")
	}
	return b.String()
}

func renderJSON(plan allocationPlan, reserved int) (string, error) {
	raw, err := json.MarshalIndent(buildPlanDocument(plan, reserved), "", "  ")
	if err != nil {
		return "", err
	}
	return string(raw) + "\n", nil
}

func renderYAML(plan allocationPlan, reserved int) (string, error) {
	raw, err := yaml.Marshal(buildPlanDocument(plan, reserved))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func planRows(plan allocationPlan, reserved int) [][]string {
	rows := [][]string{{"role", "cidr", "network", "broadcast", "prefix", "usable"}}
	rows = append(rows, []string{
		"vnet",
		plan.Network.String(),
		plan.Network.Masked().Addr().String(),
		prefixLastAddr(plan.Network).String(),
		strconv.Itoa(plan.Network.Bits()),
		"",
	})
	for _, sub := range plan.Subnets {
		rows = append(rows, []string{
			sub.Role,
			sub.Block.String(),
			sub.Block.Masked().Addr().String(),
			prefixLastAddr(sub.Block).String(),
			strconv.Itoa(sub.Block.Bits()),
			strconv.FormatUint(usableAddresses(sub.Block.Bits(), reserved), 10),
		})
	}
	return rows
}

func renderCSV(plan allocationPlan, reserved int) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.WriteAll(planRows(plan, reserved)); err != nil {
		return "", err
	}
	w.Flush()
	return b.String(), w.Error()
}

func planXLSX(plan allocationPlan, reserved int) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Plan"
	f.SetSheetName("Sheet1", sheet)
	writeSheetRows(f, sheet, planRows(plan, reserved))
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSheetRows(f *excelize.File, sheet string, rows [][]string) {
	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				continue
			}
			_ = f.SetCellValue(sheet, cell, value)
		}
	}
}

func renderPlan(plan allocationPlan, reserved int, format string) (string, error) {
	switch format {
	case "", "bicep":
		return renderBicep(plan), nil
	case "json":
		return renderJSON(plan, reserved)
	case "yaml":
		return renderYAML(plan, reserved)
	case "csv":
		return renderCSV(plan, reserved)
	}
	return "", fmt.Errorf("unknown output format %q", format)
}
