package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var planFlags struct {
	existing     string
	inventoryURL string
	subscription string
	snapshot     string

	base       string
	strategy   string
	startThird int
	vnetPrefix int
	vnetIPs    uint64
	reserved   int

	subnets []string

	webappIPs          uint64
	privateEndpointIPs uint64
	webappPrefix       int
	peSubnetPrefix     int

	format string
	out    string
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute an allocation plan against the current inventory",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := resolvePlanEntries()
		if err != nil {
			return err
		}
		existing, err := parseReservations(entries)
		if err != nil {
			return err
		}

		req := defaultPlanRequest()
		req.Strategy = planFlags.strategy
		req.StartThird = planFlags.startThird
		req.NetworkPrefix = planFlags.vnetPrefix
		req.NetworkIPs = planFlags.vnetIPs
		if planFlags.reserved > 0 {
			req.ReservedPerSubnet = planFlags.reserved
		}
		if planFlags.base != "" {
			base, err := parseBlock(planFlags.base)
			if err != nil {
				return err
			}
			req.Base = base
		}
		req.Subnets, err = resolveSubnetRequests()
		if err != nil {
			return err
		}

		plan, err := buildPlan(existing, req)
		if err != nil {
			return err
		}

		if planFlags.out != "" {
			raw, err := planXLSX(plan, req.ReservedPerSubnet)
			if err != nil {
				return err
			}
			if err := os.WriteFile(planFlags.out, raw, 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", planFlags.out)
			return nil
		}
		out, err := renderPlan(plan, req.ReservedPerSubnet, planFlags.format)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	f := planCmd.Flags()
	f.StringVar(&planFlags.existing, "existing", "", "path to a JSON or YAML file with existing CIDRs (skips the live query)")
	f.StringVar(&planFlags.inventoryURL, "inventory-url", "", "URL returning a JSON array of existing CIDRs")
	f.StringVar(&planFlags.subscription, "subscription", "", "Azure subscription for the az query")
	f.StringVar(&planFlags.snapshot, "snapshot", "", "load existing CIDRs from a stored snapshot label")

	f.StringVar(&planFlags.base, "base", defaultBase.String(), "base CIDR to search within")
	f.StringVar(&planFlags.strategy, "strategy", strategyExpanding, "search strategy: expanding or base")
	f.IntVar(&planFlags.startThird, "start-third-octet", defaultStartThird, "first third octet tried by the expanding search")
	f.IntVar(&planFlags.vnetPrefix, "vnet-prefix", 0, "explicit VNet prefix length (default: sized from the subnets)")
	f.Uint64Var(&planFlags.vnetIPs, "vnet-ips", 0, "total addresses for the VNet (alternative to --vnet-prefix)")
	f.IntVar(&planFlags.reserved, "reserved-per-subnet", defaultReservedPerSubnet, "addresses the platform reserves in every subnet")

	f.StringArrayVar(&planFlags.subnets, "subnet", nil, "subnet request, e.g. role=webapp,ips=30 or role=db,prefix=27 (repeatable)")
	f.Uint64Var(&planFlags.webappIPs, "webapp-ips", 0, "usable IPs for the webapp subnet")
	f.Uint64Var(&planFlags.privateEndpointIPs, "private-endpoint-ips", 0, "usable IPs for the private endpoint subnet")
	f.IntVar(&planFlags.webappPrefix, "webapp-subnet-prefix", 27, "webapp subnet prefix length")
	f.IntVar(&planFlags.peSubnetPrefix, "private-endpoint-subnet-prefix", 27, "private endpoint subnet prefix length")

	f.StringVar(&planFlags.format, "format", "bicep", "output format: bicep, json, yaml or csv")
	f.StringVar(&planFlags.out, "out", "", "write the plan as an xlsx file instead of printing")
}

func resolvePlanEntries() ([]string, error) {
	if planFlags.snapshot != "" {
		db, err := openStore()
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return loadSnapshotEntries(db, planFlags.snapshot)
	}
	return inventoryFromFlags(planFlags.existing, planFlags.inventoryURL, planFlags.subscription).Fetch()
}

// inventoryFromFlags picks the collaborator that supplies the existing
// reservations. Without an explicit choice the Azure CLI is queried,
// matching the original workflow this tool automates.
func inventoryFromFlags(existing, url, subscription string) inventorySource {
	switch {
	case existing != "":
		return fileSource{Path: existing}
	case url != "":
		return httpSource{URL: url}
	default:
		return azureSource{Subscription: subscription}
	}
}

// resolveSubnetRequests builds the ordered subnet list. Explicit
// --subnet flags win; otherwise the two historical roles are requested,
// sized by the shorthand flags.
func resolveSubnetRequests() ([]subnetRequest, error) {
	if len(planFlags.subnets) > 0 {
		out := make([]subnetRequest, 0, len(planFlags.subnets))
		for _, raw := range planFlags.subnets {
			sub, err := parseSubnetFlag(raw)
			if err != nil {
				return nil, err
			}
			out = append(out, sub)
		}
		return out, nil
	}
	webapp := subnetRequest{Role: "webapp", Prefix: planFlags.webappPrefix}
	if planFlags.webappIPs > 0 {
		webapp = subnetRequest{Role: "webapp", UsableIPs: planFlags.webappIPs}
	}
	pe := subnetRequest{Role: "private-endpoint", Prefix: planFlags.peSubnetPrefix}
	if planFlags.privateEndpointIPs > 0 {
		pe = subnetRequest{Role: "private-endpoint", UsableIPs: planFlags.privateEndpointIPs}
	}
	return []subnetRequest{webapp, pe}, nil
}

func parseSubnetFlag(raw string) (subnetRequest, error) {
	var sub subnetRequest
	for _, part := range strings.Split(raw, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			return subnetRequest{}, fmt.Errorf("invalid --subnet entry %q: expected key=value pairs", raw)
		}
		switch key {
		case "role":
			sub.Role = value
		case "prefix":
			n, err := strconv.Atoi(value)
			if err != nil {
				return subnetRequest{}, fmt.Errorf("invalid --subnet prefix in %q: %v", raw, err)
			}
			sub.Prefix = n
		case "ips", "usable":
			n, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return subnetRequest{}, fmt.Errorf("invalid --subnet ips in %q: %v", raw, err)
			}
			sub.UsableIPs = n
		default:
			return subnetRequest{}, fmt.Errorf("unknown --subnet key %q in %q", key, raw)
		}
	}
	if sub.Role == "" {
		return subnetRequest{}, fmt.Errorf("--subnet entry %q is missing role=", raw)
	}
	return sub, nil
}
