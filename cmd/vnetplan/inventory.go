package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// An inventory source returns the address-block literals already
// reserved elsewhere in the account. Sources do not parse CIDRs; the
// core does, so a bad entry is reported against its literal. I/O
// failures here surface unmodified and are not planning errors.
type inventorySource interface {
	Fetch() ([]string, error)
	Name() string
}

// fileSource reads a JSON array or a YAML list of CIDR strings.
type fileSource struct {
	Path string
}

func (s fileSource) Name() string { return "file:" + s.Path }

func (s fileSource) Fetch() ([]string, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}
	var entries []string
	if strings.HasSuffix(s.Path, ".yaml") || strings.HasSuffix(s.Path, ".yml") {
		if err := yaml.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("%s: %w", s.Path, err)
		}
		return entries, nil
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return entries, nil
}

// httpSource fetches a JSON array of CIDR strings from an inventory
// endpoint.
type httpSource struct {
	URL    string
	Client *http.Client
}

func (s httpSource) Name() string { return s.URL }

func (s httpSource) Fetch() ([]string, error) {
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Get(s.URL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inventory %s: unexpected status %s", s.URL, resp.Status)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var entries []string
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("inventory %s: %w", s.URL, err)
	}
	return entries, nil
}

// azureSource shells out to the Azure CLI and queries the address
// spaces of every VNet visible in the subscription.
type azureSource struct {
	Subscription string
}

func (s azureSource) Name() string {
	if s.Subscription != "" {
		return "az:" + s.Subscription
	}
	return "az"
}

func (s azureSource) Fetch() ([]string, error) {
	path, err := exec.LookPath("az")
	if err != nil {
		return nil, fmt.Errorf("azure cli 'az' not found in PATH: %w", err)
	}
	args := []string{"network", "vnet", "list", "--query", "[].addressSpace.addressPrefixes[]", "-o", "json"}
	if s.Subscription != "" {
		args = append(args, "--subscription", s.Subscription)
	}
	out, err := exec.Command(path, args...).Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			return nil, fmt.Errorf("az: %s", strings.TrimSpace(string(ee.Stderr)))
		}
		return nil, fmt.Errorf("az: %w", err)
	}
	if len(strings.TrimSpace(string(out))) == 0 {
		return nil, nil
	}
	var entries []string
	if err := json.Unmarshal(out, &entries); err != nil {
		return nil, fmt.Errorf("az output: %w", err)
	}
	return entries, nil
}
