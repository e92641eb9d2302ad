package common

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"
)

// EndpointPolicy overrides how long an unwatched query result is kept
type EndpointPolicy struct {
	Endpoint      string `yaml:"endpoint"`
	KeepUnusedFor string `yaml:"keep_unused_for"`
}

type CachePolicyConfig struct {
	Endpoints []EndpointPolicy `yaml:"endpoints"`
}

// LoadCachePolicy reads per-endpoint retention from a YAML file such as:
//
//	endpoints:
//	  - endpoint: wallet.balances
//	    keep_unused_for: 10s
func LoadCachePolicy(policyFile string) (map[string]time.Duration, error) {
	var policyPath string
	if filepath.IsAbs(policyFile) {
		policyPath = policyFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		policyPath = filepath.Join(wd, policyFile)
	}

	data, err := os.ReadFile(policyPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", policyFile, err)
	}

	var config CachePolicyConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", policyFile, err)
	}

	retention := make(map[string]time.Duration, len(config.Endpoints))
	for i, p := range config.Endpoints {
		if p.Endpoint == "" {
			return nil, fmt.Errorf("policy at index %d missing endpoint", i)
		}
		d, err := time.ParseDuration(p.KeepUnusedFor)
		if err != nil {
			return nil, fmt.Errorf("policy %s: invalid keep_unused_for %q: %w", p.Endpoint, p.KeepUnusedFor, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("policy %s: keep_unused_for must be positive", p.Endpoint)
		}
		retention[p.Endpoint] = d
	}

	return retention, nil
}
