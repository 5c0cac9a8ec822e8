package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/good-yellow-bee/admon/internal/models"
)

// TenantsConfig is the top-level YAML document for the tenant list.
type TenantsConfig struct {
	Tenants []models.Tenant `yaml:"tenants"`
}

// LoadTenantsFromFile loads the tenant list from a YAML file.
func LoadTenantsFromFile(path string) ([]models.Tenant, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tenants file: %w", err)
	}
	defer f.Close()

	return LoadTenants(f)
}

// LoadTenants loads the tenant list from a reader.
func LoadTenants(r io.Reader) ([]models.Tenant, error) {
	var cfg TenantsConfig
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse tenants YAML: %w", err)
	}

	seen := make(map[string]bool, len(cfg.Tenants))
	for i := range cfg.Tenants {
		t := &cfg.Tenants[i]
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("invalid tenant at index %d: %w", i, err)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("duplicate tenant id %q", t.ID)
		}
		seen[t.ID] = true
	}

	return cfg.Tenants, nil
}
