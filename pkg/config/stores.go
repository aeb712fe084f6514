package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultStore is used when no store is named
const DefaultStore = "mexico"

var (
	// ErrUnsupportedStore is returned for a store id missing from the registry
	ErrUnsupportedStore = errors.New("unsupported store")
	// ErrMissingCredentials is returned when a store has no Shopify domain or token
	ErrMissingCredentials = errors.New("missing shopify credentials")
	// ErrMissingSpreadsheetID is returned when the catalog spreadsheet is not configured
	ErrMissingSpreadsheetID = errors.New("missing google spreadsheet id")
)

// StoreDefinition is the static description of a supported store
type StoreDefinition struct {
	DisplayName  string `yaml:"display_name"`
	EnvSuffix    string `yaml:"env_suffix"`
	SheetSuffix  string `yaml:"sheet_suffix"`
	APIVersion   string `yaml:"api_version"`
	LocationName string `yaml:"location_name,omitempty"`
	// LegacyEnv allows the unsuffixed SHOPIFY_* variables as a fallback
	LegacyEnv bool `yaml:"legacy_env,omitempty"`
}

// StoreConfig is a store definition with its resolved credentials
type StoreConfig struct {
	ID string
	StoreDefinition
	ShopDomain  string
	AccessToken string
}

// Registry maps store ids to definitions
type Registry map[string]StoreDefinition

// DefaultRegistry returns the built-in stores
func DefaultRegistry() Registry {
	return Registry{
		"mexico": {
			DisplayName:  "Mexico",
			EnvSuffix:    "_MX",
			SheetSuffix:  " - Mexico",
			APIVersion:   "2024-01",
			LocationName: "Segmail",
			LegacyEnv:    true,
		},
		"usa": {
			DisplayName:  "USA",
			EnvSuffix:    "_US",
			SheetSuffix:  " - USA",
			APIVersion:   "2026-01",
			LocationName: "Sage Distribution",
		},
	}
}

// LoadRegistry reads a YAML store registry of the form
//
//	stores:
//	  mexico:
//	    display_name: Mexico
//	    env_suffix: _MX
//
// An empty path returns the built-in registry.
func LoadRegistry(path string) (Registry, error) {
	if path == "" {
		return DefaultRegistry(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load store registry: %w", err)
	}

	var file struct {
		Stores map[string]StoreDefinition `yaml:"stores"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse store registry %s: %w", path, err)
	}
	if len(file.Stores) == 0 {
		return nil, fmt.Errorf("store registry %s defines no stores", path)
	}

	registry := make(Registry, len(file.Stores))
	for id, def := range file.Stores {
		if def.DisplayName == "" {
			def.DisplayName = id
		}
		registry[strings.ToLower(id)] = def
	}
	return registry, nil
}

// IDs returns the store ids in sorted order
func (r Registry) IDs() []string {
	ids := make([]string, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Resolve returns the store with credentials read from the environment.
// An empty id selects DefaultStore.
func (r Registry) Resolve(id string) (StoreConfig, error) {
	if id == "" {
		id = DefaultStore
	}
	id = strings.ToLower(id)

	def, ok := r[id]
	if !ok {
		return StoreConfig{}, fmt.Errorf("%w: %q (supported stores: %s)", ErrUnsupportedStore, id, strings.Join(r.IDs(), ", "))
	}

	domainKey := "SHOPIFY_SHOP_DOMAIN" + def.EnvSuffix
	tokenKey := "SHOPIFY_ACCESS_TOKEN" + def.EnvSuffix
	domain := getEnv(domainKey, "")
	token := getEnv(tokenKey, "")
	if def.LegacyEnv {
		if domain == "" {
			domain = getEnv("SHOPIFY_SHOP_DOMAIN", "")
		}
		if token == "" {
			token = getEnv("SHOPIFY_ACCESS_TOKEN", "")
		}
	}

	if domain == "" || token == "" {
		return StoreConfig{}, fmt.Errorf("%w for %s store: set %s and %s", ErrMissingCredentials, def.DisplayName, domainKey, tokenKey)
	}

	return StoreConfig{
		ID:              id,
		StoreDefinition: def,
		ShopDomain:      domain,
		AccessToken:     token,
	}, nil
}

// Definition returns a store definition without resolving credentials
func (r Registry) Definition(id string) (StoreDefinition, error) {
	if id == "" {
		id = DefaultStore
	}
	def, ok := r[strings.ToLower(id)]
	if !ok {
		return StoreDefinition{}, fmt.Errorf("%w: %q", ErrUnsupportedStore, id)
	}
	return def, nil
}

// Available returns id → display name for stores whose credentials are configured
func (r Registry) Available() map[string]string {
	out := make(map[string]string)
	for id, def := range r {
		if _, err := r.Resolve(id); err == nil {
			out[id] = def.DisplayName
		}
	}
	return out
}

// All returns id → display name for every registered store
func (r Registry) All() map[string]string {
	out := make(map[string]string, len(r))
	for id, def := range r {
		out[id] = def.DisplayName
	}
	return out
}

// RequireSpreadsheet checks that the catalog spreadsheet is configured
func (c *Config) RequireSpreadsheet() error {
	if c.Google.SpreadsheetID == "" {
		return fmt.Errorf("%w: set GOOGLE_SPREADSHEET_ID", ErrMissingSpreadsheetID)
	}
	return nil
}
