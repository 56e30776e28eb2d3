// Package config defines the engine configuration: power company identity,
// provider keyword rules, SCID ignore keywords, and reconciliation tuning.
package config

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/spanline/makeready/pkg/errors"
)

// ProviderRule maps a telecom provider's display name to the keywords that
// identify its attachments in survey owner strings.
type ProviderRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Config holds all tunable engine behavior. The zero value is not usable;
// start from Default or Load.
type Config struct {
	// PowerCompany is the electric utility that owns the poles. Its name
	// participates in power-guy and streetlight matching.
	PowerCompany string `yaml:"power_company"`

	// PrimaryProvider is the provider whose proposed attachments drive the
	// make-ready work. Its risers are excluded from existing-riser counts.
	PrimaryProvider string `yaml:"primary_provider"`

	// PowerKeywords identify electric facilities in attachment descriptions.
	PowerKeywords []string `yaml:"power_keywords"`

	// Providers lists the telecom attachers and their matching keywords, in
	// output column order.
	Providers []ProviderRule `yaml:"providers"`

	// CommKeywords identify generic communication attachments for the
	// numbered comm columns.
	CommKeywords []string `yaml:"comm_keywords"`

	// IgnoreSCIDKeywords are stripped from SCIDs during normalization.
	IgnoreSCIDKeywords []string `yaml:"ignore_scid_keywords"`

	// SpanTolerance is the maximum difference, in feet, at which a QC span
	// length replaces the surveyed one.
	SpanTolerance float64 `yaml:"span_tolerance"`
}

// Default returns the stock configuration for Consumers Energy territory.
func Default() *Config {
	return &Config{
		PowerCompany:    "CONSUMERS ENERGY",
		PrimaryProvider: "Proposed MetroNet",
		PowerKeywords: []string{
			"Primary",
			"Secondary",
			"Neutral",
			"Secondary Drip Loop",
			"Riser",
			"Transformer",
		},
		Providers: []ProviderRule{
			{Name: "Proposed MetroNet", Keywords: []string{"MetroNet", "MNT", "Proposed MNT"}},
			{Name: "Lightower", Keywords: []string{"lightower", "Lightower"}},
			{Name: "Comcast", Keywords: []string{"comcast", "Comcast"}},
			{Name: "Verizon", Keywords: []string{"verizon", "Verizon"}},
			{Name: "AT&T", Keywords: []string{"AT&T", "ATT"}},
			{Name: "Zayo", Keywords: []string{"zayo", "Zayo"}},
			{Name: "Jackson ISD", Keywords: []string{"JACKSON ISD"}},
		},
		CommKeywords: []string{
			"catv com",
			"telco com",
			"fiber optic com",
			"insulator",
			"power guy",
			"catv",
			"telco",
			"fiber",
			"communication",
			"comm",
		},
		IgnoreSCIDKeywords: []string{
			"AT&T",
			"Unknown",
			"POLE",
			"FOREIGN",
		},
		SpanTolerance: 3.0,
	}
}

// Load reads a YAML configuration file. Fields absent from the file keep
// their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.WrapParse("config", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if c.PowerCompany == "" {
		return &errors.ValidationError{Field: "power_company", Message: "must not be empty"}
	}
	if len(c.Providers) == 0 {
		return &errors.ValidationError{Field: "providers", Message: "at least one provider rule is required"}
	}
	seen := make(map[string]bool, len(c.Providers))
	for _, p := range c.Providers {
		if p.Name == "" {
			return &errors.ValidationError{Field: "providers", Message: "provider name must not be empty"}
		}
		if seen[p.Name] {
			return &errors.ValidationError{Field: "providers", Message: "duplicate provider " + p.Name}
		}
		seen[p.Name] = true
	}
	if c.SpanTolerance < 0 {
		return &errors.ValidationError{Field: "span_tolerance", Message: "must not be negative"}
	}
	return nil
}

// ProviderNames returns provider display names in configured order.
func (c *Config) ProviderNames() []string {
	names := make([]string, len(c.Providers))
	for i, p := range c.Providers {
		names[i] = p.Name
	}
	return names
}
