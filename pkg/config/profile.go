// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads and validates run profiles. A profile is a
// YAML file capturing the full parameter set of a search run, so long
// or partitioned runs are reproducible without retyping flag soup.
// CLI flags override profile values field by field.
package config

import (
	"fmt"
	"math/big"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/truncprimes/pkg/truncprime"
)

// =============================================================================
// Shared Validator Instance
// =============================================================================

// profileValidate is the validator instance for profiles, initialized
// in init() with the custom prime-type rule.
var profileValidate *validator.Validate

func init() {
	profileValidate = validator.New()
	_ = profileValidate.RegisterValidation("primetype", validatePrimeType)
}

// validatePrimeType accepts exactly the short names the search engine
// understands: r, l, lor, lar.
func validatePrimeType(fl validator.FieldLevel) bool {
	_, err := truncprime.ParseMode(fl.Field().String())
	return err == nil
}

// Profile is one reproducible run description.
//
// Thread Safety: safe to read concurrently, not safe to modify after
// loading.
type Profile struct {
	// Base is the number base of the search, 2-255.
	Base uint32 `yaml:"base" validate:"min=2,max=255"`

	// PrimeType is the truncation property: r, l, lor or lar.
	PrimeType string `yaml:"prime_type" validate:"required,primetype"`

	// MaxLength bounds digit lengths; 0 means unbounded.
	MaxLength int `yaml:"max_length" validate:"min=0"`

	// Root restricts the run to one subtree, as a decimal string so
	// arbitrarily large roots survive YAML intact. Empty means the
	// full forest.
	Root string `yaml:"root" validate:"omitempty,number"`

	// VerifyRoot checks an explicit root before producing output.
	VerifyRoot bool `yaml:"verify_root"`

	// Output is the tree stream destination; empty or "-" is stdout.
	Output string `yaml:"output"`

	// StatsOutput is the statistics report destination; empty or "-"
	// is stderr, keeping stdout clean for the tree bytes.
	StatsOutput string `yaml:"stats_output"`

	// Parallel is the worker count for partitioned full-forest runs.
	// 0 disables partitioning; negative means GOMAXPROCS.
	Parallel int `yaml:"parallel"`

	// MetricsPort exposes Prometheus metrics on localhost when
	// nonzero.
	MetricsPort int `yaml:"metrics_port" validate:"min=0,max=65535"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`

	// LogDir enables JSON file logging when set.
	LogDir string `yaml:"log_dir"`

	// LogJSON switches stderr logging to JSON.
	LogJSON bool `yaml:"log_json"`
}

// Default returns the profile used when no file and no flags are
// given: a base-10 right-truncatable run streaming to stdout.
func Default() Profile {
	return Profile{
		Base:      10,
		PrimeType: "r",
		LogLevel:  "info",
	}
}

// Load reads a profile file over the defaults and validates the
// result.
func Load(path string) (Profile, error) {
	p := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

// Validate checks field constraints and the cross-field rules the tag
// language cannot express.
func (p *Profile) Validate() error {
	if err := profileValidate.Struct(p); err != nil {
		return err
	}
	if p.Root != "" && p.Parallel != 0 {
		return fmt.Errorf("an explicit root cannot be combined with parallel workers")
	}
	return nil
}

// Mode returns the parsed prime type.
func (p *Profile) Mode() (truncprime.Mode, error) {
	return truncprime.ParseMode(p.PrimeType)
}

// RootInt parses the root string, returning nil for a full-forest
// profile.
func (p *Profile) RootInt() (*big.Int, error) {
	if p.Root == "" {
		return nil, nil
	}
	n, ok := new(big.Int).SetString(p.Root, 10)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("root must be a nonnegative decimal integer, got %q", p.Root)
	}
	if n.Sign() == 0 {
		return nil, nil
	}
	return n, nil
}
