package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/leodido/confines"
)

// Catalog declares resource types, their features, and their providers in
// YAML. It is the CLI's input format: the confines library itself owns no
// file format, so everything here stays on the command side.
//
// Contract:
//   - unknown fields fail closed (strict decoding)
//   - type, feature, and provider names must be non-empty
//   - criteria keys naming no built-in confine kind become fact confines,
//     which is by design and not a catalog error
type Catalog struct {
	Types []TypeSpec `yaml:"types"`
}

// TypeSpec declares one resource type.
type TypeSpec struct {
	Name      string         `yaml:"name"`
	Features  []FeatureSpec  `yaml:"features"`
	Providers []ProviderSpec `yaml:"providers"`
}

// FeatureSpec declares one feature of a type. Docs are required.
type FeatureSpec struct {
	Name    string            `yaml:"name"`
	Docs    string            `yaml:"docs"`
	Confine confines.Criteria `yaml:"confine"`
}

// ProviderSpec declares one provider of a type: its suitability confines,
// its explicitly declared capabilities, and its feature confine extensions.
type ProviderSpec struct {
	Name         string            `yaml:"name"`
	Confine      confines.Criteria `yaml:"confine"`
	Capabilities []string          `yaml:"capabilities"`
	Extend       []ExtendSpec      `yaml:"extend"`
}

// ExtendSpec appends confines to one feature, privately to the declaring
// provider.
type ExtendSpec struct {
	Feature string            `yaml:"feature"`
	Confine confines.Criteria `yaml:"confine"`
}

// LoadCatalog reads and strictly decodes a catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("load catalog: empty path")
	}
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog %q: %w", path, err)
	}

	var c Catalog
	if err := yaml.UnmarshalWithOptions(bs, &c, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("load catalog %q: %w", path, err)
	}
	if len(c.Types) == 0 {
		return nil, fmt.Errorf("load catalog %q: no types declared", path)
	}
	return &c, nil
}

// Build turns the catalog into resource types evaluated against env.
// Declaration bugs in the catalog surface as the library's definition
// errors (duplicate features, unknown capabilities in extend blocks).
func (c *Catalog) Build(env *confines.Env) ([]*confines.ResourceType, error) {
	types := make([]*confines.ResourceType, 0, len(c.Types))
	for _, ts := range c.Types {
		if strings.TrimSpace(ts.Name) == "" {
			return nil, fmt.Errorf("catalog declares a type with an empty name")
		}
		typ := confines.NewResourceType(ts.Name, env)

		for _, fs := range ts.Features {
			if err := typ.DeclareFeature(fs.Name, fs.Docs, fs.Confine); err != nil {
				return nil, err
			}
		}

		for _, ps := range ts.Providers {
			p, err := typ.Provide(ps.Name)
			if err != nil {
				return nil, err
			}
			if len(ps.Confine) > 0 {
				p.Confine(ps.Confine)
			}
			p.DeclareCapabilities(ps.Capabilities...)
			for _, ext := range ps.Extend {
				if err := p.ExtendConfine(ext.Feature, ext.Confine); err != nil {
					return nil, err
				}
			}
		}

		types = append(types, typ)
	}
	return types, nil
}
