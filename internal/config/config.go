// Package config loads the engine settings file (loadout.hcl): corpus and
// configuration-document paths, advisory per-level token budgets, and the
// baseline auto-inclusion rules.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

// DefaultFileName is looked for in the corpus base directory.
const DefaultFileName = "loadout.hcl"

// BudgetRule caps one disclosure level at an advisory token count.
type BudgetRule struct {
	Level  int `hcl:"level"`
	Tokens int `hcl:"tokens"`
}

// BaselineRule adds Include to every plan containing a unit that carries
// TriggerTag (as tag or category). Inert when Include is not in the catalog.
type BaselineRule struct {
	TriggerTag string `hcl:"trigger_tag"`
	Include    string `hcl:"include"`
}

// Settings is the decoded loadout.hcl document.
type Settings struct {
	Root           string `hcl:"root,optional"`
	Deps           string `hcl:"deps,optional"`
	ProductMatrix  string `hcl:"product_matrix,optional"`
	LegacyMappings string `hcl:"legacy_mappings,optional"`
	Index          string `hcl:"index,optional"`

	Budgets   []BudgetRule   `hcl:"budget,block"`
	Baselines []BaselineRule `hcl:"baseline,block"`
}

// Default returns the settings used when no loadout.hcl exists: the corpus
// layout of the standards repository and its documented level budgets.
func Default() *Settings {
	return &Settings{
		Root:           "skills",
		Deps:           "config/deps.yaml",
		ProductMatrix:  "config/product-matrix.yaml",
		LegacyMappings: "config/legacy-mappings.yaml",
		Index:          ".loadout.db",
		Budgets: []BudgetRule{
			{Level: 1, Tokens: 2000},
			{Level: 2, Tokens: 5000},
		},
		Baselines: []BaselineRule{
			{TriggerTag: "security", Include: "compliance-baseline"},
		},
	}
}

// Load decodes path, filling unset fields from Default. A missing file is
// not an error — it yields Default unchanged.
func Load(path string) (*Settings, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	var s Settings
	if err := hclsimple.DecodeFile(path, nil, &s); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	def := Default()
	if s.Root == "" {
		s.Root = def.Root
	}
	if s.Deps == "" {
		s.Deps = def.Deps
	}
	if s.ProductMatrix == "" {
		s.ProductMatrix = def.ProductMatrix
	}
	if s.LegacyMappings == "" {
		s.LegacyMappings = def.LegacyMappings
	}
	if s.Index == "" {
		s.Index = def.Index
	}
	if len(s.Budgets) == 0 {
		s.Budgets = def.Budgets
	}
	if len(s.Baselines) == 0 {
		s.Baselines = def.Baselines
	}
	return &s, nil
}

// BudgetMap flattens the budget blocks into level -> tokens.
func (s *Settings) BudgetMap() map[int]int {
	m := make(map[int]int, len(s.Budgets))
	for _, b := range s.Budgets {
		m[b.Level] = b.Tokens
	}
	return m
}
