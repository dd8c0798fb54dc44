// Package matrix expands a named product type into a base identifier set:
// declared unit ids, plus wildcard family references expanded dynamically
// against the live catalog, plus per-language/per-framework substitutions.
// Wildcard membership is never snapshotted in configuration — a newly added
// catalog unit joins a matching family on the next resolution.
package matrix

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"gopkg.in/yaml.v3"

	"github.com/agentic-research/loadout/api"
	"github.com/agentic-research/loadout/internal/catalog"
)

// Matrix is the loaded product-type table.
type Matrix struct {
	products map[string]*api.Product
	ids      []string // sorted product ids, for error messages and listings
}

type matrixDoc struct {
	Products map[string]productEntry `yaml:"products"`
}

type productEntry struct {
	Skills             []string                     `yaml:"skills"`
	Wildcards          []string                     `yaml:"wildcards"`
	LanguageOverrides  map[string]map[string]string `yaml:"language_overrides"`
	FrameworkOverrides map[string]map[string]string `yaml:"framework_overrides"`
}

// Load reads product-matrix.yaml. A missing file yields an empty matrix, in
// which case every product lookup fails with UnknownProductType.
func Load(fsys billy.Filesystem, path string) (*Matrix, error) {
	data, err := util.ReadFile(fsys, path)
	if err != nil {
		if _, statErr := fsys.Stat(path); statErr != nil {
			return New(nil), nil
		}
		return nil, err
	}

	var doc matrixDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	products := make(map[string]*api.Product, len(doc.Products))
	for id, p := range doc.Products {
		products[id] = &api.Product{
			ID:                 id,
			Skills:             p.Skills,
			Wildcards:          p.Wildcards,
			LanguageOverrides:  p.LanguageOverrides,
			FrameworkOverrides: p.FrameworkOverrides,
		}
	}
	return New(products), nil
}

// New builds a matrix from an in-memory product table.
func New(products map[string]*api.Product) *Matrix {
	if products == nil {
		products = map[string]*api.Product{}
	}
	m := &Matrix{products: products}
	for id := range products {
		m.ids = append(m.ids, id)
	}
	sort.Strings(m.ids)
	return m
}

// Products returns the known product ids in sorted order.
func (m *Matrix) Products() []string { return m.ids }

// Get returns the product definition, or UnknownProductTypeError.
func (m *Matrix) Get(id string) (*api.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, &api.UnknownProductTypeError{Product: id, Known: m.ids}
	}
	return p, nil
}

// Resolve expands product into concrete unit ids, in order: declared base
// ids, then wildcard family members (computed against cat at call time),
// then language/framework overrides. Ids without a matching override pass
// through unchanged. An unknown product is fatal; an unknown language or
// framework only downgrades to the generic ids with a warning.
func (m *Matrix) Resolve(product, language, framework string, cat *catalog.Catalog) ([]string, []api.Warning, error) {
	p, err := m.Get(product)
	if err != nil {
		return nil, nil, err
	}

	ids := make([]string, 0, len(p.Skills))
	seen := make(map[string]bool)
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	for _, id := range p.Skills {
		add(id)
	}
	for _, family := range p.Wildcards {
		for _, id := range ExpandFamily(normalizeFamily(family), cat) {
			add(id)
		}
	}

	var warnings []api.Warning
	ids, warnings = applyOverrides(ids, warnings, p.LanguageOverrides, language, api.WarnUnknownLanguage, "language")
	ids, warnings = applyOverrides(ids, warnings, p.FrameworkOverrides, framework, api.WarnUnknownFramework, "framework")
	return ids, warnings, nil
}

// ExpandFamily returns the ids of all catalog units whose category or any
// tag matches the family pattern, sorted for deterministic output. The
// pattern may be a plain tag ("security") or a glob ("sec*").
func ExpandFamily(family string, cat *catalog.Catalog) []string {
	units := cat.Find(func(u *api.Unit) bool {
		if matchTag(family, string(u.Category)) {
			return true
		}
		for _, t := range u.Tags {
			if matchTag(family, t) {
				return true
			}
		}
		return false
	})
	ids := make([]string, len(units))
	for i, u := range units {
		ids[i] = u.ID
	}
	return ids
}

func matchTag(pattern, tag string) bool {
	ok, err := doublestar.Match(pattern, tag)
	return err == nil && ok
}

// normalizeFamily accepts both spellings of a family reference: the bare
// family name ("security") and the directive's wildcard form ("security:*").
func normalizeFamily(ref string) string {
	return strings.TrimSuffix(ref, ":*")
}

// applyOverrides substitutes specialized ids for the requested selector.
// Substitution replaces only the generic id, never drops one: an id with no
// override entry is kept as is. Substitution can collide (a base list naming
// both the generic and the specialized id), so the result is deduplicated.
func applyOverrides(ids []string, warnings []api.Warning, table map[string]map[string]string, selector string, kind api.WarningKind, what string) ([]string, []api.Warning) {
	if selector == "" {
		return ids, warnings
	}
	overrides, ok := table[selector]
	if !ok {
		warnings = append(warnings, api.Warning{
			Kind:    kind,
			Message: fmt.Sprintf("no %s overrides for %q, using generic units", what, selector),
		})
		return ids, warnings
	}
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if specialized, ok := overrides[id]; ok {
			id = specialized
		}
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out, warnings
}
