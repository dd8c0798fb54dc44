// Package snapshot assembles the engine's immutable shared-read state:
// catalog, dependency graph, product matrix, and legacy table, built once
// from a corpus filesystem. Live reload is an atomic swap to a freshly built
// snapshot — in-place mutation of state that is concurrently read is
// explicitly not supported.
package snapshot

import (
	billy "github.com/go-git/go-billy/v5"

	"github.com/agentic-research/loadout/internal/catalog"
	"github.com/agentic-research/loadout/internal/config"
	"github.com/agentic-research/loadout/internal/depgraph"
	"github.com/agentic-research/loadout/internal/extract"
	"github.com/agentic-research/loadout/internal/legacy"
	"github.com/agentic-research/loadout/internal/matrix"
	"github.com/agentic-research/loadout/internal/resolver"
)

// Snapshot is one consistent view of the corpus. Read-only after Build.
type Snapshot struct {
	Catalog  *catalog.Catalog
	Graph    *depgraph.Graph
	Matrix   *matrix.Matrix
	Legacy   *legacy.Translator
	Settings *config.Settings

	extractor *extract.Extractor
}

// Build loads every corpus document relative to the root of fsys.
func Build(fsys billy.Filesystem, settings *config.Settings, est *extract.Estimator) (*Snapshot, error) {
	cat, err := catalog.Load(fsys, settings.Root)
	if err != nil {
		return nil, err
	}

	edges, err := depgraph.LoadEdges(fsys, settings.Deps)
	if err != nil {
		return nil, err
	}
	var known []string
	for _, u := range cat.All() {
		known = append(known, u.ID)
	}

	m, err := matrix.Load(fsys, settings.ProductMatrix)
	if err != nil {
		return nil, err
	}
	tr, err := legacy.Load(fsys, settings.LegacyMappings)
	if err != nil {
		return nil, err
	}

	budgets := extract.Budgets(settings.BudgetMap())
	return &Snapshot{
		Catalog:   cat,
		Graph:     depgraph.Build(known, edges),
		Matrix:    m,
		Legacy:    tr,
		Settings:  settings,
		extractor: extract.New(est, budgets),
	}, nil
}

// Extractor returns the snapshot's content extractor.
func (s *Snapshot) Extractor() *extract.Extractor { return s.extractor }

// Resolver returns a resolver over this snapshot's state.
func (s *Snapshot) Resolver() *resolver.Resolver {
	return &resolver.Resolver{
		Catalog:   s.Catalog,
		Graph:     s.Graph,
		Matrix:    s.Matrix,
		Legacy:    s.Legacy,
		Extractor: s.extractor,
		Baselines: s.Settings.Baselines,
	}
}
