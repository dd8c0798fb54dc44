// Package resolver orchestrates a resolution: it gathers seed ids from all
// request sources, validates them against the catalog, expands them to their
// requires closure, enforces conflict freedom, applies baseline
// auto-inclusion, and prices the result. Stateless across requests; the same
// request against an unchanged catalog yields an identical plan.
package resolver

import (
	"fmt"

	"github.com/agentic-research/loadout/api"
	"github.com/agentic-research/loadout/internal/catalog"
	"github.com/agentic-research/loadout/internal/config"
	"github.com/agentic-research/loadout/internal/depgraph"
	"github.com/agentic-research/loadout/internal/extract"
	"github.com/agentic-research/loadout/internal/legacy"
	"github.com/agentic-research/loadout/internal/matrix"
)

// Resolver bundles the immutable shared-read state a resolution needs.
// Safe for concurrent use: no field is mutated after construction.
type Resolver struct {
	Catalog   *catalog.Catalog
	Graph     *depgraph.Graph
	Matrix    *matrix.Matrix
	Legacy    *legacy.Translator
	Extractor *extract.Extractor
	Baselines []config.BaselineRule
}

// Resolve runs the full pipeline for one request. Fatal conditions return an
// error and no plan; advisory conditions land in the plan's warnings. A
// conflicting selection returns both the error and a plan carrying the
// offending pairs so callers can display them.
func (r *Resolver) Resolve(req *api.LoadRequest) (*api.Plan, error) {
	level := req.Level
	if level == 0 {
		level = 1
	}
	var warnings []api.Warning

	// Gather seeds from every source in declaration order. Duplicates are
	// dropped on first-seen basis so the closure order stays stable.
	var seeds []string
	seen := make(map[string]bool)
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			seeds = append(seeds, id)
		}
	}

	for _, id := range req.Explicit {
		add(id)
	}
	for _, code := range req.LegacyCodes {
		id, ok := r.Legacy.Translate(code)
		if !ok {
			warnings = append(warnings, api.Warning{
				Kind:    api.WarnUntranslatable,
				Message: fmt.Sprintf("legacy code %q has no mapping, skipped", code),
			})
			continue
		}
		add(id)
	}
	if req.Product != "" {
		ids, w, err := r.Matrix.Resolve(req.Product, req.Language, req.Framework, r.Catalog)
		if err != nil {
			return nil, err
		}
		warnings = append(warnings, w...)
		for _, id := range ids {
			add(id)
		}
	}
	for _, family := range req.Wildcards {
		for _, id := range matrix.ExpandFamily(family, r.Catalog) {
			add(id)
		}
	}
	for _, id := range req.Recommendations {
		add(id)
	}

	// Validate: every gathered id must exist. A mistyped id is reported,
	// never silently dropped into a smaller-than-requested plan.
	for _, id := range seeds {
		if !r.Catalog.Has(id) {
			return nil, &api.UnknownIdentifierError{ID: id}
		}
	}

	ordered, err := r.Graph.Closure(seeds)
	if err != nil {
		return nil, err
	}

	// Baseline auto-inclusion, then re-closure so a baseline's own
	// requirements are honored. Re-running closure over the expanded order
	// preserves first-discovered positions for everything already present.
	ordered, warnings = r.applyBaselines(ordered, warnings)
	ordered, err = r.Graph.Closure(ordered)
	if err != nil {
		return nil, err
	}

	// Conflict check runs on the final post-closure, post-baseline set so a
	// pair introduced by either expansion step is caught.
	if pairs := r.Graph.DetectConflicts(ordered); len(pairs) > 0 {
		plan := &api.Plan{OrderedIDs: nil, Conflicts: pairs, Warnings: warnings, Level: level}
		return plan, &api.ConflictError{Pairs: pairs}
	}

	// Advisory edges not taken are surfaced, never auto-included.
	for _, e := range r.Graph.Advisories(ordered) {
		warnings = append(warnings, api.Warning{
			Kind:    api.WarnAdvisoryEdge,
			Message: fmt.Sprintf("%s %s %s (not included)", e.From, e.Kind, e.To),
		})
	}

	total := api.CostEstimate{Method: r.Extractor.Method()}
	for _, id := range ordered {
		u, err := r.Catalog.Get(id)
		if err != nil {
			return nil, err
		}
		total.Tokens += r.Extractor.Estimate(u, level).Tokens
		if w, over := r.Extractor.CheckBudget(u, level); over {
			warnings = append(warnings, w)
		}
	}

	return &api.Plan{
		OrderedIDs: ordered,
		Warnings:   warnings,
		TotalCost:  total,
		Level:      level,
	}, nil
}

// applyBaselines appends each triggered baseline id not already selected,
// with one informational warning per inclusion. A rule whose include id is
// absent from the catalog is inert.
func (r *Resolver) applyBaselines(ordered []string, warnings []api.Warning) ([]string, []api.Warning) {
	selected := make(map[string]bool, len(ordered))
	for _, id := range ordered {
		selected[id] = true
	}

	for _, rule := range r.Baselines {
		if selected[rule.Include] || !r.Catalog.Has(rule.Include) {
			continue
		}
		for _, id := range ordered {
			u, err := r.Catalog.Get(id)
			if err != nil {
				continue
			}
			if u.HasTag(rule.TriggerTag) {
				ordered = append(ordered, rule.Include)
				selected[rule.Include] = true
				warnings = append(warnings, api.Warning{
					Kind:    api.WarnBaselineInclude,
					Message: fmt.Sprintf("%s auto-included: %s carries the %q tag", rule.Include, id, rule.TriggerTag),
				})
				break
			}
		}
	}
	return ordered, warnings
}
