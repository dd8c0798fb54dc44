package resolver

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/agentic-research/loadout/api"
	"github.com/agentic-research/loadout/internal/catalog"
	"github.com/agentic-research/loadout/internal/config"
	"github.com/agentic-research/loadout/internal/depgraph"
	"github.com/agentic-research/loadout/internal/extract"
	"github.com/agentic-research/loadout/internal/legacy"
	"github.com/agentic-research/loadout/internal/matrix"
)

type unitSpec struct {
	id, category string
	tags         []string
}

func fixtureResolver(t *testing.T, edges []api.Edge) *Resolver {
	t.Helper()

	fsys := memfs.New()
	units := []unitSpec{
		{"coding-standards", "coding-standards", nil},
		{"python-coding-standards", "coding-standards", []string{"python"}},
		{"unit-testing", "testing", []string{"testing"}},
		{"api-security", "security", []string{"security"}},
		{"security-authentication", "security", []string{"security"}},
		{"compliance-baseline", "compliance", []string{"compliance"}},
		{"token-auth", "security", []string{"security"}},
		{"legacy-sessions", "security", []string{"security"}},
	}
	for _, u := range units {
		doc := fmt.Sprintf(`---
id: %s
description: Fixture unit for %s
category: %s
tags: [%s]
---

## Level 1: Quick Start

Level one body for %s.

## Level 2: Implementation

Level two body for %s.
`, u.id, u.id, u.category, joinTags(u.tags), u.id, u.id)
		path := "skills/" + u.id + "/" + catalog.UnitFileName
		if err := util.WriteFile(fsys, path, []byte(doc), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}

	cat, err := catalog.Load(fsys, "skills")
	if err != nil {
		t.Fatalf("catalog.Load: %v", err)
	}

	var known []string
	for _, u := range cat.All() {
		known = append(known, u.ID)
	}

	return &Resolver{
		Catalog: cat,
		Graph:   depgraph.Build(known, edges),
		Matrix: matrix.New(map[string]*api.Product{
			"api": {
				ID:     "api",
				Skills: []string{"coding-standards", "unit-testing", "api-security"},
				LanguageOverrides: map[string]map[string]string{
					"python": {"coding-standards": "python-coding-standards"},
				},
			},
		}),
		Legacy: legacy.New(map[string]map[string]string{
			"SEC": {"auth": "security-authentication"},
		}),
		Extractor: extract.New(extract.NewHeuristicEstimator(), nil),
		Baselines: []config.BaselineRule{
			{TriggerTag: "security", Include: "compliance-baseline"},
		},
	}
}

func joinTags(tags []string) string {
	out := ""
	for i, tg := range tags {
		if i > 0 {
			out += ", "
		}
		out += tg
	}
	return out
}

func requires(from, to string) api.Edge {
	return api.Edge{From: from, To: to, Kind: api.EdgeRequires}
}

func countWarnings(plan *api.Plan, kind api.WarningKind) int {
	n := 0
	for _, w := range plan.Warnings {
		if w.Kind == kind {
			n++
		}
	}
	return n
}

func TestResolve_ProductClosureAndBaseline(t *testing.T) {
	r := fixtureResolver(t, []api.Edge{
		requires("api-security", "security-authentication"),
	})

	plan, err := r.Resolve(&api.LoadRequest{Product: "api", Level: 1})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := []string{
		"coding-standards", "unit-testing", "api-security",
		"security-authentication", "compliance-baseline",
	}
	if !reflect.DeepEqual(plan.OrderedIDs, want) {
		t.Errorf("OrderedIDs = %v, want %v", plan.OrderedIDs, want)
	}
	if got := countWarnings(plan, api.WarnBaselineInclude); got != 1 {
		t.Errorf("baseline warnings = %d, want exactly 1", got)
	}
}

func TestResolve_ExplicitPairCostIsLevelOneSum(t *testing.T) {
	r := fixtureResolver(t, nil)

	plan, err := r.Resolve(&api.LoadRequest{Explicit: []string{"coding-standards", "unit-testing"}, Level: 1})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !reflect.DeepEqual(plan.OrderedIDs, []string{"coding-standards", "unit-testing"}) {
		t.Errorf("OrderedIDs = %v", plan.OrderedIDs)
	}

	var sum int
	for _, id := range plan.OrderedIDs {
		u, err := r.Catalog.Get(id)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		sum += r.Extractor.Estimate(u, 1).Tokens
	}
	if plan.TotalCost.Tokens != sum {
		t.Errorf("TotalCost = %d, want %d", plan.TotalCost.Tokens, sum)
	}
	if plan.TotalCost.Method != api.CostHeuristic {
		t.Errorf("Method = %q", plan.TotalCost.Method)
	}
}

func TestResolve_LanguageOverride(t *testing.T) {
	r := fixtureResolver(t, nil)

	plan, err := r.Resolve(&api.LoadRequest{Product: "api", Language: "python", Level: 1})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if plan.OrderedIDs[0] != "python-coding-standards" {
		t.Errorf("OrderedIDs = %v, want python override first", plan.OrderedIDs)
	}
	for _, id := range plan.OrderedIDs {
		if id == "coding-standards" {
			t.Errorf("generic id survived the override: %v", plan.OrderedIDs)
		}
	}
}

func TestResolve_ConflictIsFatalWithBothIDsNamed(t *testing.T) {
	r := fixtureResolver(t, []api.Edge{
		{From: "token-auth", To: "legacy-sessions", Kind: api.EdgeConflicts},
	})

	plan, err := r.Resolve(&api.LoadRequest{Explicit: []string{"token-auth", "legacy-sessions"}, Level: 1})
	var conflict *api.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
	if len(conflict.Pairs) != 1 {
		t.Fatalf("Pairs = %v", conflict.Pairs)
	}
	if conflict.Pairs[0] != [2]string{"legacy-sessions", "token-auth"} {
		t.Errorf("pair = %v", conflict.Pairs[0])
	}
	if plan == nil || len(plan.OrderedIDs) != 0 {
		t.Error("no partial ordering may be returned on conflict")
	}
}

func TestResolve_UnknownIdentifierIsFatal(t *testing.T) {
	r := fixtureResolver(t, nil)

	_, err := r.Resolve(&api.LoadRequest{Explicit: []string{"coding-standards", "no-such-unit"}, Level: 1})
	var unknown *api.UnknownIdentifierError
	if !errors.As(err, &unknown) {
		t.Fatalf("err = %v, want UnknownIdentifierError", err)
	}
	if unknown.ID != "no-such-unit" {
		t.Errorf("ID = %q", unknown.ID)
	}
}

func TestResolve_UntranslatableLegacyCodeDegrades(t *testing.T) {
	r := fixtureResolver(t, nil)

	// Sole requested identifier: plan resolves but is empty.
	plan, err := r.Resolve(&api.LoadRequest{LegacyCodes: []string{"SEC:gone"}, Level: 1})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(plan.OrderedIDs) != 0 {
		t.Errorf("OrderedIDs = %v, want empty", plan.OrderedIDs)
	}
	if countWarnings(plan, api.WarnUntranslatable) != 1 {
		t.Errorf("warnings = %v", plan.Warnings)
	}

	// Alongside a translatable code, the rest still resolves.
	plan, err = r.Resolve(&api.LoadRequest{LegacyCodes: []string{"SEC:gone", "SEC:auth"}, Level: 1})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(plan.OrderedIDs) == 0 || plan.OrderedIDs[0] != "security-authentication" {
		t.Errorf("OrderedIDs = %v", plan.OrderedIDs)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	r := fixtureResolver(t, []api.Edge{
		requires("api-security", "security-authentication"),
		requires("api-security", "unit-testing"),
	})
	req := &api.LoadRequest{Product: "api", Wildcards: []string{"testing"}, Level: 2}

	first, err := r.Resolve(req)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	second, err := r.Resolve(req)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !reflect.DeepEqual(first.OrderedIDs, second.OrderedIDs) {
		t.Errorf("ordering differs: %v vs %v", first.OrderedIDs, second.OrderedIDs)
	}
	if first.TotalCost != second.TotalCost {
		t.Errorf("cost differs: %+v vs %+v", first.TotalCost, second.TotalCost)
	}
}

func TestResolve_AdvisoryEdgesSurfaceAsWarnings(t *testing.T) {
	r := fixtureResolver(t, []api.Edge{
		{From: "unit-testing", To: "api-security", Kind: api.EdgeRecommends},
	})

	plan, err := r.Resolve(&api.LoadRequest{Explicit: []string{"unit-testing"}, Level: 1})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !reflect.DeepEqual(plan.OrderedIDs, []string{"unit-testing"}) {
		t.Errorf("advisory edge must not auto-include: %v", plan.OrderedIDs)
	}
	if countWarnings(plan, api.WarnAdvisoryEdge) != 1 {
		t.Errorf("warnings = %v", plan.Warnings)
	}
}

func TestResolve_ClosureComplete(t *testing.T) {
	r := fixtureResolver(t, []api.Edge{
		requires("api-security", "security-authentication"),
		requires("security-authentication", "token-auth"),
	})

	plan, err := r.Resolve(&api.LoadRequest{Explicit: []string{"api-security"}, Level: 1})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	selected := make(map[string]bool)
	for _, id := range plan.OrderedIDs {
		selected[id] = true
	}
	for _, id := range []string{"api-security", "security-authentication", "token-auth"} {
		if !selected[id] {
			t.Errorf("closure incomplete, missing %s: %v", id, plan.OrderedIDs)
		}
	}
}
