package depgraph

import (
	"errors"
	"reflect"
	"testing"

	"github.com/agentic-research/loadout/api"
)

var universe = []string{
	"api-security", "security-authentication", "compliance-baseline",
	"unit-testing", "legacy-sessions", "token-auth",
}

func edge(from, to string, kind api.EdgeKind) api.Edge {
	return api.Edge{From: from, To: to, Kind: kind}
}

func TestClosure_FirstDiscoveredOrder(t *testing.T) {
	g := Build(universe, []api.Edge{
		edge("api-security", "security-authentication", api.EdgeRequires),
		edge("security-authentication", "compliance-baseline", api.EdgeRequires),
	})

	order, err := g.Closure([]string{"api-security", "unit-testing"})
	if err != nil {
		t.Fatalf("Closure: %v", err)
	}
	want := []string{"api-security", "unit-testing", "security-authentication", "compliance-baseline"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestClosure_CycleTerminates(t *testing.T) {
	g := Build(universe, []api.Edge{
		edge("api-security", "security-authentication", api.EdgeRequires),
		edge("security-authentication", "api-security", api.EdgeRequires),
	})

	order, err := g.Closure([]string{"api-security"})
	if err != nil {
		t.Fatalf("Closure: %v", err)
	}
	if len(order) != 2 {
		t.Errorf("order = %v, want both cycle members exactly once", order)
	}
}

func TestClosure_Deterministic(t *testing.T) {
	g := Build(universe, []api.Edge{
		edge("api-security", "security-authentication", api.EdgeRequires),
		edge("api-security", "unit-testing", api.EdgeRequires),
	})

	first, err := g.Closure([]string{"api-security"})
	if err != nil {
		t.Fatalf("Closure: %v", err)
	}
	second, err := g.Closure([]string{"api-security"})
	if err != nil {
		t.Fatalf("Closure: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("non-deterministic closure: %v vs %v", first, second)
	}
}

func TestClosure_BrokenRequiresIsFatal(t *testing.T) {
	g := Build(universe, []api.Edge{
		edge("api-security", "does-not-exist", api.EdgeRequires),
	})

	_, err := g.Closure([]string{"api-security"})
	var broken *api.BrokenDependencyError
	if !errors.As(err, &broken) {
		t.Fatalf("err = %v, want BrokenDependencyError", err)
	}
	if broken.From != "api-security" || broken.To != "does-not-exist" {
		t.Errorf("broken edge = %s -> %s", broken.From, broken.To)
	}
}

func TestClosure_UnknownSeed(t *testing.T) {
	g := Build(universe, nil)
	_, err := g.Closure([]string{"nope"})
	var unknown *api.UnknownIdentifierError
	if !errors.As(err, &unknown) {
		t.Fatalf("err = %v, want UnknownIdentifierError", err)
	}
}

func TestDetectConflicts_PostClosurePair(t *testing.T) {
	g := Build(universe, []api.Edge{
		edge("api-security", "token-auth", api.EdgeRequires),
		edge("token-auth", "legacy-sessions", api.EdgeConflicts),
	})

	// The conflict only appears once closure pulls in token-auth.
	order, err := g.Closure([]string{"api-security", "legacy-sessions"})
	if err != nil {
		t.Fatalf("Closure: %v", err)
	}
	pairs := g.DetectConflicts(order)
	want := [][2]string{{"legacy-sessions", "token-auth"}}
	if !reflect.DeepEqual(pairs, want) {
		t.Errorf("pairs = %v, want %v", pairs, want)
	}

	if got := g.DetectConflicts([]string{"api-security"}); len(got) != 0 {
		t.Errorf("seed-only conflicts = %v, want none", got)
	}
}

func TestAdvisories_OnlyUnselectedTargets(t *testing.T) {
	g := Build(universe, []api.Edge{
		edge("unit-testing", "api-security", api.EdgeRecommends),
		edge("unit-testing", "token-auth", api.EdgeEnhances),
	})

	got := g.Advisories([]string{"unit-testing", "token-auth"})
	if len(got) != 1 || got[0].To != "api-security" {
		t.Errorf("advisories = %v", got)
	}
}
