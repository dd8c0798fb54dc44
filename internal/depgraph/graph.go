// Package depgraph holds the declared dependency edges between unit ids and
// implements transitive closure and conflict detection over them. Ids are
// interned to dense uint32 values so visited sets and conflict scans run on
// roaring bitmaps instead of string maps.
package depgraph

import (
	"sort"

	"github.com/RoaringBitmap/roaring"

	"github.com/agentic-research/loadout/api"
)

// Graph is an immutable edge index over a fixed id universe.
type Graph struct {
	idx map[string]uint32
	ids []string // reverse: uint32 -> id

	requires [][]uint32 // adjacency, requires edges only
	// brokenRequires holds requires edges whose target is outside the
	// universe, keyed by interned source. Reaching such a source during
	// closure is fatal: a required unit must never be silently dropped.
	brokenRequires map[uint32][]string

	conflicts [][2]uint32
	advisory  []api.Edge // recommends + enhances, surfaced as suggestions
}

// Build indexes edges against the known id universe (the catalog's ids).
// Requires edges with an unknown target are recorded and reported lazily by
// Closure; all other edge kinds referencing unknown ids are dropped since
// they can never fire.
func Build(known []string, edges []api.Edge) *Graph {
	g := &Graph{
		idx:            make(map[string]uint32, len(known)),
		ids:            make([]string, len(known)),
		requires:       make([][]uint32, len(known)),
		brokenRequires: make(map[uint32][]string),
	}
	for i, id := range known {
		g.idx[id] = uint32(i)
		g.ids[i] = id
	}

	for _, e := range edges {
		from, okFrom := g.idx[e.From]
		to, okTo := g.idx[e.To]

		switch e.Kind {
		case api.EdgeRequires:
			if !okFrom {
				continue
			}
			if !okTo {
				g.brokenRequires[from] = append(g.brokenRequires[from], e.To)
				continue
			}
			g.requires[from] = append(g.requires[from], to)
		case api.EdgeConflicts:
			if okFrom && okTo {
				g.conflicts = append(g.conflicts, [2]uint32{from, to})
			}
		case api.EdgeRecommends, api.EdgeEnhances:
			if okFrom && okTo {
				g.advisory = append(g.advisory, e)
			}
		}
	}
	return g
}

// Closure expands seeds along requires edges, breadth-first, returning every
// reachable id exactly once in first-discovered order. That order is the
// basis of a plan's deterministic output. Cycles are fine — an already
// visited id is a no-op — but a broken requires edge on any reached id is
// fatal.
func (g *Graph) Closure(seeds []string) ([]string, error) {
	visited := roaring.New()
	order := make([]string, 0, len(seeds))
	queue := make([]uint32, 0, len(seeds))

	for _, id := range seeds {
		n, ok := g.idx[id]
		if !ok {
			return nil, &api.UnknownIdentifierError{ID: id}
		}
		if visited.CheckedAdd(n) {
			order = append(order, id)
			queue = append(queue, n)
		}
	}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		if broken := g.brokenRequires[n]; len(broken) > 0 {
			return nil, &api.BrokenDependencyError{From: g.ids[n], To: broken[0]}
		}
		for _, m := range g.requires[n] {
			if visited.CheckedAdd(m) {
				order = append(order, g.ids[m])
				queue = append(queue, m)
			}
		}
	}
	return order, nil
}

// DetectConflicts scans the selection against the conflicts edge set and
// returns every violated pair, each ordered lexically and the result sorted.
// Must run on the post-closure set: a required dependency can introduce a
// conflict invisible in the seeds alone.
func (g *Graph) DetectConflicts(ids []string) [][2]string {
	selected := roaring.New()
	for _, id := range ids {
		if n, ok := g.idx[id]; ok {
			selected.Add(n)
		}
	}

	seen := make(map[[2]string]bool)
	var pairs [][2]string
	for _, c := range g.conflicts {
		if !selected.Contains(c[0]) || !selected.Contains(c[1]) {
			continue
		}
		a, b := g.ids[c[0]], g.ids[c[1]]
		if a > b {
			a, b = b, a
		}
		p := [2]string{a, b}
		if !seen[p] {
			seen[p] = true
			pairs = append(pairs, p)
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	return pairs
}

// Advisories returns the recommends/enhances edges whose source is selected
// but whose target is not. These are suggestions, never auto-included.
func (g *Graph) Advisories(ids []string) []api.Edge {
	selected := roaring.New()
	for _, id := range ids {
		if n, ok := g.idx[id]; ok {
			selected.Add(n)
		}
	}

	var out []api.Edge
	for _, e := range g.advisory {
		from := g.idx[e.From]
		to := g.idx[e.To]
		if selected.Contains(from) && !selected.Contains(to) {
			out = append(out, e)
		}
	}
	return out
}
