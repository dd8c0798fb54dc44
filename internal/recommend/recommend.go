// Package recommend inspects a project directory and proposes candidate
// units with a priority tier and a human-readable reason. Heuristic, not
// exact: signals come from dependency manifests, file extensions, and
// directory conventions. Output is suggestions only — the resolver includes
// nothing from here unless a caller explicitly opts in.
package recommend

import (
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/ohler55/ojg/oj"

	"github.com/agentic-research/loadout/api"
	"github.com/agentic-research/loadout/internal/catalog"
)

// Engine maps project signals to catalog units.
type Engine struct {
	cat *catalog.Catalog
}

// New builds an engine over the catalog. Suggestions for ids absent from
// the catalog are dropped, so the output is always loadable as-is.
func New(cat *catalog.Catalog) *Engine {
	return &Engine{cat: cat}
}

// globSignal maps a file glob to one candidate unit.
type globSignal struct {
	pattern  string
	id       string
	priority api.Priority
	reason   string
}

var globSignals = []globSignal{
	{"go.mod", "go-coding-standards", api.PriorityHigh, "Go module manifest found"},
	{"package.json", "javascript-coding-standards", api.PriorityHigh, "npm package manifest found"},
	{"{requirements.txt,pyproject.toml}", "python-coding-standards", api.PriorityHigh, "Python dependency manifest found"},
	{"Cargo.toml", "rust-coding-standards", api.PriorityHigh, "Cargo manifest found"},
	{"{go.mod,package.json,requirements.txt,pyproject.toml,Cargo.toml}", "coding-standards", api.PriorityMedium, "dependency manifest found"},
	{"**/*_test.go", "unit-testing", api.PriorityHigh, "Go test files present"},
	{"{tests,test,spec}/**", "unit-testing", api.PriorityHigh, "test directory present"},
	{"**/Dockerfile", "cloud-native", api.PriorityMedium, "container build file present"},
	{"{docker-compose.yml,docker-compose.yaml}", "cloud-native", api.PriorityMedium, "compose file present"},
	{"**/*.sql", "database", api.PriorityMedium, "SQL files present"},
	{"{.env,.env.*}", "security-secrets", api.PriorityHigh, "environment files present"},
}

// npmSignal maps a package.json dependency name to one candidate unit.
type npmSignal struct {
	dep      string
	id       string
	priority api.Priority
	reason   string
}

var npmSignals = []npmSignal{
	{"express", "api-security", api.PriorityCritical, "express server dependency"},
	{"fastify", "api-security", api.PriorityCritical, "fastify server dependency"},
	{"jsonwebtoken", "security-authentication", api.PriorityHigh, "JWT dependency"},
	{"passport", "security-authentication", api.PriorityHigh, "passport dependency"},
	{"jest", "unit-testing", api.PriorityHigh, "jest test dependency"},
	{"vitest", "unit-testing", api.PriorityHigh, "vitest test dependency"},
}

// Recommend scans root and returns suggestions ordered by priority, then id.
// Each id appears once, at the highest priority any signal produced for it.
func (e *Engine) Recommend(root string) ([]api.Recommendation, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", root)
	}

	fsys := os.DirFS(root)
	best := make(map[string]api.Recommendation)
	emit := func(id string, priority api.Priority, reason string) {
		if !e.cat.Has(id) {
			return
		}
		if prev, ok := best[id]; ok && prev.Priority <= priority {
			return
		}
		best[id] = api.Recommendation{ID: id, Priority: priority, Reason: reason}
	}

	for _, s := range globSignals {
		matches, err := doublestar.Glob(fsys, s.pattern)
		if err != nil || len(matches) == 0 {
			continue
		}
		emit(s.id, s.priority, s.reason)
	}

	e.scanPackageJSON(fsys, emit)

	out := make([]api.Recommendation, 0, len(best))
	for _, rec := range best {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// scanPackageJSON inspects npm dependency names for framework signals.
// Parse failures are ignored — a broken manifest is just a missing signal.
func (e *Engine) scanPackageJSON(fsys fs.FS, emit func(string, api.Priority, string)) {
	data, err := fs.ReadFile(fsys, "package.json")
	if err != nil {
		return
	}
	parsed, err := oj.Parse(data)
	if err != nil {
		return
	}
	manifest, ok := parsed.(map[string]any)
	if !ok {
		return
	}

	deps := make(map[string]bool)
	for _, section := range []string{"dependencies", "devDependencies"} {
		if m, ok := manifest[section].(map[string]any); ok {
			for name := range m {
				deps[name] = true
			}
		}
	}
	for _, s := range npmSignals {
		if deps[s.dep] {
			emit(s.id, s.priority, s.reason)
		}
	}
}
