// Package api defines the public data model of the loadout engine:
// content units, dependency edges, product definitions, load requests,
// and resolution plans. Everything here is read-only reference data once
// constructed; the resolver never mutates a Unit.
package api

import "fmt"

// Category classifies a content unit. It is a closed enumeration: adding a
// category is a deliberate schema change, not an implicit string match.
type Category string

const (
	CategorySecurity        Category = "security"
	CategoryTesting         Category = "testing"
	CategoryCodingStandards Category = "coding-standards"
	CategoryCompliance      Category = "compliance"
	CategoryCloudNative     Category = "cloud-native"
	CategoryDatabase        Category = "database"
	CategoryMLAI            Category = "ml-ai"
	CategoryGeneral         Category = "general"
)

var categories = map[Category]bool{
	CategorySecurity:        true,
	CategoryTesting:         true,
	CategoryCodingStandards: true,
	CategoryCompliance:      true,
	CategoryCloudNative:     true,
	CategoryDatabase:        true,
	CategoryMLAI:            true,
	CategoryGeneral:         true,
}

// ParseCategory validates a category string against the closed set.
func ParseCategory(s string) (Category, bool) {
	c := Category(s)
	return c, categories[c]
}

// Categories returns the closed category set in stable order.
func Categories() []Category {
	return []Category{
		CategorySecurity,
		CategoryTesting,
		CategoryCodingStandards,
		CategoryCompliance,
		CategoryCloudNative,
		CategoryDatabase,
		CategoryMLAI,
		CategoryGeneral,
	}
}

// LevelBody is one disclosure tier of a unit. Levels are cumulative: the
// rendered content at level N is the concatenation of bodies 1..N.
type LevelBody struct {
	Level int    `json:"level"`
	Body  string `json:"-"`
}

// Unit is one loadable content item. A Unit is immutable after catalog load.
type Unit struct {
	ID            string      `json:"id"`
	Category      Category    `json:"category"`
	Description   string      `json:"description"`
	Tags          []string    `json:"tags,omitempty"`
	Prerequisites []string    `json:"prerequisites,omitempty"`
	Related       []string    `json:"related,omitempty"`
	Levels        []LevelBody `json:"levels"`
	// Path is the source file the unit was parsed from, kept for diagnostics.
	Path string `json:"path"`
}

// HasTag reports whether the unit carries the tag, either explicitly or via
// its category name.
func (u *Unit) HasTag(tag string) bool {
	if string(u.Category) == tag {
		return true
	}
	for _, t := range u.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// EdgeKind is the tagged variant of a dependency edge.
type EdgeKind int

const (
	EdgeRequires EdgeKind = iota
	EdgeRecommends
	EdgeEnhances
	EdgeConflicts
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeRequires:
		return "requires"
	case EdgeRecommends:
		return "recommends"
	case EdgeEnhances:
		return "enhances"
	case EdgeConflicts:
		return "conflicts"
	}
	return fmt.Sprintf("EdgeKind(%d)", int(k))
}

// ParseEdgeKind maps the declarative edge-kind string to its variant.
func ParseEdgeKind(s string) (EdgeKind, error) {
	switch s {
	case "requires":
		return EdgeRequires, nil
	case "recommends":
		return EdgeRecommends, nil
	case "enhances":
		return EdgeEnhances, nil
	case "conflicts":
		return EdgeConflicts, nil
	}
	return 0, fmt.Errorf("unknown edge kind %q", s)
}

// Edge is one declared dependency edge between two unit ids.
// Conflicts edges are symmetric; the other kinds are directed.
type Edge struct {
	From string
	To   string
	Kind EdgeKind
}

// Product is one row of the product matrix: a named bundle of base unit ids,
// wildcard family references, and per-language/per-framework substitutions.
type Product struct {
	ID        string
	Skills    []string
	Wildcards []string
	// LanguageOverrides maps language -> generic id -> specialized id.
	LanguageOverrides map[string]map[string]string
	// FrameworkOverrides maps framework -> generic id -> specialized id.
	FrameworkOverrides map[string]map[string]string
}

// LoadRequest is the parsed, structured form of a load directive.
// It is immutable once parsed.
type LoadRequest struct {
	Explicit    []string
	Product     string
	Language    string
	Framework   string
	Wildcards   []string
	LegacyCodes []string
	Level       int
	// Recommendations, when non-empty, are unit ids a caller explicitly
	// opted into after reviewing recommendation-engine output. The resolver
	// never injects recommendations on its own.
	Recommendations []string
}

// CostMethod tells how a cost estimate was produced. The two methods are not
// interchangeable for strict budget enforcement, so every figure carries one.
type CostMethod string

const (
	// CostExact means the figure came from a real tokenizer.
	CostExact CostMethod = "tiktoken"
	// CostHeuristic means the figure is a ~4 chars/token estimate.
	CostHeuristic CostMethod = "estimated"
)

// CostEstimate is an approximate token cost plus the method that produced it.
type CostEstimate struct {
	Tokens int        `json:"tokens"`
	Method CostMethod `json:"method"`
}

// WarningKind tags advisory notices attached to a plan.
type WarningKind string

const (
	WarnUntranslatable   WarningKind = "untranslatable-legacy-code"
	WarnUnknownLanguage  WarningKind = "unknown-language"
	WarnUnknownFramework WarningKind = "unknown-framework"
	WarnBaselineInclude  WarningKind = "baseline-auto-include"
	WarnBudgetExceeded   WarningKind = "budget-exceeded"
	WarnAdvisoryEdge     WarningKind = "advisory-edge"
)

// Warning is one advisory notice. Warnings never fail a resolution.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

// Plan is the resolver's output: a deduplicated, dependency-complete,
// deterministically ordered unit selection. Produced fresh per request.
type Plan struct {
	OrderedIDs []string     `json:"ordered_ids"`
	Conflicts  [][2]string  `json:"conflicts,omitempty"`
	Warnings   []Warning    `json:"warnings,omitempty"`
	TotalCost  CostEstimate `json:"total_cost"`
	Level      int          `json:"level"`
}

// Priority tiers a recommendation. Lower value sorts first.
type Priority int

const (
	PriorityCritical Priority = iota
	PriorityHigh
	PriorityMedium
	PriorityLow
)

func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	}
	return fmt.Sprintf("Priority(%d)", int(p))
}

// Recommendation is one suggested unit with the signal that produced it.
// Suggestions only: a caller must opt in before the resolver includes any.
type Recommendation struct {
	ID       string   `json:"id"`
	Priority Priority `json:"priority"`
	Reason   string   `json:"reason"`
}
