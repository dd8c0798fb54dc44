// Package extract slices a unit's stored content to a cumulative disclosure
// level and estimates its token cost. The precise estimator uses tiktoken;
// when the encoding is unavailable the ~4 chars/token heuristic takes over,
// and every figure carries the method that produced it so budget enforcement
// never mixes the two.
package extract

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/agentic-research/loadout/api"
)

// heuristicCharsPerToken is the fallback ratio when no tokenizer is loaded.
const heuristicCharsPerToken = 4

// Estimator counts tokens. The zero value uses the character heuristic.
type Estimator struct {
	enc *tiktoken.Tiktoken
}

// NewEstimator tries to load the o200k_base encoding and falls back to the
// heuristic when the encoding cannot be initialized (e.g. offline host with
// a cold cache). The fallback is silent here; the method tag on each
// estimate is the caller-visible signal.
func NewEstimator() *Estimator {
	enc, err := tiktoken.GetEncoding("o200k_base")
	if err != nil {
		return &Estimator{}
	}
	return &Estimator{enc: enc}
}

// NewHeuristicEstimator always uses the character heuristic. Tests use it
// for deterministic figures with no encoding download.
func NewHeuristicEstimator() *Estimator { return &Estimator{} }

// Estimate returns the token cost of text plus the method used.
func (e *Estimator) Estimate(text string) api.CostEstimate {
	if e.enc != nil {
		return api.CostEstimate{
			Tokens: len(e.enc.Encode(text, nil, nil)),
			Method: api.CostExact,
		}
	}
	return api.CostEstimate{
		Tokens: len(text) / heuristicCharsPerToken,
		Method: api.CostHeuristic,
	}
}

// Method reports which method Estimate will use.
func (e *Estimator) Method() api.CostMethod {
	if e.enc != nil {
		return api.CostExact
	}
	return api.CostHeuristic
}

// Budgets maps a disclosure level to its advisory token ceiling. Levels
// absent from the map are unbounded.
type Budgets map[int]int

// Extractor binds an estimator to the per-level budgets.
type Extractor struct {
	est     *Estimator
	budgets Budgets
}

// New builds an extractor. budgets may be nil for no ceilings.
func New(est *Estimator, budgets Budgets) *Extractor {
	return &Extractor{est: est, budgets: budgets}
}

// Content assembles the cumulative text for a unit at level: level 2 is
// Level 1 plus Level 2, never Level 2 alone. A unit that stops short of the
// requested level yields everything it has.
func Content(u *api.Unit, level int) string {
	var out string
	for _, lb := range u.Levels {
		if lb.Level > level {
			break
		}
		if out != "" {
			out += "\n\n"
		}
		out += lb.Body
	}
	return out
}

// Extract returns the cumulative content and its cost estimate.
func (x *Extractor) Extract(u *api.Unit, level int) (string, api.CostEstimate) {
	text := Content(u, level)
	return text, x.est.Estimate(text)
}

// Estimate prices a unit at level without materializing the caller's copy.
func (x *Extractor) Estimate(u *api.Unit, level int) api.CostEstimate {
	return x.est.Estimate(Content(u, level))
}

// Method reports which estimation method this extractor's figures carry.
func (x *Extractor) Method() api.CostMethod { return x.est.Method() }

// CheckBudget compares a unit's cost at level against the advisory ceiling.
// Exceeding it is a warning, never an error: content correctness is not
// sacrificed to an estimate.
func (x *Extractor) CheckBudget(u *api.Unit, level int) (api.Warning, bool) {
	limit, ok := x.budgets[level]
	if !ok || limit <= 0 {
		return api.Warning{}, false
	}
	cost := x.Estimate(u, level)
	if cost.Tokens <= limit {
		return api.Warning{}, false
	}
	return api.Warning{
		Kind: api.WarnBudgetExceeded,
		Message: fmt.Sprintf("%s: level %d is %d tokens (%s), over the %d budget by %d",
			u.ID, level, cost.Tokens, cost.Method, limit, cost.Tokens-limit),
	}, true
}
