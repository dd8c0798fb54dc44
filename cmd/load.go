package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentic-research/loadout/api"
	"github.com/agentic-research/loadout/internal/request"
)

var (
	loadFormat string
	loadPlan   bool
)

// loadedUnit is one resolved unit with its extracted content, as emitted in
// JSON mode.
type loadedUnit struct {
	ID      string           `json:"id"`
	Content string           `json:"content"`
	Cost    api.CostEstimate `json:"cost"`
}

type loadReport struct {
	Plan  *api.Plan    `json:"plan"`
	Units []loadedUnit `json:"units,omitempty"`
}

var loadCmd = &cobra.Command{
	Use:   "load <directive>...",
	Short: "Resolve a load directive and emit the selected content",
	Long: `Resolve a load directive and emit the selected content.

The directive grammar matches the inline form used in documents:

  loadout load security-authentication
  loadout load "[coding-standards + unit-testing]" --level 2
  loadout load product:api --language python
  loadout load "security:*" SEC:auth`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := request.Parse(strings.Join(args, " "))
		if err != nil {
			return err
		}

		snap, err := loadSnapshot()
		if err != nil {
			return err
		}
		plan, err := snap.Resolver().Resolve(req)
		if err != nil {
			if plan != nil && len(plan.Conflicts) > 0 {
				for _, pair := range plan.Conflicts {
					logger.Error("conflict", "between", pair[0], "and", pair[1])
				}
			}
			return err
		}
		logWarnings(plan.Warnings)

		if len(plan.OrderedIDs) == 0 {
			return fmt.Errorf("directive resolved to no units: %w", api.ErrNothingFound)
		}

		var units []loadedUnit
		if !loadPlan {
			for _, id := range plan.OrderedIDs {
				u, err := snap.Catalog.Get(id)
				if err != nil {
					return err
				}
				text, cost := snap.Extractor().Extract(u, plan.Level)
				units = append(units, loadedUnit{ID: id, Content: text, Cost: cost})
			}
		}

		if loadFormat == "json" {
			out, err := json.MarshalIndent(&loadReport{Plan: plan, Units: units}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}

		if loadPlan {
			for _, id := range plan.OrderedIDs {
				fmt.Println(id)
			}
		} else {
			for _, lu := range units {
				fmt.Printf("=== %s (level %d, %d tokens %s) ===\n\n", lu.ID, plan.Level, lu.Cost.Tokens, lu.Cost.Method)
				fmt.Println(lu.Content)
				fmt.Println()
			}
		}
		logger.Info("loaded",
			"units", len(plan.OrderedIDs),
			"level", plan.Level,
			"tokens", plan.TotalCost.Tokens,
			"method", plan.TotalCost.Method)
		return nil
	},
}

func init() {
	loadCmd.Flags().StringVar(&loadFormat, "format", "text", "Output format: text or json")
	loadCmd.Flags().BoolVar(&loadPlan, "plan", false, "Print the resolved plan without extracting content")
	rootCmd.AddCommand(loadCmd)
}
