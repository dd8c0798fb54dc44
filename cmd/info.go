package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentic-research/loadout/api"
)

var infoFormat string

// unitReport is the info command's JSON shape: unit metadata plus the
// cumulative token cost at each disclosure level.
type unitReport struct {
	*api.Unit
	Costs map[int]api.CostEstimate `json:"costs"`
}

var infoCmd = &cobra.Command{
	Use:   "info <id>",
	Short: "Show one unit's metadata and per-level token costs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := loadSnapshot()
		if err != nil {
			return err
		}
		u, err := snap.Catalog.Get(args[0])
		if err != nil {
			return err
		}

		costs := make(map[int]api.CostEstimate, len(u.Levels))
		for _, lb := range u.Levels {
			costs[lb.Level] = snap.Extractor().Estimate(u, lb.Level)
		}

		if infoFormat == "json" {
			out, err := json.MarshalIndent(&unitReport{Unit: u, Costs: costs}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}

		fmt.Printf("id:          %s\n", u.ID)
		fmt.Printf("category:    %s\n", u.Category)
		fmt.Printf("description: %s\n", u.Description)
		if len(u.Tags) > 0 {
			fmt.Printf("tags:        %s\n", strings.Join(u.Tags, ", "))
		}
		if len(u.Prerequisites) > 0 {
			fmt.Printf("requires:    %s\n", strings.Join(u.Prerequisites, ", "))
		}
		if len(u.Related) > 0 {
			fmt.Printf("related:     %s\n", strings.Join(u.Related, ", "))
		}
		fmt.Printf("source:      %s\n", u.Path)
		for _, lb := range u.Levels {
			c := costs[lb.Level]
			fmt.Printf("level %d:     %d tokens (%s, cumulative)\n", lb.Level, c.Tokens, c.Method)
		}
		return nil
	},
}

func init() {
	infoCmd.Flags().StringVar(&infoFormat, "format", "text", "Output format: text or json")
	rootCmd.AddCommand(infoCmd)
}
