package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentic-research/loadout/api"
	"github.com/agentic-research/loadout/internal/recommend"
)

var recommendFormat string

var recommendCmd = &cobra.Command{
	Use:   "recommend [project-dir]",
	Short: "Suggest units based on a project's manifests and layout",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectDir := "."
		if len(args) == 1 {
			projectDir = args[0]
		}

		snap, err := loadSnapshot()
		if err != nil {
			return err
		}
		recs, err := recommend.New(snap.Catalog).Recommend(projectDir)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			return fmt.Errorf("no recommendations for %s: %w", projectDir, api.ErrNothingFound)
		}

		if recommendFormat == "json" {
			out, err := json.MarshalIndent(recs, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}

		for _, r := range recs {
			fmt.Printf("%-10s %-40s %s\n", r.Priority, r.ID, r.Reason)
		}
		fmt.Println("\nAccept with: loadout load <id>")
		return nil
	},
}

func init() {
	recommendCmd.Flags().StringVar(&recommendFormat, "format", "text", "Output format: text or json")
	rootCmd.AddCommand(recommendCmd)
}
