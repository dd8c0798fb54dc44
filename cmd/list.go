package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentic-research/loadout/api"
)

var listFormat string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every unit in the catalog, grouped by category",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := loadSnapshot()
		if err != nil {
			return err
		}
		if snap.Catalog.Len() == 0 {
			return fmt.Errorf("catalog at %s has no units: %w", basePath, api.ErrNothingFound)
		}

		byCategory := make(map[api.Category][]*api.Unit)
		for _, u := range snap.Catalog.All() {
			byCategory[u.Category] = append(byCategory[u.Category], u)
		}

		if listFormat == "json" {
			out, err := json.MarshalIndent(snap.Catalog.All(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}

		for _, cat := range api.Categories() {
			units := byCategory[cat]
			if len(units) == 0 {
				continue
			}
			fmt.Printf("%s (%d)\n", cat, len(units))
			for _, u := range units {
				fmt.Printf("  %-38s %s\n", u.ID, u.Description)
			}
		}
		fmt.Printf("\n%d units total\n", snap.Catalog.Len())
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listFormat, "format", "text", "Output format: text or json")
	rootCmd.AddCommand(listCmd)
}
