package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agentic-research/loadout/api"
	"github.com/agentic-research/loadout/internal/index"
)

var (
	discoverCategory string
	discoverFormat   string
	discoverCached   bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover [keyword]",
	Short: "Search the catalog by keyword and category",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var keyword string
		if len(args) == 1 {
			keyword = args[0]
		}
		if discoverCategory != "" {
			if _, ok := api.ParseCategory(discoverCategory); !ok {
				return fmt.Errorf("unknown category %q (known: %v)", discoverCategory, api.Categories())
			}
		}

		if discoverCached {
			return discoverFromIndex(keyword)
		}

		snap, err := loadSnapshot()
		if err != nil {
			return err
		}
		units := snap.Catalog.Search(keyword, discoverCategory)
		if len(units) == 0 {
			return fmt.Errorf("no units match keyword=%q category=%q: %w", keyword, discoverCategory, api.ErrNothingFound)
		}

		if discoverFormat == "json" {
			out, err := json.MarshalIndent(units, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}
		for _, u := range units {
			fmt.Printf("%-40s %-18s %s\n", u.ID, u.Category, u.Description)
		}
		return nil
	},
}

// discoverFromIndex serves the query from the prebuilt SQLite index without
// walking the corpus.
func discoverFromIndex(keyword string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	dbPath := filepath.Join(basePath, settings.Index)
	entries, err := index.Search(dbPath, keyword, api.Category(discoverCategory))
	if err != nil {
		return fmt.Errorf("read index (run 'loadout index' first): %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("no units match keyword=%q category=%q: %w", keyword, discoverCategory, api.ErrNothingFound)
	}
	if discoverFormat == "json" {
		out, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%-40s %-18s %s\n", e.ID, e.Category, e.Description)
	}
	return nil
}

func init() {
	discoverCmd.Flags().StringVar(&discoverCategory, "category", "", "Restrict matches to one category")
	discoverCmd.Flags().StringVar(&discoverFormat, "format", "text", "Output format: text or json")
	discoverCmd.Flags().BoolVar(&discoverCached, "cached", false, "Serve from the SQLite index instead of scanning")
	rootCmd.AddCommand(discoverCmd)
}
