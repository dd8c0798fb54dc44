package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentic-research/loadout/api"
)

var validateCmd = &cobra.Command{
	Use:   "validate <id|all>",
	Short: "Check units and their dependency closures for defects",
	Long: `Check that units parse, their ids are unique, and every requires
edge reachable from them points at a unit that exists. Malformed units and
duplicate ids already abort the corpus load itself; validate additionally
walks each unit's closure to surface broken dependency targets.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := loadSnapshot()
		if err != nil {
			return err
		}

		var units []*api.Unit
		if args[0] == "all" {
			units = snap.Catalog.All()
		} else {
			u, err := snap.Catalog.Get(args[0])
			if err != nil {
				return err
			}
			units = []*api.Unit{u}
		}

		defects := 0
		for _, u := range units {
			if _, err := snap.Graph.Closure([]string{u.ID}); err != nil {
				logger.Error("closure", "unit", u.ID, "err", err)
				defects++
				continue
			}
			for _, ref := range u.Related {
				if !snap.Catalog.Has(ref) {
					logger.Warn("dangling related reference", "unit", u.ID, "related", ref)
				}
			}
			logger.Debug("ok", "unit", u.ID)
		}

		if defects > 0 {
			return fmt.Errorf("%d of %d units failed validation", defects, len(units))
		}
		fmt.Printf("%d units valid\n", len(units))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
