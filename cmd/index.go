package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentic-research/loadout/internal/index"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the SQLite discovery index from the corpus",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := loadSnapshot()
		if err != nil {
			return err
		}
		output := filepath.Join(basePath, snap.Settings.Index)

		_ = os.Remove(output) // Overwrite
		start := time.Now()
		if err := index.Write(output, snap.Catalog.All(), snap.Extractor()); err != nil {
			return err
		}
		fmt.Printf("Indexed %d units to %s in %v.\n", snap.Catalog.Len(), output, time.Since(start))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
