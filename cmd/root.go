// Package cmd hosts the loadout CLI. Every subcommand builds a fresh
// snapshot of the corpus, runs one operation against it, and exits; only
// serve keeps a snapshot alive across requests.
package cmd

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/agentic-research/loadout/api"
	"github.com/agentic-research/loadout/internal/config"
	"github.com/agentic-research/loadout/internal/extract"
	"github.com/agentic-research/loadout/internal/snapshot"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	basePath string
	cfgPath  string
	debug    bool

	logger *log.Logger
)

var rootCmd = &cobra.Command{
	Use:           "loadout",
	Short:         "Deterministic resolution and progressive loading for a skills corpus",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := log.InfoLevel
		if debug {
			level = log.DebugLevel
		}
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: false,
			Level:           level,
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&basePath, "base", "C", ".", "Corpus base directory")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Settings file (default <base>/"+config.DefaultFileName+")")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}

// Execute runs the CLI. Exit code 1 is any failure; 2 means the request was
// well-formed but matched nothing.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if logger == nil {
			logger = log.New(os.Stderr)
		}
		logger.Error(err.Error())
		if errors.Is(err, api.ErrNothingFound) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func loadSettings() (*config.Settings, error) {
	path := cfgPath
	if path == "" {
		path = filepath.Join(basePath, config.DefaultFileName)
	}
	return config.Load(path)
}

func corpusFS() billy.Filesystem {
	return osfs.New(basePath)
}

// loadSnapshot builds one consistent view of the corpus for a single command.
func loadSnapshot() (*snapshot.Snapshot, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	return snapshot.Build(corpusFS(), settings, extract.NewEstimator())
}

// logWarnings writes plan warnings to stderr so stdout stays parseable.
func logWarnings(warnings []api.Warning) {
	for _, w := range warnings {
		logger.Warn(w.Message, "kind", w.Kind)
	}
}
