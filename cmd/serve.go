package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/agentic-research/loadout/api"
	"github.com/agentic-research/loadout/internal/config"
	"github.com/agentic-research/loadout/internal/extract"
	"github.com/agentic-research/loadout/internal/request"
	"github.com/agentic-research/loadout/internal/snapshot"
)

var serveWatch bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve discovery and loading as MCP tools over stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings()
		if err != nil {
			return err
		}
		est := extract.NewEstimator()
		snap, err := snapshot.Build(corpusFS(), settings, est)
		if err != nil {
			return err
		}
		hs := snapshot.NewHotSwap(snap)

		if serveWatch {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			dirs := watchDirs(settings)
			go func() {
				err := snapshot.Watch(ctx, basePath, dirs, func() {
					next, err := snapshot.Build(corpusFS(), settings, est)
					if err != nil {
						logger.Error("reload failed, keeping previous snapshot", "err", err)
						return
					}
					hs.Swap(next)
					logger.Info("corpus reloaded", "units", next.Catalog.Len())
				})
				if err != nil && ctx.Err() == nil {
					logger.Error("watcher stopped", "err", err)
				}
			}()
		}

		s := server.NewMCPServer("loadout", version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		)
		registerTools(s, hs)

		logger.Info("serving over stdio", "units", snap.Catalog.Len(), "watch", serveWatch)
		return server.ServeStdio(s)
	},
}

// watchDirs is the corpus root plus each configuration document's directory.
func watchDirs(settings *config.Settings) []string {
	dirs := []string{settings.Root}
	seen := map[string]bool{settings.Root: true}
	for _, doc := range []string{settings.Deps, settings.ProductMatrix, settings.LegacyMappings} {
		dir := filepath.Dir(doc)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func registerTools(s *server.MCPServer, hs *snapshot.HotSwap) {
	discoverTool := mcp.NewTool("discover_units",
		mcp.WithDescription("Search the skills catalog by keyword and category. Returns matching unit ids with descriptions."),
		mcp.WithString("keyword", mcp.Description("Case-insensitive substring matched against id, description, and tags")),
		mcp.WithString("category", mcp.Description("Restrict matches to one category")),
	)
	s.AddTool(discoverTool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		keyword := req.GetString("keyword", "")
		category := req.GetString("category", "")
		if category != "" {
			if _, ok := api.ParseCategory(category); !ok {
				return mcp.NewToolResultError(fmt.Sprintf("unknown category %q", category)), nil
			}
		}
		units := hs.Current().Catalog.Search(keyword, category)
		out, err := json.MarshalIndent(units, "", "  ")
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(string(out)), nil
	})

	loadTool := mcp.NewTool("load_units",
		mcp.WithDescription("Resolve a load directive (e.g. \"[api-security + unit-testing] --level 2\" or \"product:api --language python\") and return the selected content."),
		mcp.WithString("directive", mcp.Required(), mcp.Description("The load directive to resolve")),
	)
	s.AddTool(loadTool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		directive, err := req.RequireString("directive")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		parsed, err := request.Parse(directive)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		snap := hs.Current()
		plan, err := snap.Resolver().Resolve(parsed)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var units []loadedUnit
		for _, id := range plan.OrderedIDs {
			u, err := snap.Catalog.Get(id)
			if err != nil {
				return nil, err
			}
			text, cost := snap.Extractor().Extract(u, plan.Level)
			units = append(units, loadedUnit{ID: id, Content: text, Cost: cost})
		}
		out, err := json.MarshalIndent(&loadReport{Plan: plan, Units: units}, "", "  ")
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(string(out)), nil
	})

	infoTool := mcp.NewTool("unit_info",
		mcp.WithDescription("Return one unit's metadata and its cumulative token cost at each disclosure level."),
		mcp.WithString("id", mcp.Required(), mcp.Description("The unit id")),
	)
	s.AddTool(infoTool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		snap := hs.Current()
		u, err := snap.Catalog.Get(id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		costs := make(map[int]api.CostEstimate, len(u.Levels))
		for _, lb := range u.Levels {
			costs[lb.Level] = snap.Extractor().Estimate(u, lb.Level)
		}
		out, err := json.MarshalIndent(&unitReport{Unit: u, Costs: costs}, "", "  ")
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(string(out)), nil
	})
}

func init() {
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Rebuild the snapshot when corpus files change")
	rootCmd.AddCommand(serveCmd)
}
