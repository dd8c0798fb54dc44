package index

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentic-research/loadout/api"
	"github.com/agentic-research/loadout/internal/extract"
)

func fixtureUnits() []*api.Unit {
	return []*api.Unit{
		{
			ID:          "security-authentication",
			Category:    api.CategorySecurity,
			Description: "Authentication patterns",
			Tags:        []string{"security", "auth"},
			Path:        "skills/auth/SKILL.md",
			Levels: []api.LevelBody{
				{Level: 1, Body: "Use short-lived tokens."},
				{Level: 2, Body: "Rotate refresh tokens on every use."},
			},
		},
		{
			ID:          "unit-testing",
			Category:    api.CategoryTesting,
			Description: "Unit testing discipline",
			Path:        "skills/testing/SKILL.md",
			Levels: []api.LevelBody{
				{Level: 1, Body: "Test behavior, not implementation."},
			},
		},
	}
}

func TestWriteAndLoad(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.db")
	ex := extract.New(extract.NewHeuristicEstimator(), nil)

	require.NoError(t, Write(dbPath, fixtureUnits(), ex))

	entries, err := Load(dbPath)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Ordered by id.
	require.Equal(t, "security-authentication", entries[0].ID)
	require.Equal(t, "unit-testing", entries[1].ID)

	auth := entries[0]
	require.Equal(t, api.CategorySecurity, auth.Category)
	require.Equal(t, []string{"security", "auth"}, auth.Tags)
	require.Equal(t, 2, auth.Levels)
	require.Equal(t, api.CostHeuristic, auth.Method)
	require.Greater(t, auth.Tokens[1], 0)
	// Levels are cumulative, so deeper levels never cost less.
	require.GreaterOrEqual(t, auth.Tokens[2], auth.Tokens[1])
}

func TestWriteReplacesPreviousContents(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.db")
	ex := extract.New(extract.NewHeuristicEstimator(), nil)

	require.NoError(t, Write(dbPath, fixtureUnits(), ex))
	require.NoError(t, Write(dbPath, fixtureUnits()[:1], ex))

	entries, err := Load(dbPath)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "security-authentication", entries[0].ID)
}

func TestSearch(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.db")
	ex := extract.New(extract.NewHeuristicEstimator(), nil)
	require.NoError(t, Write(dbPath, fixtureUnits(), ex))

	byKeyword, err := Search(dbPath, "auth", "")
	require.NoError(t, err)
	require.Len(t, byKeyword, 1)
	require.Equal(t, "security-authentication", byKeyword[0].ID)

	byCategory, err := Search(dbPath, "", api.CategoryTesting)
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	require.Equal(t, "unit-testing", byCategory[0].ID)

	none, err := Search(dbPath, "quantum", "")
	require.NoError(t, err)
	require.Empty(t, none)

	all, err := Search(dbPath, "", "")
	require.NoError(t, err)
	require.Len(t, all, 2)
}
