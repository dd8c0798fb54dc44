// Package index persists discovery metadata to a SQLite database so that
// repeated lookups skip the full corpus walk. The index is a cache: it is
// rebuilt wholesale from a snapshot and never mutated in place.
package index

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/agentic-research/loadout/api"
	"github.com/agentic-research/loadout/internal/extract"
)

// Entry is one indexed unit with per-level token costs.
type Entry struct {
	ID          string         `json:"id"`
	Category    api.Category   `json:"category"`
	Description string         `json:"description"`
	Tags        []string       `json:"tags,omitempty"`
	Path        string         `json:"path"`
	Levels      int            `json:"levels"`
	Tokens      map[int]int    `json:"tokens"`
	Method      api.CostMethod `json:"method"`
}

const schema = `
CREATE TABLE IF NOT EXISTS units (
	id TEXT PRIMARY KEY,
	category TEXT NOT NULL,
	description TEXT NOT NULL,
	tags JSON,
	path TEXT NOT NULL,
	levels INTEGER NOT NULL,
	tokens JSON NOT NULL,
	method TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_units_category ON units(category);
`

// Write rebuilds the index at dbPath from the given units, replacing any
// previous contents. Token costs are computed with ex at every level the
// unit carries.
func Write(dbPath string, units []*api.Unit, ex *extract.Extractor) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	defer func() { _ = db.Close() }() // safe to ignore

	// Performance tuning for bulk insert
	if _, err := db.Exec("PRAGMA synchronous = OFF"); err != nil {
		return err
	}
	if _, err := db.Exec("PRAGMA journal_mode = MEMORY"); err != nil {
		return err
	}
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := db.Exec("DELETE FROM units"); err != nil {
		return fmt.Errorf("clear index: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO units (id, category, description, tags, path, levels, tokens, method)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	for _, u := range units {
		tokens := make(map[int]int, len(u.Levels))
		for _, lb := range u.Levels {
			tokens[lb.Level] = ex.Estimate(u, lb.Level).Tokens
		}
		tagsJSON, _ := json.Marshal(u.Tags)
		tokensJSON, _ := json.Marshal(tokens)
		if _, err := stmt.Exec(
			u.ID,
			string(u.Category),
			u.Description,
			string(tagsJSON),
			u.Path,
			len(u.Levels),
			string(tokensJSON),
			string(ex.Method()),
		); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return fmt.Errorf("insert %s: %w", u.ID, err)
		}
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Load reads every entry, ordered by id.
func Load(dbPath string) ([]Entry, error) {
	return query(dbPath, "SELECT id, category, description, tags, path, levels, tokens, method FROM units ORDER BY id")
}

// Search filters entries by keyword (case-insensitive substring over id,
// description, and tags) and category. Empty arguments match everything.
func Search(dbPath, keyword string, cat api.Category) ([]Entry, error) {
	entries, err := Load(dbPath)
	if err != nil {
		return nil, err
	}
	kw := strings.ToLower(keyword)
	var out []Entry
	for _, e := range entries {
		if cat != "" && e.Category != cat {
			continue
		}
		if kw != "" && !matches(&e, kw) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func matches(e *Entry, kw string) bool {
	if strings.Contains(strings.ToLower(e.ID), kw) {
		return true
	}
	if strings.Contains(strings.ToLower(e.Description), kw) {
		return true
	}
	for _, tag := range e.Tags {
		if strings.Contains(strings.ToLower(tag), kw) {
			return true
		}
	}
	return false
}

func query(dbPath, q string) ([]Entry, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	defer func() { _ = db.Close() }() // safe to ignore

	rows, err := db.Query(q)
	if err != nil {
		return nil, fmt.Errorf("query units: %w", err)
	}
	defer func() { _ = rows.Close() }() // safe to ignore

	var entries []Entry
	for rows.Next() {
		var e Entry
		var category, tagsRaw, tokensRaw, method string
		if err := rows.Scan(&e.ID, &category, &e.Description, &tagsRaw, &e.Path, &e.Levels, &tokensRaw, &method); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		e.Category = api.Category(category)
		e.Method = api.CostMethod(method)
		if tagsRaw != "" {
			if err := json.Unmarshal([]byte(tagsRaw), &e.Tags); err != nil {
				return nil, fmt.Errorf("parse tags json: %w", err)
			}
		}
		if err := json.Unmarshal([]byte(tokensRaw), &e.Tokens); err != nil {
			return nil, fmt.Errorf("parse tokens json: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return entries, nil
}
