// Package catalog scans a skills corpus root and builds an in-memory index
// of content units keyed by id. The catalog is built once and treated as
// immutable, shared-read state; hot reload is a snapshot swap, never an
// in-place mutation.
package catalog

import (
	"os"
	"sort"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/agentic-research/loadout/api"
)

// UnitFileName is the per-unit document scanned for under the corpus root.
const UnitFileName = "SKILL.md"

// Catalog is the read-only index over all parsed units.
type Catalog struct {
	units map[string]*api.Unit
	ids   []string // sorted, for deterministic All/Find output
}

// Load walks root on fsys, parses every unit file, and indexes the result.
// Duplicate ids and malformed units abort the load; a catalog is either
// complete or absent.
func Load(fsys billy.Filesystem, root string) (*Catalog, error) {
	c := &Catalog{units: make(map[string]*api.Unit)}

	err := util.Walk(fsys, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || info.Name() != UnitFileName {
			return nil
		}

		data, err := util.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		unit, err := ParseUnit(path, data)
		if err != nil {
			return err
		}
		if prev, dup := c.units[unit.ID]; dup {
			return &api.DuplicateUnitError{ID: unit.ID, Path: path, FirstSeen: prev.Path}
		}
		c.units[unit.ID] = unit
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.ids = make([]string, 0, len(c.units))
	for id := range c.units {
		c.ids = append(c.ids, id)
	}
	sort.Strings(c.ids)
	return c, nil
}

// Len returns the number of indexed units.
func (c *Catalog) Len() int { return len(c.units) }

// Has reports whether id is indexed.
func (c *Catalog) Has(id string) bool {
	_, ok := c.units[id]
	return ok
}

// Get returns the unit for id, or api.ErrNotFound.
func (c *Catalog) Get(id string) (*api.Unit, error) {
	u, ok := c.units[id]
	if !ok {
		return nil, api.ErrNotFound
	}
	return u, nil
}

// All returns every unit in sorted-id order.
func (c *Catalog) All() []*api.Unit {
	out := make([]*api.Unit, len(c.ids))
	for i, id := range c.ids {
		out[i] = c.units[id]
	}
	return out
}

// Find returns the units matching pred, in sorted-id order.
func (c *Catalog) Find(pred func(*api.Unit) bool) []*api.Unit {
	var out []*api.Unit
	for _, id := range c.ids {
		if u := c.units[id]; pred(u) {
			out = append(out, u)
		}
	}
	return out
}

// Search matches keyword case-insensitively against id, description, and
// tags, optionally narrowed to one category ("" or "all" means any).
func (c *Catalog) Search(keyword, category string) []*api.Unit {
	kw := strings.ToLower(keyword)
	return c.Find(func(u *api.Unit) bool {
		if category != "" && category != "all" && string(u.Category) != category {
			return false
		}
		if kw == "" {
			return true
		}
		if strings.Contains(strings.ToLower(u.ID), kw) ||
			strings.Contains(strings.ToLower(u.Description), kw) {
			return true
		}
		for _, t := range u.Tags {
			if strings.Contains(strings.ToLower(t), kw) {
				return true
			}
		}
		return false
	})
}
