package depgraph

import (
	"fmt"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"gopkg.in/yaml.v3"

	"github.com/agentic-research/loadout/api"
)

// edgesDoc is the declarative edge-list document (deps.yaml).
type edgesDoc struct {
	Edges []edgeEntry `yaml:"edges"`
}

type edgeEntry struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
	Kind string `yaml:"kind"`
}

// LoadEdges reads the dependency-specification file. A missing file is not
// an error — a corpus without declared edges is just a flat catalog.
func LoadEdges(fsys billy.Filesystem, path string) ([]api.Edge, error) {
	data, err := util.ReadFile(fsys, path)
	if err != nil {
		if _, statErr := fsys.Stat(path); statErr != nil {
			return nil, nil
		}
		return nil, err
	}

	var doc edgesDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	edges := make([]api.Edge, 0, len(doc.Edges))
	for _, e := range doc.Edges {
		kind, err := api.ParseEdgeKind(e.Kind)
		if err != nil {
			return nil, fmt.Errorf("%s: edge %s -> %s: %w", path, e.From, e.To, err)
		}
		if e.From == "" || e.To == "" {
			return nil, fmt.Errorf("%s: edge with empty endpoint (kind %s)", path, e.Kind)
		}
		edges = append(edges, api.Edge{From: e.From, To: e.To, Kind: kind})
	}
	return edges, nil
}
