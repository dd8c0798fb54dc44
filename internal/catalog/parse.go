package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/agentic-research/loadout/api"
)

// MaxIDLength caps unit ids. Longer ids are rejected at load time.
const MaxIDLength = 64

var (
	idPattern    = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	levelPattern = regexp.MustCompile(`(?m)^## Level ([123])\b[^\n]*\n`)
)

// frontmatter is the YAML metadata block at the top of a unit file.
type frontmatter struct {
	ID            string   `yaml:"id"`
	Description   string   `yaml:"description"`
	Category      string   `yaml:"category"`
	Tags          []string `yaml:"tags"`
	Prerequisites []string `yaml:"prerequisites"`
	Related       []string `yaml:"related"`
}

// ParseUnit parses one unit document: a `---`-fenced YAML frontmatter block
// followed by up to three `## Level N` sections. Level bodies are stored as
// authored; cumulative assembly happens at extraction time.
func ParseUnit(path string, data []byte) (*api.Unit, error) {
	text := string(data)

	meta, body, err := splitFrontmatter(text)
	if err != nil {
		return nil, &api.MalformedUnitError{Path: path, Reason: err.Error()}
	}

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(meta), &fm); err != nil {
		return nil, &api.MalformedUnitError{Path: path, Reason: fmt.Sprintf("invalid frontmatter: %v", err)}
	}

	if fm.ID == "" {
		return nil, &api.MalformedUnitError{Path: path, Reason: "missing required field: id"}
	}
	if len(fm.ID) > MaxIDLength {
		return nil, &api.MalformedUnitError{Path: path, Reason: fmt.Sprintf("id %q exceeds %d characters", fm.ID, MaxIDLength)}
	}
	if !idPattern.MatchString(fm.ID) {
		return nil, &api.MalformedUnitError{Path: path, Reason: fmt.Sprintf("id %q is not lowercase hyphen-separated", fm.ID)}
	}
	if fm.Description == "" {
		return nil, &api.MalformedUnitError{Path: path, Reason: "missing required field: description"}
	}

	category := api.CategoryGeneral
	if fm.Category != "" {
		c, ok := api.ParseCategory(fm.Category)
		if !ok {
			return nil, &api.MalformedUnitError{Path: path, Reason: fmt.Sprintf("unknown category %q", fm.Category)}
		}
		category = c
	}

	levels, err := splitLevels(body)
	if err != nil {
		return nil, &api.MalformedUnitError{Path: path, Reason: err.Error()}
	}
	if len(levels) == 0 || strings.TrimSpace(levels[0].Body) == "" {
		return nil, &api.MalformedUnitError{Path: path, Reason: "Level 1 body is missing or empty"}
	}

	return &api.Unit{
		ID:            fm.ID,
		Category:      category,
		Description:   fm.Description,
		Tags:          fm.Tags,
		Prerequisites: fm.Prerequisites,
		Related:       fm.Related,
		Levels:        levels,
		Path:          path,
	}, nil
}

// splitFrontmatter separates the fenced YAML block from the document body.
func splitFrontmatter(text string) (meta, body string, err error) {
	if !strings.HasPrefix(text, "---") {
		return "", "", fmt.Errorf("missing frontmatter block")
	}
	rest := text[3:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return "", "", fmt.Errorf("unterminated frontmatter block")
	}
	meta = rest[:end]
	body = rest[end+len("\n---"):]
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	}
	return meta, body, nil
}

// splitLevels cuts the body at `## Level N` headers. Levels must appear in
// ascending order without gaps so the cumulative invariant holds.
func splitLevels(body string) ([]api.LevelBody, error) {
	matches := levelPattern.FindAllStringSubmatchIndex(body, -1)
	if len(matches) == 0 {
		return nil, nil
	}

	var levels []api.LevelBody
	for i, m := range matches {
		n, _ := strconv.Atoi(body[m[2]:m[3]])
		if n != i+1 {
			return nil, fmt.Errorf("level sections out of order: found Level %d at position %d", n, i+1)
		}
		start := m[1]
		end := len(body)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		levels = append(levels, api.LevelBody{
			Level: n,
			Body:  strings.TrimSpace(body[start:end]),
		})
	}
	return levels, nil
}
