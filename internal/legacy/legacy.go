// Package legacy translates old-style composite load codes (FAMILY:section,
// e.g. SEC:auth) into current catalog ids. The mapping table is static
// per-session; codes with no mapping degrade to a warning, never an error,
// so stale syntax cannot block an otherwise valid request.
package legacy

import (
	"fmt"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"gopkg.in/yaml.v3"
)

// Translator holds the family:section -> id table.
type Translator struct {
	families map[string]map[string]string
}

// mappingsDoc is the legacy-mappings.yaml layout:
//
//	families:
//	  SEC:
//	    auth: security-authentication
type mappingsDoc struct {
	Families map[string]map[string]string `yaml:"families"`
}

// Load reads the mapping table. A missing file yields an empty translator.
func Load(fsys billy.Filesystem, path string) (*Translator, error) {
	data, err := util.ReadFile(fsys, path)
	if err != nil {
		if _, statErr := fsys.Stat(path); statErr != nil {
			return &Translator{families: map[string]map[string]string{}}, nil
		}
		return nil, err
	}

	var doc mappingsDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if doc.Families == nil {
		doc.Families = map[string]map[string]string{}
	}
	return &Translator{families: doc.Families}, nil
}

// New builds a translator from an in-memory table (used by tests and hosts
// that assemble configuration themselves).
func New(families map[string]map[string]string) *Translator {
	if families == nil {
		families = map[string]map[string]string{}
	}
	return &Translator{families: families}
}

// Translate maps one composite code to a current id. ok is false for codes
// with no mapping or malformed codes; the caller downgrades that to a
// warning and skips the code.
func (t *Translator) Translate(code string) (id string, ok bool) {
	family, section, found := strings.Cut(code, ":")
	if !found || family == "" || section == "" {
		return "", false
	}
	sections, ok := t.families[family]
	if !ok {
		return "", false
	}
	id, ok = sections[section]
	return id, ok
}
