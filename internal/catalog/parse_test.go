package catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/agentic-research/loadout/api"
)

func TestParseUnit_LevelBodies(t *testing.T) {
	u, err := ParseUnit("skills/x/SKILL.md", []byte(validUnit))
	if err != nil {
		t.Fatalf("ParseUnit: %v", err)
	}
	if !strings.Contains(u.Levels[0].Body, "short-lived tokens") {
		t.Errorf("Level 1 body = %q", u.Levels[0].Body)
	}
	if !strings.Contains(u.Levels[1].Body, "Rotate signing keys") {
		t.Errorf("Level 2 body = %q", u.Levels[1].Body)
	}
}

func TestParseUnit_Rejections(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"missing frontmatter", "## Level 1: x\n\nbody\n"},
		{"missing id", "---\ndescription: d\n---\n\n## Level 1: x\n\nbody\n"},
		{"missing description", "---\nid: a-b\n---\n\n## Level 1: x\n\nbody\n"},
		{"uppercase id", "---\nid: Bad-ID\ndescription: d\n---\n\n## Level 1: x\n\nbody\n"},
		{"overlong id", "---\nid: " + strings.Repeat("a", 70) + "\ndescription: d\n---\n\n## Level 1: x\n\nbody\n"},
		{"empty level one", "---\nid: a-b\ndescription: d\n---\n\n## Level 1: x\n\n"},
		{"no levels", "---\nid: a-b\ndescription: d\n---\n\nprose only\n"},
		{"unknown category", "---\nid: a-b\ndescription: d\ncategory: bogus\n---\n\n## Level 1: x\n\nbody\n"},
		{"level gap", "---\nid: a-b\ndescription: d\n---\n\n## Level 2: x\n\nbody\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseUnit("SKILL.md", []byte(tc.doc))
			var malformed *api.MalformedUnitError
			if !errors.As(err, &malformed) {
				t.Fatalf("err = %v, want MalformedUnitError", err)
			}
		})
	}
}

func TestParseUnit_DefaultsToGeneralCategory(t *testing.T) {
	u, err := ParseUnit("SKILL.md", []byte("---\nid: a-b\ndescription: d\n---\n\n## Level 1: x\n\nbody\n"))
	if err != nil {
		t.Fatalf("ParseUnit: %v", err)
	}
	if u.Category != api.CategoryGeneral {
		t.Errorf("Category = %q, want general", u.Category)
	}
}
