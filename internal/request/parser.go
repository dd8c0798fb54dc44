// Package request parses the textual load-directive grammar into a
// structured LoadRequest. Parsing is pure — no filesystem or catalog access
// — so it can be tested independent of corpus state.
//
// Grammar:
//
//	directive   = ["@load"] target {target} {flag}
//	target      = id | "[" id {"+" id} "]" | "product:" name
//	            | family ":*" | FAMILY ":" section
//	flag        = "--level" ("1"|"2"|"3") | "--language" lang | "--framework" fw
package request

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/agentic-research/loadout/api"
)

var (
	idShape     = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	familyShape = regexp.MustCompile(`^[a-z0-9*?-]+$`)
	legacyShape = regexp.MustCompile(`^[A-Z]+$`)
)

// Parse turns raw directive text into a LoadRequest. Any malformed input is
// a SyntaxError naming what was wrong; nothing is guessed or dropped.
func Parse(raw string) (*api.LoadRequest, error) {
	fail := func(reason string) (*api.LoadRequest, error) {
		return nil, &api.SyntaxError{Input: raw, Reason: reason}
	}

	tokens := strings.Fields(raw)
	if len(tokens) > 0 && (tokens[0] == "@load" || tokens[0] == "load") {
		// Convenience prefix: a pure front-end alias, same semantics.
		tokens = tokens[1:]
	}
	if len(tokens) == 0 {
		return fail("empty directive")
	}

	req := &api.LoadRequest{Level: 1}
	targets := 0

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		switch {
		case tok == "--level" || tok == "--language" || tok == "--framework":
			if i+1 >= len(tokens) {
				return fail("flag " + tok + " needs a value")
			}
			i++
			val := tokens[i]
			switch tok {
			case "--level":
				n, err := strconv.Atoi(val)
				if err != nil || n < 1 || n > 3 {
					return fail("--level must be 1, 2, or 3")
				}
				req.Level = n
			case "--language":
				req.Language = val
			case "--framework":
				req.Framework = val
			}

		case strings.HasPrefix(tok, "--"):
			return fail("unknown option " + tok)

		case strings.HasPrefix(tok, "["):
			// Bracketed "+"-joined group; may span several whitespace tokens.
			group := tok
			for !strings.HasSuffix(group, "]") {
				i++
				if i >= len(tokens) {
					return fail("unbalanced bracket group")
				}
				group += " " + tokens[i]
			}
			inner := strings.TrimSuffix(strings.TrimPrefix(group, "["), "]")
			items := strings.Split(inner, "+")
			any := false
			for _, item := range items {
				item = strings.TrimSpace(item)
				if item == "" {
					continue
				}
				any = true
				if err := classify(req, item); err != nil {
					return nil, &api.SyntaxError{Input: raw, Reason: err.Error()}
				}
				targets++
			}
			if !any {
				return fail("empty identifier list")
			}

		case strings.HasSuffix(tok, "]"):
			return fail("unbalanced bracket group")

		default:
			if err := classify(req, tok); err != nil {
				return nil, &api.SyntaxError{Input: raw, Reason: err.Error()}
			}
			targets++
		}
	}

	if targets == 0 {
		return fail("no identifiers requested")
	}
	return req, nil
}

// classify routes one target item into the right request field.
func classify(req *api.LoadRequest, item string) error {
	head, tail, hasColon := strings.Cut(item, ":")

	switch {
	case !hasColon:
		if !idShape.MatchString(item) {
			return errBadItem(item, "unit ids are lowercase hyphen-separated")
		}
		req.Explicit = append(req.Explicit, item)

	case head == "product":
		if tail == "" {
			return errBadItem(item, "product type name is empty")
		}
		if req.Product != "" {
			return errBadItem(item, "only one product type per directive")
		}
		req.Product = tail

	case tail == "*":
		if head == "" || !familyShape.MatchString(head) {
			return errBadItem(item, "wildcard family is empty or malformed")
		}
		req.Wildcards = append(req.Wildcards, head)

	case legacyShape.MatchString(head):
		if tail == "" {
			return errBadItem(item, "legacy code has no section")
		}
		req.LegacyCodes = append(req.LegacyCodes, item)

	default:
		return errBadItem(item, "not an id, product:<name>, <family>:*, or FAMILY:<section>")
	}
	return nil
}

type itemError struct {
	item   string
	reason string
}

func errBadItem(item, reason string) error {
	return &itemError{item: item, reason: reason}
}

func (e *itemError) Error() string {
	return "bad target " + strconv.Quote(e.item) + ": " + e.reason
}
