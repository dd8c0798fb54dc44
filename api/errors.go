package api

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by catalog lookups for ids that do not exist.
var ErrNotFound = errors.New("unit not found")

// ErrNothingFound signals an empty result set for a search-style command.
// The CLI maps it to exit code 2 rather than treating it as a failure.
var ErrNothingFound = errors.New("nothing found")

// MalformedUnitError is fatal at catalog load: a unit file is missing
// required metadata, has an invalid id, or has an empty Level-1 body.
type MalformedUnitError struct {
	Path   string
	Reason string
}

func (e *MalformedUnitError) Error() string {
	return fmt.Sprintf("malformed unit %s: %s", e.Path, e.Reason)
}

// DuplicateUnitError is fatal at catalog load: two files declare the same id.
type DuplicateUnitError struct {
	ID        string
	Path      string
	FirstSeen string
}

func (e *DuplicateUnitError) Error() string {
	return fmt.Sprintf("duplicate unit id %q: declared in %s and %s", e.ID, e.FirstSeen, e.Path)
}

// BrokenDependencyError is fatal during closure: a requires edge points at an
// id absent from the catalog. A required unit is never silently dropped.
type BrokenDependencyError struct {
	From string
	To   string
}

func (e *BrokenDependencyError) Error() string {
	return fmt.Sprintf("broken dependency: %q requires unknown unit %q", e.From, e.To)
}

// ConflictError is fatal: the post-closure selection contains at least one
// declared conflicts pair. Both sides of every pair are named so the caller
// can correct the request.
type ConflictError struct {
	Pairs [][2]string
}

func (e *ConflictError) Error() string {
	parts := make([]string, len(e.Pairs))
	for i, p := range e.Pairs {
		parts[i] = fmt.Sprintf("%q and %q", p[0], p[1])
	}
	return "conflicting units selected: " + strings.Join(parts, ", ")
}

// UnknownIdentifierError is fatal: an explicitly requested id is absent from
// the catalog. A mistyped id must be reported, not downgraded to a smaller
// plan.
type UnknownIdentifierError struct {
	ID string
}

func (e *UnknownIdentifierError) Error() string {
	return fmt.Sprintf("unknown unit id %q", e.ID)
}

// UnknownProductTypeError is fatal: the requested product type is not in the
// matrix. Known ids are included so the caller can pick a valid one.
type UnknownProductTypeError struct {
	Product string
	Known   []string
}

func (e *UnknownProductTypeError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("unknown product type %q", e.Product)
	}
	return fmt.Sprintf("unknown product type %q (known: %s)", e.Product, strings.Join(e.Known, ", "))
}

// SyntaxError is fatal: the load directive text did not parse.
type SyntaxError struct {
	Input  string
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("bad load directive %q: %s", e.Input, e.Reason)
}
