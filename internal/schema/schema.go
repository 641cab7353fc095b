// Package schema holds the identity model for a single schema document:
// where it lives, which namespace it advertises, and which other
// documents it references.
package schema

import (
	"path"
	"strings"
)

// Schema is the parsed identity of one schema document. Values are
// immutable once built; rewrites go through With* copies so that a
// published set is never mutated under concurrent readers.
type Schema struct {
	// Name is the stable file-style name derived from the canonical
	// location's final path segment. Location rewrites key off it.
	Name string

	// CanonicalLocation is the deduplication key assigned during graph
	// building. It never changes, even after a rewrite.
	CanonicalLocation string

	// Location is the externally advertised location. It starts equal
	// to CanonicalLocation and is replaced by the transform pipeline.
	Location string

	// TargetNamespace is the namespace the document declares, possibly
	// empty for chameleon-style documents.
	TargetNamespace string

	// Prefix is the preferred display prefix for TargetNamespace,
	// empty when the document declares none.
	Prefix string

	// SubRefs are referenced schema locations in document order,
	// unresolved (possibly relative to CanonicalLocation).
	SubRefs []string
}

// WithLocation returns a copy advertising loc. The canonical location
// and everything else carries over unchanged.
func (s *Schema) WithLocation(loc string) *Schema {
	c := *s
	c.Location = loc
	return &c
}

// NameFor derives the stable schema name from a canonical location.
func NameFor(location string) string {
	return path.Base(strings.TrimSuffix(location, "/"))
}

// ResolveRef resolves a sub-reference against the location of the
// document that declared it. Absolute references (rooted paths or
// URLs with a scheme) pass through untouched.
func ResolveRef(base, ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "/") || strings.Contains(ref, "://") {
		return ref
	}
	return path.Join(path.Dir(base), ref)
}
