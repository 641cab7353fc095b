// Package sets holds the immutable, indexed result of one discovery
// pass: the schema collection plus its namespace and location indexes.
// A set is never mutated after Build; transforms produce new sets.
package sets

import (
	"fmt"
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring"

	"github.com/schemacache/schemacache/internal/schema"
)

// ConflictError reports two schemas claiming the same location. It
// fails the whole build; a set with a conflicting index is never
// published.
type ConflictError struct {
	Location string
	A, B     *schema.Schema
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting schema location %q: %s vs %s",
		e.Location, e.A.CanonicalLocation, e.B.CanonicalLocation)
}

// SchemaSet owns one generation of discovered schemas.
//
// Schemas are interned to ordinals in insertion (builder) order; the
// namespace index maps each namespace to a roaring bitmap of ordinals,
// so "first schema for a namespace" is simply the bitmap minimum.
type SchemaSet struct {
	schemas []*schema.Schema

	byLocation  map[string]uint32 // advertised location -> ordinal
	byCanonical map[string]uint32 // canonical location -> ordinal
	byNamespace map[string]*roaring.Bitmap
}

// Build indexes schemas, which must already be deduplicated by
// canonical location. Advertised-location collisions (possible after a
// rewrite maps distinct canonical locations onto one name) are
// reported as *ConflictError.
func Build(schemas []*schema.Schema) (*SchemaSet, error) {
	s := &SchemaSet{
		schemas:     schemas,
		byLocation:  make(map[string]uint32, len(schemas)),
		byCanonical: make(map[string]uint32, len(schemas)),
		byNamespace: make(map[string]*roaring.Bitmap),
	}

	for i, sc := range schemas {
		ord := uint32(i)

		if prev, ok := s.byLocation[sc.Location]; ok {
			return nil, &ConflictError{Location: sc.Location, A: s.schemas[prev], B: sc}
		}
		s.byLocation[sc.Location] = ord

		if prev, ok := s.byCanonical[sc.CanonicalLocation]; ok {
			return nil, &ConflictError{Location: sc.CanonicalLocation, A: s.schemas[prev], B: sc}
		}
		s.byCanonical[sc.CanonicalLocation] = ord

		if ns := sc.TargetNamespace; ns != "" {
			bm, ok := s.byNamespace[ns]
			if !ok {
				bm = roaring.New()
				s.byNamespace[ns] = bm
			}
			bm.Add(ord)
		}
	}

	return s, nil
}

// Len returns the number of schemas in the set.
func (s *SchemaSet) Len() int {
	return len(s.schemas)
}

// Schemas returns the collection in builder order. Callers must not
// modify the returned slice.
func (s *SchemaSet) Schemas() []*schema.Schema {
	return s.schemas
}

// ByNamespace returns every schema advertising ns, builder order.
func (s *SchemaSet) ByNamespace(ns string) []*schema.Schema {
	bm, ok := s.byNamespace[ns]
	if !ok {
		return nil
	}
	out := make([]*schema.Schema, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, s.schemas[it.Next()])
	}
	return out
}

// First returns the first schema inserted under ns.
func (s *SchemaSet) First(ns string) (*schema.Schema, bool) {
	bm, ok := s.byNamespace[ns]
	if !ok || bm.IsEmpty() {
		return nil, false
	}
	return s.schemas[bm.Minimum()], true
}

// Namespaces returns the sorted namespace key set.
func (s *SchemaSet) Namespaces() []string {
	out := make([]string, 0, len(s.byNamespace))
	for ns := range s.byNamespace {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// ByLocation resolves a location string. Exact matches against
// advertised then canonical locations win; otherwise a suffix match
// against canonical locations is attempted, succeeding only when
// exactly one schema matches. Ambiguity is not resolved arbitrarily.
func (s *SchemaSet) ByLocation(loc string) (*schema.Schema, bool) {
	if loc == "" {
		return nil, false
	}
	if ord, ok := s.byLocation[loc]; ok {
		return s.schemas[ord], true
	}
	if ord, ok := s.byCanonical[loc]; ok {
		return s.schemas[ord], true
	}

	var found *schema.Schema
	for _, sc := range s.schemas {
		if strings.HasSuffix(sc.CanonicalLocation, loc) {
			if found != nil {
				return nil, false // ambiguous suffix
			}
			found = sc
		}
	}
	return found, found != nil
}
