// Package transform rewrites whole schema sets. Transforms run in
// registration order and each produces a fresh, re-indexed set, so a
// half-rewritten set can never leak to readers.
package transform

import (
	"github.com/schemacache/schemacache/internal/schema"
	"github.com/schemacache/schemacache/internal/sets"
)

// Transform maps one set to another. Implementations must be pure:
// same input set, same output.
type Transform func(*sets.SchemaSet) (*sets.SchemaSet, error)

// Pipeline is an ordered transform list.
type Pipeline struct {
	transforms []Transform
}

// NewPipeline registers transforms in application order.
func NewPipeline(ts ...Transform) *Pipeline {
	return &Pipeline{transforms: ts}
}

// Append registers another transform after the existing ones.
func (p *Pipeline) Append(t Transform) {
	p.transforms = append(p.transforms, t)
}

// Apply runs every transform. Any failure aborts the whole pipeline
// and the input set stays authoritative for the caller.
func (p *Pipeline) Apply(set *sets.SchemaSet) (*sets.SchemaSet, error) {
	var err error
	for _, t := range p.transforms {
		set, err = t(set)
		if err != nil {
			return nil, err
		}
	}
	return set, nil
}

// AddPrefix rewrites every schema's advertised location to
// prefix + schema name. The name derives from the canonical location,
// not the current advertised one, so applying the transform twice is
// a no-op rather than a double rewrite. Distinct schemas sharing a
// name surface as *sets.ConflictError.
func AddPrefix(prefix string) Transform {
	return func(set *sets.SchemaSet) (*sets.SchemaSet, error) {
		rewritten := make([]*schema.Schema, 0, set.Len())
		for _, sc := range set.Schemas() {
			rewritten = append(rewritten, sc.WithLocation(prefix+sc.Name))
		}
		return sets.Build(rewritten)
	}
}
