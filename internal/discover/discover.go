// Package discover assembles the full reachable schema set for a
// scope: every source enumerable from the dependency roots plus
// everything referenced from those, transitively.
package discover

import (
	"bytes"

	"github.com/schemacache/schemacache/internal/observe"
	"github.com/schemacache/schemacache/internal/resource"
	"github.com/schemacache/schemacache/internal/schema"
	"github.com/schemacache/schemacache/internal/sets"
)

// Builder runs the discovery pass. Per-source failures are recovered
// and published to the sink; only index conflicts fail a build.
type Builder struct {
	Resolver *resource.Resolver
	Sink     observe.Sink
}

// NewBuilder wires a builder; a nil sink is replaced by NopSink.
func NewBuilder(res *resource.Resolver, sink observe.Sink) *Builder {
	if sink == nil {
		sink = observe.NopSink{}
	}
	return &Builder{Resolver: res, Sink: sink}
}

// Build discovers and indexes every schema reachable from the roots.
// scope only labels diagnostics; the resolver already carries the
// scope's roots.
//
// The work queue is seeded in root declaration order, then enumeration
// order. Revisits are cut off by canonical location, which both
// resolves duplicates (first wins) and bounds cyclic references: a
// location is processed at most once no matter how many schemas refer
// to it.
func (b *Builder) Build(scope string) (*sets.SchemaSet, error) {
	var queue []string
	for _, root := range b.Resolver.Roots() {
		srcs, err := b.Resolver.Enumerate(root)
		if err != nil {
			// A corrupt root should not blind the whole scope.
			b.Sink.Publish(observe.Event{Kind: observe.KindRootSkipped, Scope: scope, Location: root.Name, Err: err})
			continue
		}
		for _, src := range srcs {
			queue = append(queue, src.Location)
		}
	}

	visited := make(map[string]bool)
	var schemas []*schema.Schema

	for len(queue) > 0 {
		loc := queue[0]
		queue = queue[1:]

		if loc == "" || visited[loc] {
			continue
		}
		visited[loc] = true

		data, err := b.Resolver.Load(loc)
		if err != nil {
			// Covers both ErrNotFound and unreadable sources; the
			// referrer's sub-reference is simply dropped.
			b.Sink.Publish(observe.Event{Kind: observe.KindSourceMissing, Scope: scope, Location: loc, Err: err})
			continue
		}

		sc, err := schema.Parse(loc, bytes.NewReader(data))
		if err != nil {
			b.Sink.Publish(observe.Event{Kind: observe.KindSourceBad, Scope: scope, Location: loc, Err: err})
			continue
		}

		schemas = append(schemas, sc)
		for _, ref := range sc.SubRefs {
			queue = append(queue, schema.ResolveRef(loc, ref))
		}
	}

	set, err := sets.Build(schemas)
	if err != nil {
		b.Sink.Publish(observe.Event{Kind: observe.KindConflict, Scope: scope, Err: err})
		return nil, err
	}
	return set, nil
}
