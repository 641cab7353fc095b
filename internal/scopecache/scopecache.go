// Package scopecache caches one indexed schema set per scope, keyed on
// an opaque dependency token supplied by the host. A cached set is
// served until the token changes; rebuilds swap the whole generation
// atomically, in the spirit of a hot-swappable store: readers holding
// the old generation keep a fully consistent view.
package scopecache

import (
	"fmt"
	"sync"

	"github.com/schemacache/schemacache/internal/observe"
	"github.com/schemacache/schemacache/internal/sets"
)

// Token is the opaque comparable snapshot of the external state a
// scope's set depends on. The cache never interprets it; inequality
// means "rebuild". Values must be comparable with ==.
type Token any

// TokenFunc returns the current token for a scope.
type TokenFunc func(scope string) Token

// BuildFunc produces a fresh, fully transformed set for a scope.
type BuildFunc func(scope string) (*sets.SchemaSet, error)

type entry struct {
	mu    sync.Mutex // serializes rebuilds for this scope only
	set   *sets.SchemaSet
	token Token
	built bool
}

// Cache maps scopes to their current schema set generation.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry

	token TokenFunc
	build BuildFunc
	sink  observe.Sink
}

// New wires a cache. A nil sink is replaced by NopSink.
func New(token TokenFunc, build BuildFunc, sink observe.Sink) *Cache {
	if sink == nil {
		sink = observe.NopSink{}
	}
	return &Cache{
		entries: make(map[string]*entry),
		token:   token,
		build:   build,
		sink:    sink,
	}
}

// Get returns the scope's current set, rebuilding on first access or
// when the dependency token moved. A failed rebuild keeps serving the
// last good generation (the failure goes to the sink); only a scope
// with no prior generation propagates the error.
//
// Rebuilds for the same scope are serialized; other scopes are fully
// independent and never block on this one.
func (c *Cache) Get(scope string) (*sets.SchemaSet, error) {
	c.mu.Lock()
	e, ok := c.entries[scope]
	if !ok {
		e = &entry{}
		c.entries[scope] = e
	}
	c.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	current := c.token(scope)
	if e.built && e.token == current {
		return e.set, nil
	}

	c.sink.Publish(observe.Event{Kind: observe.KindRebuildStart, Scope: scope})
	set, err := c.build(scope)
	if err != nil {
		c.sink.Publish(observe.Event{Kind: observe.KindRebuildFailed, Scope: scope, Err: err})
		if e.built {
			return e.set, nil
		}
		return nil, fmt.Errorf("build scope %s: %w", scope, err)
	}

	e.set = set
	e.token = current
	e.built = true
	c.sink.Publish(observe.Event{Kind: observe.KindRebuildDone, Scope: scope, Count: set.Len()})
	return set, nil
}

// Evict drops a scope's entry, typically on an external signal that
// the scope ceased to exist. In-flight readers keep their generation.
func (c *Cache) Evict(scope string) {
	c.mu.Lock()
	delete(c.entries, scope)
	c.mu.Unlock()
}

// Cached reports whether a scope currently has a built generation,
// without triggering a rebuild.
func (c *Cache) Cached(scope string) bool {
	c.mu.Lock()
	e, ok := c.entries[scope]
	c.mu.Unlock()
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.built
}
