package schemacache

import (
	"fmt"
	"path"

	"github.com/schemacache/schemacache/internal/discover"
	"github.com/schemacache/schemacache/internal/observe"
	"github.com/schemacache/schemacache/internal/resource"
	"github.com/schemacache/schemacache/internal/scopecache"
	"github.com/schemacache/schemacache/internal/sets"
	"github.com/schemacache/schemacache/internal/transform"
)

// Provider is the query surface over the scoped schema cache.
// Concurrent use is safe: lookups read immutable set generations and
// rebuilds are serialized per scope by the cache.
type Provider struct {
	scopes ScopeLookup
	config ConfigFunc
	cache  *scopecache.Cache
	sink   observe.Sink
}

// NewProvider wires the engine. token decides cache staleness; a nil
// sink discards diagnostics.
func NewProvider(scopes ScopeLookup, config ConfigFunc, token TokenFunc, sink Sink) *Provider {
	if sink == nil {
		sink = observe.NopSink{}
	}
	if token == nil {
		// No token provider means nothing can go stale: build once.
		token = func(Scope) Token { return nil }
	}
	p := &Provider{
		scopes: scopes,
		config: config,
		sink:   sink,
	}
	p.cache = scopecache.New(
		func(scope string) Token { return token(Scope(scope)) },
		p.buildScope,
		sink,
	)
	return p
}

// buildScope is the cache's build function: discover from the scope's
// roots, then rewrite advertised locations, then publish.
func (p *Provider) buildScope(scope string) (*sets.SchemaSet, error) {
	cfg, ok := p.config(Scope(scope))
	if !ok {
		// Unknown scope: an empty set, not an error.
		return sets.Build(nil)
	}

	res := resource.NewResolver(cfg.Roots...)
	set, err := discover.NewBuilder(res, p.sink).Build(scope)
	if err != nil {
		return nil, err
	}

	prefix := cfg.ExternalPrefix
	if prefix == "" {
		prefix = DefaultExternalPrefix
	}
	return transform.NewPipeline(transform.AddPrefix(prefix)).Apply(set)
}

// findScope runs the fallback chain: explicit hint, then the document
// itself, then its containing directory.
func (p *Provider) findScope(hint Scope, documentPath string) (Scope, bool) {
	if hint != NoScope {
		return hint, true
	}
	if p.scopes == nil || documentPath == "" {
		return NoScope, false
	}
	if s, ok := p.scopes.ScopeFor(documentPath); ok {
		return s, true
	}
	if dir := path.Dir(documentPath); dir != documentPath {
		if s, ok := p.scopes.ScopeFor(dir); ok {
			return s, true
		}
	}
	return NoScope, false
}

// set returns the scope's current generation, absent on build failure
// with no prior generation.
func (p *Provider) set(scope Scope) (*sets.SchemaSet, bool) {
	set, err := p.cache.Get(string(scope))
	if err != nil || set == nil {
		return nil, false
	}
	return set, true
}

// Resolve maps a reference string to a schema. The reference is tried
// as a namespace first (first-inserted schema wins), then as an exact
// or suffix location. An empty reference is absent without touching
// the cache.
func (p *Provider) Resolve(hint Scope, ref, baseDocument string) (*Schema, bool) {
	if ref == "" {
		return nil, false
	}
	scope, ok := p.findScope(hint, baseDocument)
	if !ok {
		return nil, false
	}
	set, ok := p.set(scope)
	if !ok {
		return nil, false
	}

	if sc, ok := set.First(ref); ok {
		return sc, true
	}
	return set.ByLocation(ref)
}

// Materialize loads the concrete document for a resolved schema.
// Identity of the schema is stable within one generation; document
// values are built per call and may be cached by the host.
func (p *Provider) Materialize(scope Scope, sc *Schema) (*Document, error) {
	cfg, ok := p.config(scope)
	if !ok {
		return nil, fmt.Errorf("materialize %s: unknown scope %q", sc.Name, scope)
	}
	res := resource.NewResolver(cfg.Roots...)
	content, err := res.Load(sc.CanonicalLocation)
	if err != nil {
		return nil, fmt.Errorf("materialize %s: %w", sc.Name, err)
	}
	return &Document{
		Name:      sc.Name,
		Location:  sc.Location,
		Namespace: sc.TargetNamespace,
		Content:   content,
	}, nil
}

// AvailableNamespaces returns the namespace key set for the document's
// scope, optionally filtered. Empty when the document has no scope.
func (p *Provider) AvailableNamespaces(documentPath string, filter func(string) bool) []string {
	scope, ok := p.findScope(NoScope, documentPath)
	if !ok {
		return nil
	}
	set, ok := p.set(scope)
	if !ok {
		return nil
	}

	all := set.Namespaces()
	if filter == nil {
		return all
	}
	out := all[:0]
	for _, ns := range all {
		if filter(ns) {
			out = append(out, ns)
		}
	}
	return out
}

// DefaultPrefix returns the preferred display prefix for a namespace,
// taken from the first schema mapped to it.
func (p *Provider) DefaultPrefix(namespace, contextDocument string) (string, bool) {
	scope, ok := p.findScope(NoScope, contextDocument)
	if !ok {
		return "", false
	}
	set, ok := p.set(scope)
	if !ok {
		return "", false
	}
	sc, ok := set.First(namespace)
	if !ok || sc.Prefix == "" {
		return "", false
	}
	return sc.Prefix, true
}

// ExternalLocations returns the advertised location(s) for a
// namespace, in builder order without duplicates.
func (p *Provider) ExternalLocations(namespace, contextDocument string) ([]string, bool) {
	scope, ok := p.findScope(NoScope, contextDocument)
	if !ok {
		return nil, false
	}
	set, ok := p.set(scope)
	if !ok {
		return nil, false
	}

	schemas := set.ByNamespace(namespace)
	if len(schemas) == 0 {
		return nil, false
	}
	seen := make(map[string]bool, len(schemas))
	out := make([]string, 0, len(schemas))
	for _, sc := range schemas {
		if !seen[sc.Location] {
			seen[sc.Location] = true
			out = append(out, sc.Location)
		}
	}
	return out, true
}

// SchemaSet exposes a scope's current generation directly, for hosts
// that serve or inspect the whole set.
func (p *Provider) SchemaSet(scope Scope) (*SchemaSet, error) {
	return p.cache.Get(string(scope))
}

// Evict drops a scope's cached generation, for hosts that observe
// scope removal.
func (p *Provider) Evict(scope Scope) {
	p.cache.Evict(string(scope))
}
