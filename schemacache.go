// Package schemacache resolves namespace and location references to
// schema documents, scoped to a logical project unit, and caches the
// discovered index per scope until the scope's dependency roots
// change.
package schemacache

import (
	"path"
	"strings"

	"github.com/schemacache/schemacache/internal/observe"
	"github.com/schemacache/schemacache/internal/resource"
	"github.com/schemacache/schemacache/internal/schema"
	"github.com/schemacache/schemacache/internal/scopecache"
	"github.com/schemacache/schemacache/internal/sets"
)

// Schema is the parsed identity of one schema document.
type Schema = schema.Schema

// SchemaSet is one fully indexed, transformed generation for a scope.
type SchemaSet = sets.SchemaSet

// ConflictError reports two schemas colliding on a location.
type ConflictError = sets.ConflictError

// Root is one dependency root of a scope.
type Root = resource.Root

// Token is the opaque comparable dependency snapshot for a scope.
type Token = scopecache.Token

// Sink receives engine diagnostics.
type Sink = observe.Sink

// Event is a single diagnostic.
type Event = observe.Event

// DefaultExternalPrefix is the advertised-location prefix used when a
// scope's configuration does not name one.
const DefaultExternalPrefix = "http://localhost:8080/schema/"

// Scope identifies a logical project unit. The engine treats it as an
// opaque cache key.
type Scope string

// NoScope is the absent scope; every query against it resolves to
// empty rather than erroring.
const NoScope Scope = ""

// ScopeLookup maps a document path to its owning scope. It is
// supplied by the host; the provider drives the fallback chain
// (hint, then document, then containing directory).
type ScopeLookup interface {
	ScopeFor(documentPath string) (Scope, bool)
}

// ScopeLookupFunc adapts a function to ScopeLookup.
type ScopeLookupFunc func(documentPath string) (Scope, bool)

func (f ScopeLookupFunc) ScopeFor(p string) (Scope, bool) { return f(p) }

// ScopeConfig is the per-scope build configuration: the dependency
// roots to discover from and the external location prefix to rewrite
// to.
type ScopeConfig struct {
	Roots          []*Root
	ExternalPrefix string
}

// ConfigFunc returns the build configuration for a scope, false when
// the scope is unknown.
type ConfigFunc func(scope Scope) (ScopeConfig, bool)

// TokenFunc snapshots the external state a scope's set depends on.
// The cache rebuilds exactly when the returned value changes.
type TokenFunc func(scope Scope) Token

// Document is a materialized schema document.
type Document struct {
	Name      string
	Location  string // advertised external location
	Namespace string
	Content   []byte
}

// EligibleDocument reports whether a document path is a candidate for
// schema resolution at all.
func EligibleDocument(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".xsd", ".xml":
		return true
	}
	return false
}
