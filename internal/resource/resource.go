// Package resource enumerates and loads raw schema sources from a
// scope's dependency roots. Roots are billy filesystems, so tests run
// against memfs while production uses osfs. No caching happens here.
package resource

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	billy "github.com/go-git/go-billy/v5"
)

// ErrNotFound reports a location no root can satisfy. A single missing
// source never aborts enumeration of the rest.
var ErrNotFound = errors.New("schema source not found")

// DefaultExtensions are the file suffixes treated as schema sources.
var DefaultExtensions = []string{".xsd"}

// Root is one dependency root: a labeled filesystem whose schema files
// are reachable from a scope.
type Root struct {
	Name string
	FS   billy.Filesystem
}

// Source is one enumerable raw schema source within a root.
type Source struct {
	// Location is the canonical, root-relative location ("/lib/a.xsd").
	Location string
	// Root is the root the source was discovered in.
	Root *Root
}

// Resolver walks a fixed, ordered list of roots.
type Resolver struct {
	roots []*Root
	exts  []string
}

// NewResolver builds a resolver over roots, declaration order
// preserved. Declaration order is the tie-break for duplicate
// locations downstream.
func NewResolver(roots ...*Root) *Resolver {
	return &Resolver{roots: roots, exts: DefaultExtensions}
}

// WithExtensions overrides the recognized schema file suffixes.
func (r *Resolver) WithExtensions(exts ...string) *Resolver {
	r.exts = exts
	return r
}

// Roots returns the dependency roots in declaration order.
func (r *Resolver) Roots() []*Root {
	return r.roots
}

// Enumerate walks one root and returns every schema source under it,
// directories sorted for a deterministic order.
func (r *Resolver) Enumerate(root *Root) ([]Source, error) {
	var out []Source
	if err := r.walk(root, "/", &out); err != nil {
		return nil, fmt.Errorf("enumerate root %s: %w", root.Name, err)
	}
	return out, nil
}

func (r *Resolver) walk(root *Root, dir string, out *[]Source) error {
	entries, err := root.FS.ReadDir(dir)
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		p := path.Join(dir, e.Name())
		if e.IsDir() {
			if err := r.walk(root, p, out); err != nil {
				return err
			}
			continue
		}
		if r.schemaFile(e.Name()) {
			*out = append(*out, Source{Location: p, Root: root})
		}
	}
	return nil
}

func (r *Resolver) schemaFile(name string) bool {
	for _, ext := range r.exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// Load reads the raw content for a location, trying each root in
// order. The first root that has the file wins.
func (r *Resolver) Load(location string) ([]byte, error) {
	for _, root := range r.roots {
		f, err := root.FS.Open(location)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("load %s from %s: %w", location, root.Name, err)
		}
		data, err := io.ReadAll(f)
		cerr := f.Close()
		if err != nil {
			return nil, fmt.Errorf("load %s from %s: %w", location, root.Name, err)
		}
		if cerr != nil {
			return nil, fmt.Errorf("load %s from %s: %w", location, root.Name, cerr)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, location)
}
