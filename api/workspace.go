// Package api holds the public workspace configuration: which scopes
// exist, which dependency roots each one discovers schemas from, and
// which external prefix its locations are rewritten to.
package api

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

// Workspace is the decoded workspace file.
type Workspace struct {
	Scopes []Scope `hcl:"scope,block"`
}

// Scope is one scope block:
//
//	scope "app" {
//	  roots  = ["./app/schema", "./lib/schema"]
//	  prefix = "http://localhost:8080/schema/"
//	}
type Scope struct {
	Name   string   `hcl:"name,label"`
	Roots  []string `hcl:"roots"`
	Prefix string   `hcl:"prefix,optional"`
}

// LoadWorkspace decodes an HCL workspace file. Relative roots are
// resolved against the file's directory.
func LoadWorkspace(path string) (*Workspace, error) {
	var ws Workspace
	if err := hclsimple.DecodeFile(path, nil, &ws); err != nil {
		return nil, fmt.Errorf("workspace %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i := range ws.Scopes {
		for j, root := range ws.Scopes[i].Roots {
			if !filepath.IsAbs(root) {
				ws.Scopes[i].Roots[j] = filepath.Join(base, root)
			}
		}
	}
	return &ws, nil
}

// Scope returns the named scope block.
func (w *Workspace) Scope(name string) (*Scope, bool) {
	for i := range w.Scopes {
		if w.Scopes[i].Name == name {
			return &w.Scopes[i], true
		}
	}
	return nil, false
}

// ScopeFor returns the scope owning a document path: the first scope
// with a root that is an ancestor of the path.
func (w *Workspace) ScopeFor(documentPath string) (string, bool) {
	abs, err := filepath.Abs(documentPath)
	if err != nil {
		abs = documentPath
	}
	for i := range w.Scopes {
		for _, root := range w.Scopes[i].Roots {
			if abs == root || strings.HasPrefix(abs, root+string(filepath.Separator)) {
				return w.Scopes[i].Name, true
			}
		}
	}
	return "", false
}

// Fingerprint condenses a scope's structural configuration into a
// comparable string, suitable as dependency-token material.
func (s *Scope) Fingerprint() string {
	return strings.Join(s.Roots, "\x1f") + "\x1f" + s.Prefix
}
