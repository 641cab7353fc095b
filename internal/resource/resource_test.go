package resource

import (
	"errors"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
)

func writeFiles(t *testing.T, root *Root, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := util.WriteFile(root.FS, name, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestEnumerate(t *testing.T) {
	root := &Root{Name: "lib", FS: memfs.New()}
	writeFiles(t, root, map[string]string{
		"/z.xsd":         "z",
		"/a.xsd":         "a",
		"/sub/deep.xsd":  "d",
		"/notes.txt":     "ignored",
		"/sub/other.xml": "ignored",
	})

	r := NewResolver(root)
	srcs, err := r.Enumerate(root)
	if err != nil {
		t.Fatalf("Enumerate returned error: %v", err)
	}

	want := []string{"/a.xsd", "/sub/deep.xsd", "/z.xsd"}
	if len(srcs) != len(want) {
		t.Fatalf("got %d sources, want %d: %+v", len(srcs), len(want), srcs)
	}
	for i, s := range srcs {
		if s.Location != want[i] {
			t.Errorf("srcs[%d].Location = %q, want %q", i, s.Location, want[i])
		}
		if s.Root != root {
			t.Errorf("srcs[%d].Root not set", i)
		}
	}
}

func TestEnumerateCustomExtensions(t *testing.T) {
	root := &Root{Name: "lib", FS: memfs.New()}
	writeFiles(t, root, map[string]string{"/a.xsd": "a", "/b.schema": "b"})

	r := NewResolver(root).WithExtensions(".schema")
	srcs, err := r.Enumerate(root)
	if err != nil {
		t.Fatalf("Enumerate returned error: %v", err)
	}
	if len(srcs) != 1 || srcs[0].Location != "/b.schema" {
		t.Fatalf("srcs = %+v, want just /b.schema", srcs)
	}
}

func TestLoadFirstRootWins(t *testing.T) {
	first := &Root{Name: "first", FS: memfs.New()}
	second := &Root{Name: "second", FS: memfs.New()}
	writeFiles(t, first, map[string]string{"/a.xsd": "from-first"})
	writeFiles(t, second, map[string]string{"/a.xsd": "from-second", "/b.xsd": "only-second"})

	r := NewResolver(first, second)

	data, err := r.Load("/a.xsd")
	if err != nil {
		t.Fatalf("Load(/a.xsd) returned error: %v", err)
	}
	if string(data) != "from-first" {
		t.Errorf("Load(/a.xsd) = %q, want from-first", data)
	}

	data, err = r.Load("/b.xsd")
	if err != nil {
		t.Fatalf("Load(/b.xsd) returned error: %v", err)
	}
	if string(data) != "only-second" {
		t.Errorf("Load(/b.xsd) = %q", data)
	}
}

func TestLoadNotFound(t *testing.T) {
	r := NewResolver(&Root{Name: "lib", FS: memfs.New()})
	if _, err := r.Load("/missing.xsd"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
