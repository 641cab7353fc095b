// Package setfs presents one schema set generation as a read-only
// billy filesystem: every schema is a root-level file named by its
// derived name, matching the advertised <prefix><name> scheme, plus a
// virtual _manifest.json describing the namespace mappings. The
// filesystem is the bridge to go-nfs for the serve command.
package setfs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/helper/chroot"
	"github.com/ohler55/ojg/oj"

	"github.com/schemacache/schemacache/internal/schema"
	"github.com/schemacache/schemacache/internal/sets"
)

const manifestName = "_manifest.json"

var errReadOnly = fmt.Errorf("read-only filesystem")

// LoadFunc fetches the raw content for a schema in the set.
type LoadFunc func(*schema.Schema) ([]byte, error)

// SetFS adapts a SchemaSet to billy.Filesystem. Content loads lazily
// through load and is memoized for the lifetime of the view, which is
// bounded by the generation it was built from.
type SetFS struct {
	set      *sets.SchemaSet
	load     LoadFunc
	manifest []byte
	built    time.Time

	mu      sync.Mutex
	content map[string][]byte // schema name -> loaded bytes
}

// New builds a filesystem view over set.
func New(set *sets.SchemaSet, load LoadFunc) *SetFS {
	manifest := map[string]any{}
	for _, ns := range set.Namespaces() {
		var locs []string
		for _, sc := range set.ByNamespace(ns) {
			locs = append(locs, sc.Location)
		}
		manifest[ns] = locs
	}

	return &SetFS{
		set:      set,
		load:     load,
		manifest: []byte(oj.JSON(manifest, 2) + "\n"),
		built:    time.Now(),
		content:  make(map[string][]byte),
	}
}

func (fs *SetFS) lookup(filename string) (*schema.Schema, bool) {
	name := cleanPath(filename)
	if name == "/" {
		return nil, false
	}
	name = name[1:] // schemas live at the root
	for _, sc := range fs.set.Schemas() {
		if sc.Name == name {
			return sc, true
		}
	}
	return nil, false
}

func (fs *SetFS) bytesFor(sc *schema.Schema) ([]byte, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if data, ok := fs.content[sc.Name]; ok {
		return data, nil
	}
	data, err := fs.load(sc)
	if err != nil {
		return nil, err
	}
	fs.content[sc.Name] = data
	return data, nil
}

// --- billy.Basic ---

func (fs *SetFS) Create(filename string) (billy.File, error) {
	return nil, errReadOnly
}

func (fs *SetFS) Open(filename string) (billy.File, error) {
	return fs.OpenFile(filename, os.O_RDONLY, 0)
}

func (fs *SetFS) OpenFile(filename string, flag int, perm os.FileMode) (billy.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE|os.O_TRUNC) != 0 {
		return nil, errReadOnly
	}
	name := cleanPath(filename)

	if name == "/"+manifestName {
		return &bytesFile{name: manifestName, data: fs.manifest}, nil
	}

	sc, ok := fs.lookup(name)
	if !ok {
		return nil, &os.PathError{Op: "open", Path: filename, Err: os.ErrNotExist}
	}
	data, err := fs.bytesFor(sc)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: filename, Err: err}
	}
	return &bytesFile{name: sc.Name, data: data}, nil
}

func (fs *SetFS) Stat(filename string) (os.FileInfo, error) {
	return fs.Lstat(filename)
}

func (fs *SetFS) Rename(oldpath, newpath string) error { return errReadOnly }
func (fs *SetFS) Remove(filename string) error         { return errReadOnly }

func (fs *SetFS) Join(elem ...string) string {
	return filepath.Join(elem...)
}

// --- billy.TempFile ---

func (fs *SetFS) TempFile(dir, prefix string) (billy.File, error) {
	return nil, billy.ErrNotSupported
}

// --- billy.Dir ---

func (fs *SetFS) ReadDir(path string) ([]os.FileInfo, error) {
	if cleanPath(path) != "/" {
		return nil, &os.PathError{Op: "readdir", Path: path, Err: os.ErrNotExist}
	}

	infos := make([]os.FileInfo, 0, fs.set.Len()+1)
	infos = append(infos, &staticFileInfo{
		name:    manifestName,
		size:    int64(len(fs.manifest)),
		mode:    0o444,
		modTime: fs.built,
	})
	for _, sc := range fs.set.Schemas() {
		infos = append(infos, fs.schemaInfo(sc))
	}
	return infos, nil
}

func (fs *SetFS) MkdirAll(filename string, perm os.FileMode) error {
	return errReadOnly
}

// --- billy.Symlink ---

func (fs *SetFS) Lstat(filename string) (os.FileInfo, error) {
	name := cleanPath(filename)

	if name == "/" {
		return &staticFileInfo{name: "/", mode: os.ModeDir | 0o555, modTime: fs.built}, nil
	}
	if name == "/"+manifestName {
		return &staticFileInfo{
			name:    manifestName,
			size:    int64(len(fs.manifest)),
			mode:    0o444,
			modTime: fs.built,
		}, nil
	}

	sc, ok := fs.lookup(name)
	if !ok {
		return nil, &os.PathError{Op: "lstat", Path: filename, Err: os.ErrNotExist}
	}
	return fs.schemaInfo(sc), nil
}

func (fs *SetFS) Symlink(target, link string) error {
	return billy.ErrNotSupported
}

func (fs *SetFS) Readlink(link string) (string, error) {
	return "", billy.ErrNotSupported
}

// --- billy.Chroot ---

func (fs *SetFS) Chroot(path string) (billy.Filesystem, error) {
	return chroot.New(fs, path), nil
}

func (fs *SetFS) Root() string {
	return "/"
}

// --- billy.Capable ---

func (fs *SetFS) Capabilities() billy.Capability {
	return billy.ReadCapability | billy.SeekCapability
}

// --- internals ---

func (fs *SetFS) schemaInfo(sc *schema.Schema) os.FileInfo {
	size := int64(0)
	fs.mu.Lock()
	if data, ok := fs.content[sc.Name]; ok {
		size = int64(len(data))
	}
	fs.mu.Unlock()
	if size == 0 {
		if data, err := fs.bytesFor(sc); err == nil {
			size = int64(len(data))
		}
	}
	return &staticFileInfo{
		name:    sc.Name,
		size:    size,
		mode:    0o444,
		modTime: fs.built,
	}
}

// cleanPath normalizes a billy path to a clean absolute path.
func cleanPath(path string) string {
	path = filepath.Clean("/" + path)
	if path == "." {
		return "/"
	}
	return path
}
