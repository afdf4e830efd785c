package filesystems

import (
	"fmt"
	"io/fs"
	"iter"
	"path"
	"sort"
	"strings"
	"time"
)

// MemoryFS implements FileSystem over an in-memory file map. It exists for
// tests and doubles as a write target so a full conversion can run without
// touching disk.
type MemoryFS struct {
	files map[string][]byte
	dirs  map[string]bool
}

// NewMemoryFS creates an empty MemoryFS
func NewMemoryFS() *MemoryFS {
	return &MemoryFS{
		files: make(map[string][]byte),
		dirs:  make(map[string]bool),
	}
}

// AddFile stores a file, creating parent directories implicitly
func (m *MemoryFS) AddFile(name string, content []byte) {
	clean := path.Clean(name)
	m.files[clean] = content
	m.addParents(clean)
}

// AddDir records an (possibly empty) directory
func (m *MemoryFS) AddDir(name string) {
	clean := path.Clean(name)
	m.dirs[clean] = true
	m.addParents(clean)
}

func (m *MemoryFS) addParents(name string) {
	for dir := path.Dir(name); dir != "." && dir != "/"; dir = path.Dir(dir) {
		m.dirs[dir] = true
	}
}

// WriteFile satisfies the export sink so converted projects can be
// assembled in memory
func (m *MemoryFS) WriteFile(name string, content []byte) error {
	m.AddFile(name, content)
	return nil
}

// MkdirAll satisfies the export sink
func (m *MemoryFS) MkdirAll(name string) error {
	m.AddDir(name)
	return nil
}

func (m *MemoryFS) ReadFile(name string) ([]byte, error) {
	content, ok := m.files[path.Clean(name)]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", name)
	}
	return content, nil
}

func (m *MemoryFS) Stat(name string) (FileInfo, error) {
	clean := path.Clean(name)
	if content, ok := m.files[clean]; ok {
		return memoryFileInfo{name: path.Base(clean), size: int64(len(content))}, nil
	}
	if clean == "." || m.dirs[clean] {
		return memoryFileInfo{name: path.Base(clean), isDir: true}, nil
	}
	return nil, fmt.Errorf("not found: %s", name)
}

// directChild extracts the first path element of p below dir, when p
// lives under dir at all
func directChild(dir, p string) (string, bool) {
	if dir != "." {
		var under bool
		if p, under = strings.CutPrefix(p, dir+"/"); !under {
			return "", false
		}
	}
	if p == "" {
		return "", false
	}
	child, _, _ := strings.Cut(p, "/")
	return child, true
}

// children returns the sorted direct children of a directory
func (m *MemoryFS) children(dir string) []string {
	seen := make(map[string]bool)

	for p := range m.files {
		if child, ok := directChild(dir, p); ok {
			seen[child] = true
		}
	}
	for p := range m.dirs {
		if child, ok := directChild(dir, p); ok {
			seen[child] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *MemoryFS) ReadDir(name string) iter.Seq2[DirEntry, error] {
	return func(yield func(DirEntry, error) bool) {
		clean := path.Clean(name)
		if clean != "." && !m.dirs[clean] {
			yield(nil, fmt.Errorf("directory not found: %s", name))
			return
		}

		for _, child := range m.children(clean) {
			full := child
			if clean != "." {
				full = path.Join(clean, child)
			}
			content, isFile := m.files[full]
			entry := memoryDirEntry{name: child, size: int64(len(content)), isDir: !isFile}
			if !yield(entry, nil) {
				return
			}
		}
	}
}

func (m *MemoryFS) Walk(root string, fn WalkFunc) error {
	return m.walk(path.Clean(root), fn)
}

func (m *MemoryFS) walk(p string, fn WalkFunc) error {
	info, err := m.Stat(p)
	if err != nil {
		return fn(p, nil, err)
	}

	switch err := fn(p, info, nil); {
	case err == SkipDir && info.IsDir():
		return nil
	case err != nil:
		return err
	}

	if !info.IsDir() {
		return nil
	}
	for _, child := range m.children(p) {
		childPath := child
		if p != "." {
			childPath = path.Join(p, child)
		}
		if err := m.walk(childPath, fn); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemoryFS) Join(elem ...string) string {
	return path.Join(elem...)
}

func (m *MemoryFS) Base(p string) string {
	return path.Base(p)
}

func (m *MemoryFS) Dir(p string) string {
	return path.Dir(p)
}

func (m *MemoryFS) Rel(basepath, targpath string) (string, error) {
	base := path.Clean(basepath)
	target := path.Clean(targpath)

	switch {
	case base == target:
		return ".", nil
	case base == ".":
		return target, nil
	}
	if rest, ok := strings.CutPrefix(target, base+"/"); ok {
		return rest, nil
	}
	return target, nil
}

// memoryDirEntry implements DirEntry for MemoryFS
type memoryDirEntry struct {
	name  string
	size  int64
	isDir bool
}

func (e memoryDirEntry) Name() string { return e.name }
func (e memoryDirEntry) IsDir() bool  { return e.isDir }

func (e memoryDirEntry) Type() fs.FileMode {
	if e.isDir {
		return fs.ModeDir
	}
	return 0
}

func (e memoryDirEntry) Info() (FileInfo, error) {
	return memoryFileInfo{name: e.name, size: e.size, isDir: e.isDir}, nil
}

// memoryFileInfo implements FileInfo for MemoryFS
type memoryFileInfo struct {
	name  string
	size  int64
	isDir bool
}

func (fi memoryFileInfo) Name() string { return fi.name }
func (fi memoryFileInfo) Size() int64  { return fi.size }

func (fi memoryFileInfo) Mode() fs.FileMode {
	if fi.isDir {
		return fs.ModeDir | 0755
	}
	return 0644
}

func (fi memoryFileInfo) ModTime() time.Time { return time.Time{} }
func (fi memoryFileInfo) IsDir() bool        { return fi.isDir }
func (fi memoryFileInfo) Sys() any           { return nil }
