package filesystems

import (
	"io/fs"
	"iter"
	"time"
)

// FileSystem abstracts read access to a project tree so conversion works
// the same over a local checkout, a cloned repository or in-memory fixtures
type FileSystem interface {
	// ReadFile returns the contents of the named file
	ReadFile(name string) ([]byte, error)

	// Stat describes the named file or directory
	Stat(name string) (FileInfo, error)

	// ReadDir returns an iterator over the entries of the named directory
	ReadDir(name string) iter.Seq2[DirEntry, error]

	// Walk visits every file and directory below root, pruning subtrees
	// whose visit returns SkipDir
	Walk(root string, fn WalkFunc) error

	// Join builds a single path from elem
	Join(elem ...string) string

	// Base returns the final element of path
	Base(path string) string

	// Dir returns the path up to its final element
	Dir(path string) string

	// Rel expresses targpath relative to basepath
	Rel(basepath, targpath string) (string, error)
}

// DirEntry is one entry yielded by ReadDir
type DirEntry interface {
	Name() string
	IsDir() bool
	Type() fs.FileMode
	Info() (FileInfo, error)
}

// FileInfo describes a file, mirroring io/fs.FileInfo
type FileInfo interface {
	Name() string
	Size() int64
	Mode() fs.FileMode
	ModTime() time.Time
	IsDir() bool
	Sys() any
}

// WalkFunc is called by Walk for every visited path. The error argument
// reports a failure reading that path; returning it stops the walk.
type WalkFunc func(path string, info FileInfo, err error) error

// SkipDir prunes the directory being visited when returned from a WalkFunc
var SkipDir = fs.SkipDir
