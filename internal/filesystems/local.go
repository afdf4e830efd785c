package filesystems

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"
)

// LocalFS serves a project tree straight from the host filesystem
type LocalFS struct{}

func NewLocalFS() *LocalFS {
	return &LocalFS{}
}

func (l *LocalFS) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

func (l *LocalFS) Stat(name string) (FileInfo, error) {
	return os.Stat(name)
}

func (l *LocalFS) ReadDir(name string) iter.Seq2[DirEntry, error] {
	return func(yield func(DirEntry, error) bool) {
		entries, err := os.ReadDir(name)
		if err != nil {
			yield(nil, err)
			return
		}
		for _, entry := range entries {
			if !yield(osDirEntry{entry}, nil) {
				return
			}
		}
	}
}

func (l *LocalFS) Walk(root string, fn WalkFunc) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fn(path, nil, err)
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			return fn(path, nil, infoErr)
		}
		return fn(path, info, nil)
	})
}

func (l *LocalFS) Join(elem ...string) string { return filepath.Join(elem...) }

func (l *LocalFS) Base(path string) string { return filepath.Base(path) }

func (l *LocalFS) Dir(path string) string { return filepath.Dir(path) }

func (l *LocalFS) Rel(basepath, targpath string) (string, error) {
	return filepath.Rel(basepath, targpath)
}

// osDirEntry adapts os.DirEntry's Info return type to this package's FileInfo
type osDirEntry struct {
	os.DirEntry
}

func (e osDirEntry) Info() (FileInfo, error) {
	return e.DirEntry.Info()
}
