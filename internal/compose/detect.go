package compose

import (
	"errors"
	"fmt"
	"strings"

	"github.com/quixio/tributary/internal/filesystems"
)

// ErrNoComposeFile is returned when a directory holds none of the
// canonical compose file names
var ErrNoComposeFile = errors.New("no compose file found")

// Canonical file names in the lookup order compose itself uses
var composeFileNames = []string{
	"compose.yaml",
	"compose.yml",
	"docker-compose.yaml",
	"docker-compose.yml",
}

// Source identifies the compose file(s) a project is loaded from
type Source struct {
	// Path is the canonical compose file
	Path string

	// OverridePath is the matching *.override.* file, or "" when absent
	OverridePath string

	// Dir is the project directory holding the compose file
	Dir string
}

// Files lists the config files in merge order
func (s Source) Files() []string {
	files := []string{s.Path}
	if s.OverridePath != "" {
		files = append(files, s.OverridePath)
	}
	return files
}

// Locate finds the compose file for a project directory, matching names
// case-insensitively. When the canonical file has a sibling override file
// (compose.override.yaml for compose.yaml), the override is picked up too.
func Locate(filesystem filesystems.FileSystem, dir string) (Source, error) {
	for _, name := range composeFileNames {
		found, err := filesystems.FindFile(filesystem, dir, name)
		if err != nil {
			return Source{}, fmt.Errorf("failed to scan %s: %w", dir, err)
		}
		if found == "" {
			continue
		}

		src := Source{Path: found, Dir: dir}

		override, err := filesystems.FindFile(filesystem, dir, overrideName(name))
		if err != nil {
			return Source{}, fmt.Errorf("failed to scan %s: %w", dir, err)
		}
		src.OverridePath = override

		return src, nil
	}

	return Source{}, fmt.Errorf("%w in %s", ErrNoComposeFile, dir)
}

// overrideName inserts ".override" before the extension:
// docker-compose.yml becomes docker-compose.override.yml
func overrideName(name string) string {
	base, ext, _ := strings.Cut(name, ".")
	return base + ".override." + ext
}

// maxScanDepth bounds how far below the root LocateBelow descends
const maxScanDepth = 4

// Directories that hold dependencies or build output, never a project's
// own compose file
var excludeDirs = []string{
	"node_modules", "vendor", "bower_components",
	"venv", "env",
	"dist", "build", "out", "target",
	"tmp", "temp", "cache", "logs",
}

func ignoreDirectory(name string) bool {
	for _, pattern := range excludeDirs {
		if strings.EqualFold(name, pattern) {
			return true
		}
	}
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// LocateBelow finds the compose file for dir, descending into
// subdirectories when dir itself holds none. The match closest to dir
// wins; ties at the same depth resolve to the lexically first directory.
// Hidden directories and the usual dependency and build output
// directories are not scanned.
func LocateBelow(filesystem filesystems.FileSystem, dir string) (Source, error) {
	src, err := Locate(filesystem, dir)
	if err == nil || !errors.Is(err, ErrNoComposeFile) {
		return src, err
	}

	bestDir := ""
	bestDepth := 0

	walkErr := filesystem.Walk(dir, func(path string, info filesystems.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path == dir {
				return nil
			}
			if ignoreDirectory(info.Name()) {
				return filesystems.SkipDir
			}
			if rel, relErr := filesystem.Rel(dir, path); relErr == nil && strings.Count(rel, "/")+1 > maxScanDepth {
				return filesystems.SkipDir
			}
			return nil
		}

		if !isComposeName(info.Name()) {
			return nil
		}
		rel, relErr := filesystem.Rel(dir, path)
		if relErr != nil {
			return nil
		}

		depth := strings.Count(rel, "/")
		parent := filesystem.Dir(path)
		if bestDir == "" || depth < bestDepth || (depth == bestDepth && parent < bestDir) {
			bestDir = parent
			bestDepth = depth
		}
		return nil
	})
	if walkErr != nil {
		return Source{}, fmt.Errorf("failed to scan %s: %w", dir, walkErr)
	}

	if bestDir == "" {
		return Source{}, fmt.Errorf("%w under %s", ErrNoComposeFile, dir)
	}
	return Locate(filesystem, bestDir)
}

func isComposeName(name string) bool {
	for _, canonical := range composeFileNames {
		if strings.EqualFold(name, canonical) {
			return true
		}
	}
	return false
}
