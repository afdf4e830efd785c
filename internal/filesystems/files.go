package filesystems

import (
	"strings"
)

// FindFile looks up a file by name in a directory, matching case-insensitively.
// It returns the path with the on-disk casing, or "" when absent.
func FindFile(filesystem FileSystem, dir, filename string) (string, error) {
	for entry, err := range filesystem.ReadDir(dir) {
		if err != nil {
			return "", err
		}
		if !entry.IsDir() && strings.EqualFold(entry.Name(), filename) {
			return filesystem.Join(dir, entry.Name()), nil
		}
	}

	return "", nil
}
