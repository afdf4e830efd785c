package convert_test

import (
	"os"
	"os/exec"
	"path/filepath"

	"golang.org/x/sync/singleflight"
)

var cloneGroup singleflight.Group

// getTestRepo clones or returns the cached path to a test repository.
// Singleflight ensures only one clone per repo URL across all goroutines.
func getTestRepo(repoURL string) (string, error) {
	result, err, _ := cloneGroup.Do(repoURL, func() (interface{}, error) {
		return cloneRepo(repoURL)
	})
	if err != nil {
		return "", err
	}

	return result.(string), nil
}

func cloneRepo(repoURL string) (string, error) {
	repoName := filepath.Base(repoURL)
	if filepath.Ext(repoName) == ".git" {
		repoName = repoName[:len(repoName)-4]
	}

	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}

	repoDir := filepath.Join(cacheDir, ".tributary/testdata", repoName)

	// Reuse an existing checkout; a failed pull still leaves a usable tree
	if _, err := os.Stat(filepath.Join(repoDir, ".git")); err == nil {
		cmd := exec.Command("git", "pull")
		cmd.Dir = repoDir
		_ = cmd.Run()
		return repoDir, nil
	}

	if err := os.MkdirAll(filepath.Dir(repoDir), 0755); err != nil {
		return "", err
	}

	cmd := exec.Command("git", "clone", "--depth", "1", repoURL, repoDir)
	if err := cmd.Run(); err != nil {
		return "", err
	}

	return repoDir, nil
}
