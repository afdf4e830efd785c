package filesystems

import (
	"context"
	"fmt"
	"iter"
	"os"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// GitFS implements FileSystem for remote git repositories. The repository
// is shallow-cloned into a temporary directory and all reads are served
// from that checkout. Paths given to GitFS are relative to the repo root.
type GitFS struct {
	repoURL  string
	ref      string
	checkout string
	local    *LocalFS
}

// NewGitFS clones the repository and returns a filesystem over the checkout.
// Callers own the checkout and should defer Cleanup.
func NewGitFS(ctx context.Context, repoURL, ref string) (*GitFS, error) {
	tempDir, err := os.MkdirTemp("", "tributary-git-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	opts := &git.CloneOptions{
		URL:          repoURL,
		Depth:        1,
		SingleBranch: true,
	}
	if ref != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(ref)
	}

	_, err = git.PlainCloneContext(ctx, tempDir, false, opts)
	if err != nil && ref != "" {
		// The ref may be a tag or the repo may use a different default
		// branch. Retry against HEAD.
		opts.ReferenceName = ""
		_, err = git.PlainCloneContext(ctx, tempDir, false, opts)
	}
	if err != nil {
		os.RemoveAll(tempDir)
		return nil, fmt.Errorf("failed to clone %s: %w", repoURL, err)
	}

	return &GitFS{
		repoURL:  repoURL,
		ref:      ref,
		checkout: tempDir,
		local:    NewLocalFS(),
	}, nil
}

// Cleanup removes the temporary checkout
func (g *GitFS) Cleanup() error {
	if g.checkout == "" {
		return nil
	}
	return os.RemoveAll(g.checkout)
}

func (g *GitFS) abs(name string) string {
	return g.local.Join(g.checkout, name)
}

func (g *GitFS) ReadFile(name string) ([]byte, error) {
	return g.local.ReadFile(g.abs(name))
}

func (g *GitFS) Stat(name string) (FileInfo, error) {
	return g.local.Stat(g.abs(name))
}

func (g *GitFS) ReadDir(name string) iter.Seq2[DirEntry, error] {
	return g.local.ReadDir(g.abs(name))
}

func (g *GitFS) Walk(root string, fn WalkFunc) error {
	prefix := g.checkout + string(os.PathSeparator)

	return g.local.Walk(g.abs(root), func(path string, info FileInfo, err error) error {
		// Report repo-relative paths to the caller
		rel := strings.TrimPrefix(path, prefix)
		if rel == g.checkout || rel == "" {
			rel = "."
		}
		return fn(rel, info, err)
	})
}

func (g *GitFS) Join(elem ...string) string {
	return g.local.Join(elem...)
}

func (g *GitFS) Base(path string) string {
	return g.local.Base(path)
}

func (g *GitFS) Dir(path string) string {
	return g.local.Dir(path)
}

func (g *GitFS) Rel(basepath, targpath string) (string, error) {
	return g.local.Rel(basepath, targpath)
}
