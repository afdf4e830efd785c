package filesystems

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// NewFileSystem creates a filesystem implementation for the given source URI.
// Supported forms:
//   - /path/to/local/dir (or any path without a scheme)
//   - file:///path/to/local/dir
//   - git://github.com/owner/repo[#ref] (or git://owner/repo shorthand)
func NewFileSystem(ctx context.Context, uri string) (FileSystem, error) {
	if !strings.Contains(uri, "://") {
		return NewLocalFS(), nil
	}

	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid source URI %s: %w", uri, err)
	}

	switch parsed.Scheme {
	case "file":
		return NewLocalFS(), nil

	case "git":
		return newGitFromURL(ctx, parsed)

	default:
		return nil, fmt.Errorf("unsupported scheme: %s", parsed.Scheme)
	}
}

// newGitFromURL resolves git://host/owner/repo and git://owner/repo
// shorthand, with an optional #ref fragment
func newGitFromURL(ctx context.Context, u *url.URL) (FileSystem, error) {
	var gitURL string

	switch {
	case u.Host == "" || u.Host == "github.com":
		path := strings.Trim(u.Path, "/")
		if u.Host == "" && strings.Count(path, "/") < 1 {
			return nil, fmt.Errorf("invalid git URL, expected git://owner/repo or git://host/owner/repo")
		}
		gitURL = fmt.Sprintf("https://github.com/%s", path)

	case strings.Count(u.Path, "/") == 1 && !strings.Contains(u.Host, "."):
		// git://owner/repo shorthand: host is really the owner
		gitURL = fmt.Sprintf("https://github.com/%s%s", u.Host, u.Path)

	default:
		gitURL = fmt.Sprintf("https://%s%s", u.Host, u.Path)
	}

	return NewGitFS(ctx, gitURL, u.Fragment)
}

// BasePath returns the path inside the filesystem where the source tree
// starts. Remote filesystems are rooted at the checkout, so the base is "."
func BasePath(uri string) string {
	if !strings.Contains(uri, "://") {
		return uri
	}

	parsed, err := url.Parse(uri)
	if err != nil {
		return uri
	}

	switch parsed.Scheme {
	case "file":
		return parsed.Path
	case "git":
		return "."
	default:
		return uri
	}
}
