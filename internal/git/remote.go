package git

import (
	"context"
	"strings"
)

// RemoteURL returns the fetch URL of remote.
func (g *Gateway) RemoteURL(ctx context.Context, remote string) (string, error) {
	return g.output(ctx, "remote", "get-url", remote)
}

// ProjectFromRemoteURL extracts "owner/repo" from an SSH or HTTPS remote URL.
func ProjectFromRemoteURL(url string) (string, bool) {
	url = strings.TrimSpace(url)
	url = strings.TrimSuffix(url, "/")
	url = strings.TrimSuffix(url, ".git")

	// git@host:owner/repo → host/owner/repo
	if strings.HasPrefix(url, "git@") {
		url = strings.TrimPrefix(url, "git@")
		url = strings.Replace(url, ":", "/", 1)
	}
	for _, scheme := range []string{"https://", "http://", "ssh://", "git://"} {
		url = strings.TrimPrefix(url, scheme)
	}
	// ssh://git@host/owner/repo
	if _, rest, ok := strings.Cut(url, "@"); ok {
		url = rest
	}

	parts := strings.Split(url, "/")
	if len(parts) < 3 {
		return "", false
	}
	owner, repo := parts[len(parts)-2], parts[len(parts)-1]
	if owner == "" || repo == "" {
		return "", false
	}
	return owner + "/" + repo, true
}
