package discover

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/diag"
	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/model"
	gitUtil "github.com/kuchuk-borom-debbarma/GitSub/core/internal/util/git"
)

// NewRemote builds a Remote and derives its mirror cache path below
// cacheBase. The cache path depends on the URL alone.
func NewRemote(name, rawURL, cacheBase string) (model.Remote, error) {
	host, user, repo, err := SplitLocation(rawURL)
	if err != nil {
		return model.Remote{}, err
	}
	return model.Remote{
		Name:      name,
		URL:       rawURL,
		IsSSH:     !strings.HasPrefix(rawURL, "http"),
		CacheRoot: filepath.Join(cacheBase, host, user, repo),
	}, nil
}

// SplitLocation extracts host, user and repository name from a remote URL.
//
// Both SSH forms ("git@host:user/repo" and "ssh://git@host/user/repo") and
// URL forms ("https://host/user/repo") are supported: ":" is normalised to
// "/" and the last three path segments are taken. User info and ports are
// dropped from the host, and a trailing ".git" from the repository, so the
// different spellings of one location share a cache entry.
func SplitLocation(rawURL string) (host, user, repo string, err error) {
	s := strings.TrimSpace(rawURL)
	if u, perr := url.Parse(s); perr == nil && u.Scheme != "" && u.Host != "" {
		s = u.Hostname() + "/" + strings.TrimPrefix(u.Path, "/")
	}
	s = strings.ReplaceAll(s, ":", "/")

	var parts []string
	for _, p := range strings.Split(s, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 3 {
		return "", "", "", fmt.Errorf("cannot derive host/user/repo from remote url %q", rawURL)
	}

	host = parts[len(parts)-3]
	if i := strings.LastIndex(host, "@"); i >= 0 {
		host = host[i+1:]
	}
	user = parts[len(parts)-2]
	repo = strings.TrimSuffix(parts[len(parts)-1], ".git")

	for _, seg := range []string{host, user, repo} {
		if seg == "" || seg == "." || seg == ".." {
			return "", "", "", fmt.Errorf("cannot derive host/user/repo from remote url %q", rawURL)
		}
	}
	return host, user, repo, nil
}

// ResolveRemotes lists the fetch remotes of the working tree at dir.
// A tree without any remote yields diag.ErrNoRemoteConfigured.
func ResolveRemotes(ctx context.Context, vcs gitUtil.VCS, dir, cacheBase string) ([]model.Remote, error) {
	lines, err := vcs.ListRemotes(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list remotes of %s: %w", dir, err)
	}

	remotes := make([]model.Remote, 0, len(lines))
	for _, l := range lines {
		r, err := NewRemote(l.Name, l.URL, cacheBase)
		if err != nil {
			return nil, fmt.Errorf("remote %s of %s: %w", l.Name, dir, err)
		}
		remotes = append(remotes, r)
	}

	if len(remotes) == 0 {
		return nil, fmt.Errorf("%w: %s", diag.ErrNoRemoteConfigured, dir)
	}
	return remotes, nil
}
