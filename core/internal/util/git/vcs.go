package git

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// RemoteLine is one fetch remote as reported by `git remote -v`.
type RemoteLine struct {
	Name string
	URL  string
}

// VCS is the subset of git that the child-repository engine consumes.
// Every method maps to exactly one git invocation.
type VCS interface {
	Status(ctx context.Context, dir string, scope ...string) (string, error)
	CurrentBranch(ctx context.Context, dir string) (string, error)
	CurrentCommit(ctx context.Context, dir string) (string, error)
	ListRemotes(ctx context.Context, dir string) ([]RemoteLine, error)
	ObjectKind(ctx context.Context, dir, id string) (string, error)
	Clone(ctx context.Context, url, dest string) error
	Fetch(ctx context.Context, dir, remote, branch string) error
	SetRemoteURL(ctx context.Context, dir, name, url string) error
}

// CLI implements VCS by shelling out to the git binary.
type CLI struct{}

var _ VCS = CLI{}

// Status returns `git status -s` output for dir, optionally restricted to
// the given pathspecs.
func (CLI) Status(ctx context.Context, dir string, scope ...string) (string, error) {
	args := []string{"status", "-s"}
	if len(scope) > 0 {
		args = append(args, "--")
		args = append(args, scope...)
	}
	return runGit(ctx, dir, args...)
}

// CurrentBranch returns the checked out branch name. A detached HEAD
// yields an empty string and no error.
func (CLI) CurrentBranch(ctx context.Context, dir string) (string, error) {
	return runGit(ctx, dir, "branch", "--show-current")
}

// CurrentCommit returns the object id HEAD points to. An unborn or broken
// HEAD yields an empty string; the caller decides whether that is fatal.
func (CLI) CurrentCommit(ctx context.Context, dir string) (string, error) {
	out, err := runGit(ctx, dir, "rev-parse", "--verify", "--quiet", "HEAD")
	if err != nil && ExitCode(err) == 1 {
		return "", nil
	}
	return out, err
}

// ListRemotes returns the fetch remotes in the order git reports them.
func (CLI) ListRemotes(ctx context.Context, dir string) ([]RemoteLine, error) {
	out, err := runGit(ctx, dir, "remote", "-v")
	if err != nil {
		return nil, err
	}
	return ParseRemoteVerbose(out), nil
}

// ParseRemoteVerbose parses `git remote -v` output, keeping (fetch) lines.
func ParseRemoteVerbose(out string) []RemoteLine {
	var remotes []RemoteLine
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if !strings.HasSuffix(line, " (fetch)") {
			continue
		}
		line = strings.TrimSuffix(line, " (fetch)")
		name, url, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		remotes = append(remotes, RemoteLine{Name: strings.TrimSpace(name), URL: strings.TrimSpace(url)})
	}
	return remotes
}

// ObjectKind returns the type of object id in dir ("commit", "tree", ...).
// An unknown object yields an empty string and no error.
func (CLI) ObjectKind(ctx context.Context, dir, id string) (string, error) {
	out, err := runGit(ctx, dir, "cat-file", "-t", id)
	if err != nil {
		if ExitCode(err) > 0 {
			return "", nil
		}
		return "", err
	}
	return out, nil
}

// Clone clones url into dest without checking out a working tree.
func (CLI) Clone(ctx context.Context, url, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	_, err := runGit(ctx, filepath.Dir(dest), "clone", "--quiet", "--no-checkout", url, dest)
	return err
}

// Fetch fetches branch from remote into dir. An empty branch fetches the
// remote's default refspec.
func (CLI) Fetch(ctx context.Context, dir, remote, branch string) error {
	args := []string{"fetch", "--quiet", remote}
	if branch != "" {
		args = append(args, branch)
	}
	_, err := runGit(ctx, dir, args...)
	return err
}

// SetRemoteURL re-points an existing remote.
func (CLI) SetRemoteURL(ctx context.Context, dir, name, url string) error {
	_, err := runGit(ctx, dir, "remote", "set-url", name, url)
	return err
}
