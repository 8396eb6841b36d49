// Package testutil provides an in-memory git stand-in for tests that need
// to observe which git calls the engine makes.
package testutil

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sync"

	gitUtil "github.com/kuchuk-borom-debbarma/GitSub/core/internal/util/git"
)

// Repo is the state FakeVCS reports for one working tree.
type Repo struct {
	Branch  string
	Commit  string
	Remotes []gitUtil.RemoteLine
	Status  string
}

// Call is one recorded invocation.
type Call struct {
	Op   string
	Dir  string
	Args []string
}

// FakeVCS implements gitUtil.VCS from maps. Clone creates the destination
// directory on disk so existence checks behave like the real thing.
type FakeVCS struct {
	mu sync.Mutex

	// Repos by absolute working tree path.
	Repos map[string]*Repo
	// ParentStatus maps a status scope (child relative path) to the output
	// the parent reports for it.
	ParentStatus map[string]string
	// RemoteCommits lists the commits each remote URL serves.
	RemoteCommits map[string][]string
	// FailClone / FailFetch make the operation for a URL fail.
	FailClone map[string]error
	FailFetch map[string]error

	origins map[string]string
	fetched map[string][]string
	calls   []Call
}

var _ gitUtil.VCS = (*FakeVCS)(nil)

func NewFakeVCS() *FakeVCS {
	return &FakeVCS{
		Repos:         map[string]*Repo{},
		ParentStatus:  map[string]string{},
		RemoteCommits: map[string][]string{},
		FailClone:     map[string]error{},
		FailFetch:     map[string]error{},
		origins:       map[string]string{},
		fetched:       map[string][]string{},
	}
}

func (f *FakeVCS) record(op, dir string, args ...string) {
	f.calls = append(f.calls, Call{Op: op, Dir: dir, Args: args})
}

// Calls returns a copy of every recorded call, optionally only those of
// the given operations.
func (f *FakeVCS) Calls(ops ...string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.calls {
		if len(ops) == 0 || slices.Contains(ops, c.Op) {
			out = append(out, c)
		}
	}
	return out
}

// NetworkCalls returns clone, fetch and set-url calls.
func (f *FakeVCS) NetworkCalls() []Call {
	return f.Calls("clone", "fetch", "set-url")
}

func (f *FakeVCS) repo(dir string) (*Repo, error) {
	r, ok := f.Repos[dir]
	if !ok {
		return nil, fmt.Errorf("not a git repository: %s", dir)
	}
	return r, nil
}

func (f *FakeVCS) Status(_ context.Context, dir string, scope ...string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("status", dir, scope...)
	if len(scope) > 0 {
		return f.ParentStatus[scope[0]], nil
	}
	r, err := f.repo(dir)
	if err != nil {
		return "", err
	}
	return r.Status, nil
}

func (f *FakeVCS) CurrentBranch(_ context.Context, dir string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("branch", dir)
	r, err := f.repo(dir)
	if err != nil {
		return "", err
	}
	return r.Branch, nil
}

func (f *FakeVCS) CurrentCommit(_ context.Context, dir string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("commit", dir)
	r, err := f.repo(dir)
	if err != nil {
		return "", err
	}
	return r.Commit, nil
}

func (f *FakeVCS) ListRemotes(_ context.Context, dir string) ([]gitUtil.RemoteLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("remotes", dir)
	r, err := f.repo(dir)
	if err != nil {
		return nil, err
	}
	return append([]gitUtil.RemoteLine(nil), r.Remotes...), nil
}

func (f *FakeVCS) ObjectKind(_ context.Context, dir, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("cat-file", dir, id)
	if slices.Contains(f.fetched[dir], id) {
		return "commit", nil
	}
	return "", nil
}

func (f *FakeVCS) Clone(_ context.Context, url, dest string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("clone", dest, url)
	if err := f.FailClone[url]; err != nil {
		return err
	}
	if err := os.MkdirAll(dest, 0755); err != nil {
		return err
	}
	f.origins[dest] = url
	f.fetched[dest] = append([]string(nil), f.RemoteCommits[url]...)
	return nil
}

func (f *FakeVCS) Fetch(_ context.Context, dir, remote, branch string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("fetch", dir, remote, branch)
	url, ok := f.origins[dir]
	if !ok {
		return fmt.Errorf("no remote %s in %s", remote, dir)
	}
	if err := f.FailFetch[url]; err != nil {
		return err
	}
	f.fetched[dir] = append([]string(nil), f.RemoteCommits[url]...)
	return nil
}

func (f *FakeVCS) SetRemoteURL(_ context.Context, dir, name, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("set-url", dir, name, url)
	f.origins[dir] = url
	return nil
}
