package model

// Remote is one fetch location of a child repository.
type Remote struct {
	// Name is the git remote name (e.g. "origin").
	Name string
	// URL exactly as configured in the child.
	URL string
	// IsSSH is true for every URL that does not use an http(s) scheme.
	IsSSH bool
	// CacheRoot is the mirror cache directory derived from URL.
	// Two remotes with the same URL always share the same CacheRoot.
	CacheRoot string
}

// Child is a snapshot of one child repository.
//
// Records are built fresh from the live working tree on every discovery
// pass (or from the lock manifest) and are never mutated afterwards; a
// changed child produces a new record that is compared by RelPath.
type Child struct {
	// RelPath is the child root relative to the parent root, using "/"
	// separators. It is the unique key within a parent.
	RelPath string
	// AbsPath is the absolute child root.
	AbsPath string
	// Branch is empty for a detached HEAD.
	Branch string
	// Commit is the object id HEAD resolves to.
	Commit string
	// Remotes in the order the child's git config lists them.
	Remotes []Remote
}

// PrimaryRemote returns the first declared remote.
func (c Child) PrimaryRemote() (Remote, bool) {
	if len(c.Remotes) == 0 {
		return Remote{}, false
	}
	return c.Remotes[0], true
}

// Paths returns the relative paths of children, in order.
func Paths(children []Child) []string {
	out := make([]string, 0, len(children))
	for _, c := range children {
		out = append(out, c.RelPath)
	}
	return out
}
