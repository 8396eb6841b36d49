// Package diag defines the failure taxonomy of gitsub operations.
//
// Infrastructure problems (unreadable manifest, a git invocation that
// failed) are reported one at a time by wrapping the sentinels below.
// Validation problems found across several children are batched into one
// ValidationError per phase so that the user sees every offending child
// at once.
package diag

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNoRemoteConfigured       = errors.New("no remote (fetch) location configured")
	ErrDetachedOrCorruptChild   = errors.New("cannot read commit revision")
	ErrUnpushedLocalChanges     = errors.New("child repository has changes that are not committed and pushed")
	ErrCommitNotDurableOnRemote = errors.New("current commit cannot be found on any remote")
	ErrManifestUnreadable       = errors.New("lock manifest is unreadable")
	ErrManifestDuplicateEntry   = errors.New("lock manifest has duplicate entries")
	ErrMissingChildOnDisk       = errors.New("locked child repository is missing on disk")
	ErrManifestExists           = errors.New("lock manifest already exists")
	ErrNotParent                = errors.New("not a gitsub parent repository")
	ErrHiddenDirNotIgnored      = errors.New("hidden metadata directory is not ignored by git")
	ErrVisibilityConflict       = errors.New("both visible and hidden metadata directories exist")
)

// Failure is one child that did not pass a check.
type Failure struct {
	Path   string
	Reason string
}

// ValidationError aggregates every child that failed one check.
type ValidationError struct {
	Kind     error
	Failures []Failure
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.Error())
	sb.WriteString(":")
	for _, f := range e.Failures {
		sb.WriteString("\n  ")
		sb.WriteString(f.Path)
		if f.Reason != "" {
			sb.WriteString(": ")
			sb.WriteString(f.Reason)
		}
	}
	return sb.String()
}

func (e *ValidationError) Unwrap() error { return e.Kind }

// Paths returns the offending child paths.
func (e *ValidationError) Paths() []string {
	out := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		out = append(out, f.Path)
	}
	return out
}

// NewValidationError returns nil when failures is empty, otherwise a
// ValidationError with failures sorted by path.
func NewValidationError(kind error, failures []Failure) error {
	if len(failures) == 0 {
		return nil
	}
	sorted := append([]Failure(nil), failures...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })
	return &ValidationError{Kind: kind, Failures: sorted}
}

// Hint returns the follow-up advice printed after an error of the given
// kind, or "" when there is none.
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrUnpushedLocalChanges), errors.Is(err, ErrCommitNotDurableOnRemote):
		return "You cannot update a parent repo as long as it contains child repos with\n" +
			"changes that haven't been pushed to their remote locations."
	case errors.Is(err, ErrMissingChildOnDisk):
		return "Run 'gitsub init-child --all' to restore missing child repos from their remotes,\n" +
			"or remove the entry from .gitsub."
	case errors.Is(err, ErrNoRemoteConfigured):
		return "Remote locations can be added via 'git remote add <shortname> <url>'."
	case errors.Is(err, ErrHiddenDirNotIgnored):
		return "Add this line:\n\n    .gitsub_hidden/\n\nto your global or local gitignore file."
	case errors.Is(err, ErrNotParent):
		return "Run 'gitsub init-parent' at the repository root to start tracking child repos."
	}
	return ""
}

// Wrap annotates err with the child it concerns.
func Wrap(kind error, path string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", kind, path)
	}
	return fmt.Errorf("%w: %s: %v", kind, path, cause)
}
