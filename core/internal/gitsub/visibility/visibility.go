// Package visibility hides and reveals a child's metadata directory.
//
// A child is Visible while its metadata directory is named ".git" and
// Hidden while it is named ".gitsub_hidden". The state is never stored:
// it is read from disk every time, and each transition is a single
// os.Rename so an interrupted process leaves exactly one of the two names.
package visibility

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/diag"
	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/model"
	fileUtil "github.com/kuchuk-borom-debbarma/GitSub/core/internal/util/file"
)

// State is the visibility of one child's metadata directory.
type State int

const (
	// Absent means neither metadata directory exists.
	Absent State = iota
	Visible
	Hidden
)

func (s State) String() string {
	switch s {
	case Visible:
		return "visible"
	case Hidden:
		return "hidden"
	default:
		return "absent"
	}
}

// Of derives the state of the child rooted at childRoot.
func Of(childRoot string) (State, error) {
	visible := fileUtil.IsDir(filepath.Join(childRoot, model.VisibleDirName))
	hidden := fileUtil.IsDir(filepath.Join(childRoot, model.HiddenDirName))
	switch {
	case visible && hidden:
		return Absent, fmt.Errorf("%w: %s", diag.ErrVisibilityConflict, childRoot)
	case visible:
		return Visible, nil
	case hidden:
		return Hidden, nil
	}
	return Absent, nil
}

// Reveal renames the hidden metadata directory back to ".git".
// It reports whether a rename happened; a child that is already visible
// (or has no metadata at all) is left untouched.
func Reveal(childRoot string) (bool, error) {
	return rename(childRoot, model.HiddenDirName, model.VisibleDirName)
}

// Hide renames ".git" to the hidden name so the parent sees plain files.
func Hide(childRoot string) (bool, error) {
	return rename(childRoot, model.VisibleDirName, model.HiddenDirName)
}

func rename(childRoot, from, to string) (bool, error) {
	src := filepath.Join(childRoot, from)
	dst := filepath.Join(childRoot, to)

	if !fileUtil.IsDir(src) {
		return false, nil
	}
	if fileUtil.Exists(dst) {
		return false, fmt.Errorf("%w: %s", diag.ErrVisibilityConflict, childRoot)
	}
	if err := os.Rename(src, dst); err != nil {
		return false, fmt.Errorf("failed to rename %s to %s: %w", src, to, err)
	}
	return true, nil
}
