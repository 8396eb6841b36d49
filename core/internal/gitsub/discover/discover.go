// Package discover finds child repositories below a parent working tree
// and turns them into model.Child records.
package discover

import (
	"context"
	"io/fs"
	"iter"
	"path/filepath"

	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/model"
	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/visibility"
	"github.com/rs/zerolog/log"
)

// Search walks parentRoot and yields the relative path of every directory
// that holds a child metadata directory, visible or hidden.
//
// Hidden children are revealed before they are yielded, so every yielded
// child can be read by git. The parent's own ".git" is skipped, and only
// directories count: a ".git" file (worktree, submodule) is ignored.
// The sequence is a plain filesystem scan and can be ranged over again.
func Search(parentRoot string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		err := filepath.WalkDir(parentRoot, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if !yield("", err) {
					return filepath.SkipAll
				}
				return nil
			}

			name := d.Name()
			if name != model.VisibleDirName && name != model.HiddenDirName {
				return nil
			}
			if !d.IsDir() {
				return nil
			}

			childRoot := filepath.Dir(path)
			if childRoot == parentRoot {
				return filepath.SkipDir
			}

			if name == model.HiddenDirName {
				if _, err := visibility.Reveal(childRoot); err != nil {
					yield("", err)
					return filepath.SkipAll
				}
				log.Debug().Str("path", childRoot).Msg("revealed hidden child repo")
			}

			rel, err := filepath.Rel(parentRoot, childRoot)
			if err != nil {
				yield("", err)
				return filepath.SkipAll
			}
			if !yield(filepath.ToSlash(rel), nil) {
				return filepath.SkipAll
			}
			return filepath.SkipDir
		})
		if err != nil {
			yield("", err)
		}
	}
}

// Children yields a freshly built record for every child Search finds.
// Iteration stops at the first error.
func Children(ctx context.Context, parentRoot string, b Builder) iter.Seq2[model.Child, error] {
	return func(yield func(model.Child, error) bool) {
		for rel, err := range Search(parentRoot) {
			if err != nil {
				yield(model.Child{}, err)
				return
			}
			child, err := b.Build(ctx, parentRoot, rel)
			if !yield(child, err) || err != nil {
				return
			}
		}
	}
}

// All collects Children into a slice.
func All(ctx context.Context, parentRoot string, b Builder) ([]model.Child, error) {
	var children []model.Child
	for child, err := range Children(ctx, parentRoot, b) {
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}
