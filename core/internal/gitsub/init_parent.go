package gitsub

import (
	"context"
	"fmt"

	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/discover"
	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/lock"
	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/model"
	fileUtil "github.com/kuchuk-borom-debbarma/GitSub/core/internal/util/file"
	gitUtil "github.com/kuchuk-borom-debbarma/GitSub/core/internal/util/git"
	"github.com/rs/zerolog/log"
)

// InitParent turns the git repository at root into a gitsub parent.
//
// High-level behavior:
//
//	InitParent creates the lock manifest and records every child repository
//	found below root at its current commit. Children are not validated:
//	initialising a parent only remembers where the children are.
//
// Requirements / invariants:
//   - root must be a git working tree.
//   - root must not carry a manifest yet.
//   - every child must have at least one remote and a readable commit.
//
// Step-by-step algorithm:
//
//  1. Validate environment. Abort if the manifest exists.
//  2. Discover every child, revealing hidden ones. Any child that cannot be
//     locked aborts before anything is written.
//  3. Create the manifest, upsert every child and save it atomically.
//
// It returns the locked children.
func (s *Service) InitParent(ctx context.Context, root string) ([]model.Child, error) {
	root = fileUtil.NormalizePath(root)
	log.Debug().Str("root", root).Msg("initialising gitsub parent")

	// 1. Validate environment
	if !gitUtil.IsInsideGitRepo(root) {
		return nil, fmt.Errorf("gitsub cannot initialize: not a valid git repository: %s", root)
	}
	manifest, err := lock.Create(root)
	if err != nil {
		return nil, fmt.Errorf("this repo already contains a %s file: %w", model.ManifestFileName, err)
	}

	// 2. Discover children
	children, err := discover.All(ctx, root, s.builder(false))
	if err != nil {
		return nil, err
	}

	// 3. Lock
	for _, c := range children {
		manifest.Upsert(c)
	}
	if err := manifest.Save(); err != nil {
		return nil, err
	}
	log.Info().Str("path", lock.Path(root)).Msg("Created lock manifest")
	for _, c := range children {
		log.Info().Str("child", c.RelPath).Str("commit", c.Commit).Msg("New child repo added to manifest")
	}
	return children, nil
}
