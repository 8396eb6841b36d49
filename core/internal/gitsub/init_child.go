package gitsub

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/lock"
	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/model"
	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/visibility"
	fileUtil "github.com/kuchuk-borom-debbarma/GitSub/core/internal/util/file"
	gitUtil "github.com/kuchuk-borom-debbarma/GitSub/core/internal/util/git"
	"github.com/rs/zerolog/log"
)

// InitChildren restores locked children whose repository is missing on
// disk, typically right after the parent was cloned. With all set every
// locked child is considered, otherwise only the given relative paths.
//
// For each missing child:
//
//  1. Clone its remotes in order into a temporary directory until one
//     clone succeeds.
//  2. Check out the locked commit, on the locked branch if one was
//     recorded.
//  3. Move everything the child directory does not have yet into it,
//     the metadata directory included. Files tracked by the parent are
//     left as they are.
//
// Children that already have metadata are skipped. It returns the
// children that were restored.
func (s *Service) InitChildren(ctx context.Context, root string, paths []string, all bool) ([]string, error) {
	if err := requireParent(root); err != nil {
		return nil, err
	}
	manifest, err := lock.Load(root)
	if err != nil {
		return nil, err
	}
	locked, err := manifest.Children(s.opts.CacheDir)
	if err != nil {
		return nil, err
	}

	selected := locked
	if !all {
		if len(paths) == 0 {
			return nil, errors.New("no child selected: pass a child path or --all")
		}
		selected = nil
		for _, p := range paths {
			rel := filepath.ToSlash(filepath.Clean(p))
			i := slices.IndexFunc(locked, func(c model.Child) bool { return c.RelPath == rel })
			if i < 0 {
				return nil, fmt.Errorf("child %q is not locked in %s", p, model.ManifestFileName)
			}
			selected = append(selected, locked[i])
		}
	}

	if !s.opts.Interactive {
		ctx = gitUtil.NoPrompt(ctx)
	}

	var restored []string
	for _, c := range selected {
		state, err := visibility.Of(c.AbsPath)
		if err != nil {
			return restored, err
		}
		if state != visibility.Absent {
			log.Debug().Str("child", c.RelPath).Stringer("state", state).Msg("child already initialised")
			continue
		}
		if err := s.initChild(ctx, c); err != nil {
			return restored, err
		}
		restored = append(restored, c.RelPath)
	}
	return restored, nil
}

func (s *Service) initChild(ctx context.Context, c model.Child) error {
	log.Info().Str("child", c.RelPath).Msg("Initialising child repo")

	if err := fileUtil.CreateDir(c.AbsPath); err != nil {
		return fmt.Errorf("failed to create %s: %w", c.RelPath, err)
	}

	var errs []error
	for _, r := range c.Remotes {
		err := s.restoreFrom(ctx, c, r)
		if err == nil {
			log.Info().Str("child", c.RelPath).Str("remote", r.URL).Msg("Child repo restored")
			return nil
		}
		log.Warn().Err(err).Str("child", c.RelPath).Str("remote", r.URL).Msg("Cloning failed")
		errs = append(errs, fmt.Errorf("%s: %w", r.URL, err))
	}
	if len(errs) == 0 {
		return fmt.Errorf("cannot clone %s: no remote recorded", c.RelPath)
	}
	return fmt.Errorf("cannot clone %s: %w", c.RelPath, errors.Join(errs...))
}

func (s *Service) restoreFrom(ctx context.Context, c model.Child, r model.Remote) error {
	// The clone is moved into place by rename, so it must live on the
	// child's filesystem; $TMPDIR is often a separate tmpfs.
	tmp, err := os.MkdirTemp(filepath.Dir(c.AbsPath), ".gitsub-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	clone := filepath.Join(tmp, "clone")
	if err := s.vcs.Clone(ctx, r.URL, clone); err != nil {
		return err
	}

	if c.Branch != "" {
		err = gitUtil.ForceBranch(ctx, clone, c.Branch, c.Commit)
	} else {
		err = gitUtil.Checkout(ctx, clone, c.Commit)
	}
	if err != nil {
		return fmt.Errorf("failed to check out locked commit %s: %w", c.Commit, err)
	}

	skipped, err := fileUtil.MoveMissing(clone, c.AbsPath)
	if err != nil {
		return err
	}
	for _, p := range skipped {
		log.Debug().Str("child", c.RelPath).Str("path", p).Msg("kept existing file")
	}
	return nil
}
