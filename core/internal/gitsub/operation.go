package gitsub

import (
	"context"
	"errors"
	"fmt"

	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/discover"
	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/lock"
	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/model"
	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/visibility"
	gitUtil "github.com/kuchuk-borom-debbarma/GitSub/core/internal/util/git"
	"github.com/rs/zerolog/log"
)

// operation describes what a guarded parent command does, in order.
type operation struct {
	name string
	// checkConfig verifies hidden metadata is gitignored.
	checkConfig bool
	// validate runs the consistency engine over all discovered children.
	validate bool
	// hide hides every child's metadata while the git verb runs.
	hide bool
	// verb is the git command delegated to; empty for none.
	verb string
	// lock upserts validated children into the manifest and saves it.
	lock bool
	// stageManifest stages the manifest after saving it.
	stageManifest bool
}

var (
	opAdd = operation{
		name:          "add",
		checkConfig:   true,
		validate:      true,
		hide:          true,
		verb:          "add",
		lock:          true,
		stageManifest: true,
	}
	opCommit = operation{
		name:        "commit",
		checkConfig: true,
		validate:    true,
		hide:        true,
		verb:        "commit",
	}
	// push reads no working tree, so children stay visible.
	opPush = operation{
		name:     "push",
		validate: true,
		verb:     "push",
	}
	opCheckChildren = operation{
		name:     "check-children",
		validate: true,
	}
)

// Add validates every child, then stages gitArgs in the parent with the
// children hidden and records the validated children in the manifest.
func (s *Service) Add(ctx context.Context, root string, gitArgs []string) error {
	return s.run(ctx, root, opAdd, gitArgs)
}

// Commit validates every child, then commits the parent with the
// children hidden.
func (s *Service) Commit(ctx context.Context, root string, gitArgs []string) error {
	return s.run(ctx, root, opCommit, gitArgs)
}

// Push validates every child, then pushes the parent.
func (s *Service) Push(ctx context.Context, root string, gitArgs []string) error {
	return s.run(ctx, root, opPush, gitArgs)
}

// CheckChildren runs the validation alone.
func (s *Service) CheckChildren(ctx context.Context, root string) error {
	return s.run(ctx, root, opCheckChildren, nil)
}

func (s *Service) run(ctx context.Context, root string, op operation, gitArgs []string) error {
	log.Debug().Str("op", op.name).Str("root", root).Strs("args", gitArgs).Msg("running gitsub operation")

	// 1. Environment
	if err := requireParent(root); err != nil {
		return err
	}
	if op.checkConfig {
		if err := CheckGitConfig(ctx, root); err != nil {
			return err
		}
	}

	// 2. Load manifest and discover children
	manifest, err := lock.Load(root)
	if err != nil {
		return err
	}
	locked, err := manifest.Children(s.opts.CacheDir)
	if err != nil {
		return err
	}
	discovered, err := discover.All(ctx, root, s.builder(false))
	if err != nil {
		return err
	}

	// 3. Validate; nothing is touched on failure
	var validated []model.Child
	if op.validate {
		log.Info().Int("children", len(discovered)).Msg("Checking child repositories...")
		validated, err = s.engine().Validate(ctx, root, locked, discovered)
		if err != nil {
			return err
		}
		log.Info().Msg("All child repositories are consistent")
	}

	// 4. Delegate to git
	if op.verb != "" {
		delegate := func() error {
			log.Info().Str("command", op.verb).Msg("Gitsub: Run git command.")
			return gitUtil.Passthrough(ctx, s.workDir(root), append([]string{op.verb}, gitArgs...)...)
		}
		if op.hide {
			err = whileHidden(discovered, delegate)
		} else {
			err = delegate()
		}
		if err != nil {
			return fmt.Errorf("git %s failed: %w", op.verb, err)
		}
	}

	// 5. Record
	if !op.lock {
		return nil
	}
	for _, c := range validated {
		manifest.Upsert(c)
		log.Info().Str("child", c.RelPath).Str("commit", c.Commit).Msg("Locked child repo")
	}
	if err := manifest.Save(); err != nil {
		return err
	}
	if op.stageManifest {
		if err := gitUtil.StagePath(ctx, root, model.ManifestFileName); err != nil {
			return fmt.Errorf("failed to stage %s: %w", model.ManifestFileName, err)
		}
	}
	return nil
}

func (s *Service) workDir(root string) string {
	if s.opts.WorkDir != "" {
		return s.opts.WorkDir
	}
	return root
}

// whileHidden hides every child, runs fn and reveals every child again,
// whatever fn returned.
func whileHidden(children []model.Child, fn func() error) (err error) {
	defer func() {
		var errs []error
		for _, c := range children {
			if _, rerr := visibility.Reveal(c.AbsPath); rerr != nil {
				errs = append(errs, fmt.Errorf("failed to reveal %s: %w", c.RelPath, rerr))
			}
		}
		err = errors.Join(append([]error{err}, errs...)...)
	}()

	for _, c := range children {
		if _, err := visibility.Hide(c.AbsPath); err != nil {
			return fmt.Errorf("failed to hide %s: %w", c.RelPath, err)
		}
	}
	log.Debug().Int("children", len(children)).Msg("hid child metadata")
	return fn()
}
