package discover

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/diag"
	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/model"
	gitUtil "github.com/kuchuk-borom-debbarma/GitSub/core/internal/util/git"
	"github.com/rs/zerolog/log"
)

// Builder reads child records from live working trees.
type Builder struct {
	VCS       gitUtil.VCS
	CacheBase string

	// Lenient turns a missing remote or an unreadable commit into a
	// warning. Commands that lock or validate children keep it false.
	Lenient bool
}

// Build reads branch, commit and remotes of the child at
// parentRoot/relPath. Nothing is cached; every call hits the working tree.
func (b Builder) Build(ctx context.Context, parentRoot, relPath string) (model.Child, error) {
	relPath = filepath.ToSlash(filepath.Clean(relPath))
	abs := filepath.Join(parentRoot, filepath.FromSlash(relPath))

	remotes, err := ResolveRemotes(ctx, b.VCS, abs, b.CacheBase)
	if err != nil {
		if !b.Lenient || !errors.Is(err, diag.ErrNoRemoteConfigured) {
			return model.Child{}, err
		}
		log.Warn().Str("child", relPath).Msg("child repo has no remote (fetch) location")
	}

	branch, err := b.VCS.CurrentBranch(ctx, abs)
	if err != nil {
		// Detached or otherwise unnamed HEAD; the commit is what matters.
		log.Debug().Err(err).Str("child", relPath).Msg("cannot read current branch")
		branch = ""
	}

	commit, err := b.VCS.CurrentCommit(ctx, abs)
	if err != nil {
		return model.Child{}, fmt.Errorf("failed to read commit of %s: %w", relPath, err)
	}
	if commit == "" {
		if !b.Lenient {
			return model.Child{}, diag.Wrap(diag.ErrDetachedOrCorruptChild, abs, nil)
		}
		log.Warn().Str("child", relPath).Msg("cannot read commit revision")
	}

	return model.Child{
		RelPath: relPath,
		AbsPath: abs,
		Branch:  branch,
		Commit:  commit,
		Remotes: remotes,
	}, nil
}
