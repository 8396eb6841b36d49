package gitsub

import (
	"context"

	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/doctor"
	"github.com/rs/zerolog/log"
)

// Doctor reports the state of the parent at root without changing
// anything except revealing hidden children, which discovery always does.
func (s *Service) Doctor(ctx context.Context, root string) (*doctor.Doctor, error) {
	if err := requireParent(root); err != nil {
		return nil, err
	}
	d, err := doctor.GetDoctor(ctx, root, s.vcs, s.opts.CacheDir)
	if err != nil {
		return nil, err
	}
	if err := CheckGitConfig(ctx, root); err != nil {
		log.Debug().Err(err).Msg("git configuration check failed")
	} else {
		d.Basic.HiddenIgnored = true
	}
	return d, nil
}
