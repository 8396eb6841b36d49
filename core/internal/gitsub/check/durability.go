package check

import (
	"context"
	"fmt"
	"strings"

	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/model"
	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/util/file"
	"github.com/rs/zerolog/log"
)

// durable checks c.Commit against every remote of c in order and returns
// "" as soon as one of them has it. Otherwise it returns the reason the
// child fails. A child without remotes fails.
func (e *Engine) durable(ctx context.Context, c model.Child) string {
	if len(c.Remotes) == 0 {
		return "no remote (fetch) location configured"
	}

	var problems []string
	for _, r := range c.Remotes {
		found, err := e.inMirror(ctx, c, r)
		if err != nil {
			log.Debug().Err(err).Str("child", c.RelPath).Str("remote", r.Name).Msg("durability check errored")
			problems = append(problems, fmt.Sprintf("%s: %v", r.Name, err))
			continue
		}
		if found {
			log.Debug().Str("child", c.RelPath).Str("remote", r.Name).Str("commit", c.Commit).Msg("commit is durable")
			return ""
		}
		problems = append(problems, fmt.Sprintf("%s: commit %s not found", r.Name, c.Commit))
	}
	return strings.Join(problems, "; ")
}

// inMirror refreshes the mirror cache of r and looks for c.Commit in it.
func (e *Engine) inMirror(ctx context.Context, c model.Child, r model.Remote) (bool, error) {
	unlock, err := e.caches.acquire(ctx, r.CacheRoot)
	if err != nil {
		return false, err
	}
	defer unlock()

	if !file.IsDir(r.CacheRoot) {
		log.Debug().Str("url", r.URL).Str("cache", r.CacheRoot).Msg("cloning remote into mirror cache")
		if err := e.VCS.Clone(ctx, r.URL, r.CacheRoot); err != nil {
			return false, err
		}
	} else {
		// The cache may have been created from another spelling of the URL;
		// SSH remotes only authenticate with the child's own URL.
		if err := e.VCS.SetRemoteURL(ctx, r.CacheRoot, "origin", r.URL); err != nil {
			return false, err
		}
		if err := e.VCS.Fetch(ctx, r.CacheRoot, "origin", c.Branch); err != nil {
			return false, err
		}
	}

	kind, err := e.VCS.ObjectKind(ctx, r.CacheRoot, c.Commit)
	if err != nil {
		return false, err
	}
	return kind == "commit", nil
}
