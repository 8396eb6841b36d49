package commands

import (
	"context"

	gitUtil "github.com/kuchuk-borom-debbarma/GitSub/cli/internal/util/git"
	"github.com/kuchuk-borom-debbarma/GitSub/core"
	"github.com/rs/zerolog/log"
)

type guardFunc func(ctx context.Context, opts core.Options, root string, gitArgs []string) error

// gitVerbCommand runs a git verb behind the consistency check. Outside a
// gitsub parent it is plain git.
type gitVerbCommand struct {
	verb        string
	description string
	guard       guardFunc
}

func (c gitVerbCommand) Command() string {
	return c.verb
}

func (c gitVerbCommand) Description() string {
	return c.description
}

func (c gitVerbCommand) GitVerb() string {
	return c.verb
}

func (gitVerbCommand) ValidateArgs(args []string) error {
	return nil
}

func (c gitVerbCommand) Execute(ctx context.Context, env *Env, args []string) error {
	root, err := gitUtil.FindParentRoot(ctx, env.Cwd)
	if err != nil {
		log.Debug().Err(err).Str("verb", c.verb).Msg("not a gitsub parent, forwarding to git")
		return core.Passthrough(ctx, env.Cwd, append([]string{c.verb}, args...))
	}
	opts := env.Config.Options()
	opts.WorkDir = env.Cwd
	return c.guard(ctx, opts, root, args)
}
