package commands

import (
	"context"
	"fmt"

	"github.com/kuchuk-borom-debbarma/GitSub/cli/internal/ui"
	gitUtil "github.com/kuchuk-borom-debbarma/GitSub/cli/internal/util/git"
	"github.com/kuchuk-borom-debbarma/GitSub/core"
)

type checkChildrenCommand struct{}

func (checkChildrenCommand) Command() string {
	return "check-children"
}

func (checkChildrenCommand) Description() string {
	return "Check that every child repository is clean and pushed"
}

func (checkChildrenCommand) ValidateArgs(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("check-children takes no arguments, got %q", args)
	}
	return nil
}

func (checkChildrenCommand) Execute(ctx context.Context, env *Env, args []string) error {
	root, err := gitUtil.FindParentRoot(ctx, env.Cwd)
	if err != nil {
		return err
	}
	if err := core.CheckChildren(ctx, env.Config.Options(), root); err != nil {
		return err
	}
	ui.Success(env.Out, "All child repositories are consistent")
	return nil
}

func init() {
	registerCommand(checkChildrenCommand{})
}
