package commands

import (
	"context"
	"fmt"

	"github.com/kuchuk-borom-debbarma/GitSub/cli/internal/ui"
	gitUtil "github.com/kuchuk-borom-debbarma/GitSub/cli/internal/util/git"
	"github.com/kuchuk-borom-debbarma/GitSub/core"
)

type initParentCommand struct{}

func (initParentCommand) Command() string {
	return "init-parent"
}

func (initParentCommand) Description() string {
	return `Start tracking the child repositories of this repository

Usage:
  gitsub init-parent

Note:
  Creates .gitsub at the repository root and locks every child repository
  found below it at its current commit. Every child needs a remote.`
}

func (initParentCommand) ValidateArgs(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("init-parent takes no arguments, got %q", args)
	}
	return nil
}

func (initParentCommand) Execute(ctx context.Context, env *Env, args []string) error {
	root, err := gitUtil.FindRepoRoot(ctx, env.Cwd)
	if err != nil {
		return err
	}
	locked, err := core.InitParent(ctx, env.Config.Options(), root)
	if err != nil {
		return err
	}
	ui.List(env.Out, "Locked child repositories:", locked)
	ui.Success(env.Out, "Initialized gitsub parent at "+root)
	return nil
}

func init() {
	registerCommand(initParentCommand{})
}
