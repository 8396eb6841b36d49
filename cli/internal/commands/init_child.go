package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kuchuk-borom-debbarma/GitSub/cli/internal/ui"
	gitUtil "github.com/kuchuk-borom-debbarma/GitSub/cli/internal/util/git"
	"github.com/kuchuk-borom-debbarma/GitSub/core"
	"github.com/spf13/pflag"
)

type initChildCommand struct {
	all bool
}

func (*initChildCommand) Command() string {
	return "init-child"
}

func (*initChildCommand) Description() string {
	return `Restore locked child repositories from their remotes

Usage:
  gitsub init-child <path>...
  gitsub init-child --all

Note:
  Only children without a .git directory are restored. Each one is cloned
  from its first reachable remote and checked out at the locked commit.`
}

func (c *initChildCommand) Flags(fs *pflag.FlagSet) {
	fs.BoolVar(&c.all, "all", false, "Restore every locked child")
}

func (c *initChildCommand) ValidateArgs(args []string) error {
	switch {
	case c.all && len(args) > 0:
		return errors.New("pass either child paths or --all, not both")
	case !c.all && len(args) == 0:
		return errors.New("missing child path (or --all)")
	}
	return nil
}

func (c *initChildCommand) Execute(ctx context.Context, env *Env, args []string) error {
	root, err := gitUtil.FindParentRoot(ctx, env.Cwd)
	if err != nil {
		return err
	}

	paths := make([]string, 0, len(args))
	for _, a := range args {
		rel, err := rootRelative(root, env.Cwd, a)
		if err != nil {
			return err
		}
		paths = append(paths, rel)
	}

	restored, err := core.InitChildren(ctx, env.Config.Options(), root, paths, c.all)
	if err != nil {
		return err
	}
	ui.List(env.Out, "Restored child repositories:", restored)
	return nil
}

// rootRelative turns a path typed in cwd into a slash-separated path
// relative to root.
func rootRelative(root, cwd, path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the parent repository %s", path, root)
	}
	return filepath.ToSlash(rel), nil
}

func init() {
	registerCommand(&initChildCommand{})
}
