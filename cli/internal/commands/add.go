package commands

import "github.com/kuchuk-borom-debbarma/GitSub/core"

func init() {
	registerCommand(gitVerbCommand{
		verb: "add",
		description: `Check every child repository, then run git add

Usage:
  gitsub add <git add args>...

Note:
  Child repositories are hidden while git runs so they are never staged
  as submodules. Their commits are then locked in .gitsub, which is staged.`,
		guard: core.Add,
	})
}
