package commands

import "github.com/kuchuk-borom-debbarma/GitSub/core"

func init() {
	registerCommand(gitVerbCommand{
		verb: "push",
		description: `Check every child repository, then run git push

Usage:
  gitsub push <git push args>...`,
		guard: core.Push,
	})
}
