package commands

import "github.com/kuchuk-borom-debbarma/GitSub/core"

func init() {
	registerCommand(gitVerbCommand{
		verb: "commit",
		description: `Check every child repository, then run git commit

Usage:
  gitsub commit <git commit args>...`,
		guard: core.Commit,
	})
}
