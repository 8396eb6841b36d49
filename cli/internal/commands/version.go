package commands

import (
	"context"
	"fmt"
	"runtime"
)

type versionCommand struct{}

func (versionCommand) Command() string {
	return "version"
}

func (versionCommand) Description() string {
	return "Print the gitsub version"
}

func (versionCommand) ValidateArgs(args []string) error {
	return nil
}

func (versionCommand) Execute(ctx context.Context, env *Env, args []string) error {
	fmt.Fprintf(env.Out, "gitsub %s (%s, %s/%s)\n", env.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return nil
}

func init() {
	registerCommand(versionCommand{})
}
