package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kuchuk-borom-debbarma/GitSub/cli/internal/commands"
	"github.com/kuchuk-borom-debbarma/GitSub/cli/internal/ui"
	"github.com/kuchuk-borom-debbarma/GitSub/core"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := core.InitTelemetry(ctx, Version)
	if err != nil {
		log.Warn().Err(err).Msg("telemetry disabled")
	}
	defer shutdown(context.Background())

	// Anything that is not a gitsub command is git's business.
	if len(args) > 0 && forwardToGit(args[0]) {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprint(os.Stderr, ui.RenderError(err))
			return 1
		}
		return exitCode(core.Passthrough(ctx, cwd, args))
	}

	root := commands.NewRootCmd(Version)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		if code := core.ExitCode(err); code > 0 {
			return code
		}
		fmt.Fprint(os.Stderr, ui.RenderError(err))
		return 1
	}
	return 0
}

func forwardToGit(name string) bool {
	if strings.HasPrefix(name, "-") || commands.IsRegistered(name) {
		return false
	}
	switch name {
	case "help", "completion", "__complete", "__completeNoDesc":
		return false
	}
	return true
}

// exitCode mirrors git's exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if code := core.ExitCode(err); code > 0 {
		return code
	}
	fmt.Fprint(os.Stderr, ui.RenderError(err))
	return 1
}
