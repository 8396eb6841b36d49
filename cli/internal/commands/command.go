package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/kuchuk-borom-debbarma/GitSub/cli/internal/config"
	"github.com/kuchuk-borom-debbarma/GitSub/cli/internal/util/arg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type Command interface {
	// return the name of the command such as init-parent
	Command() string
	// description; the first line is the short help
	Description() string
	// Validate the positional args
	ValidateArgs(args []string) error
	// Execute the command
	Execute(ctx context.Context, env *Env, args []string) error
}

// flagged commands declare their own flags.
type flagged interface {
	Flags(fs *pflag.FlagSet)
}

// forwarding commands wrap a git verb. Their arguments belong to git, so
// cobra does not parse them.
type forwarding interface {
	GitVerb() string
}

// Env is what every command runs with.
type Env struct {
	Config  *config.Config
	Cwd     string
	Out     io.Writer
	Version string
}

var commandRegistry = make(map[string]Command)

func registerCommand(command Command) {
	commandRegistry[command.Command()] = command
}

func GetCommand(name string) (Command, bool) {
	cmd, ok := commandRegistry[name]
	return cmd, ok
}

// IsRegistered reports whether name is a gitsub command rather than
// something to hand to git.
func IsRegistered(name string) bool {
	_, ok := commandRegistry[name]
	return ok
}

func ListCommands() []string {
	keys := make([]string, 0, len(commandRegistry))
	for k := range commandRegistry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Global flags. Forwarding commands accept them only before their git
// arguments.
var globalFlags = map[string]bool{
	"verbose":   false,
	"v":         false,
	"cache-dir": true,
	"workers":   true,
}

// NewRootCmd builds the gitsub command tree from the registry.
func NewRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "gitsub",
		Short: "Keep child git repositories consistent with their parent",
		Long: `gitsub keeps independent git repositories nested inside a parent
repository consistent with it. Before git add, commit or push runs in the
parent, every child must be clean and its commit must exist on a remote.

Commands gitsub does not know are passed to git unchanged.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.BoolP("verbose", "v", false, "Enable debug logging")
	pf.String("cache-dir", "", "Mirror cache directory (default $XDG_CACHE_HOME/gitsub)")
	pf.Int("workers", 0, "Parallel child checks (0 = one per CPU)")

	for _, name := range ListCommands() {
		command, _ := GetCommand(name)
		root.AddCommand(toCobra(command, version))
	}
	return root
}

func toCobra(command Command, version string) *cobra.Command {
	short, _, _ := strings.Cut(command.Description(), "\n")
	cc := &cobra.Command{
		Use:   command.Command(),
		Short: short,
		Long:  command.Description(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return CommandRunner{Version: version}.Run(cmd, command, args)
		},
	}
	if f, ok := command.(flagged); ok {
		f.Flags(cc.Flags())
	}
	if _, ok := command.(forwarding); ok {
		cc.DisableFlagParsing = true
	}
	return cc
}

type CommandRunner struct {
	Version string
}

// Run validates args, resolves configuration and executes command.
func (r CommandRunner) Run(cmd *cobra.Command, command Command, args []string) error {
	global := cmd.Root().PersistentFlags()

	// 1. Leading global flags of forwarding commands
	if _, ok := command.(forwarding); ok {
		var leading map[string]string
		leading, args = arg.SplitLeading(args, globalFlags)
		for name, value := range leading {
			if name == "v" {
				name = "verbose"
			}
			if err := global.Set(name, value); err != nil {
				return fmt.Errorf("invalid --%s: %w", name, err)
			}
		}
	}

	// 2. Arguments
	if err := command.ValidateArgs(args); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}

	// 3. Configuration and logging
	cfg, err := config.Load(config.Path(), global)
	if err != nil {
		return err
	}
	verbose, _ := global.GetBool("verbose")
	setLogLevel(cfg.LogLevel, verbose)

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current working directory: %w", err)
	}

	log.Debug().Str("command", command.Command()).Strs("args", args).Msg("executing")
	env := &Env{Config: cfg, Cwd: cwd, Out: cmd.OutOrStdout(), Version: r.Version}
	return command.Execute(cmd.Context(), env, args)
}

func setLogLevel(name string, verbose bool) {
	level, err := zerolog.ParseLevel(name)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
}
