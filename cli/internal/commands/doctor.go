package commands

import (
	"context"
	"fmt"

	"github.com/kuchuk-borom-debbarma/GitSub/cli/internal/ui"
	gitUtil "github.com/kuchuk-borom-debbarma/GitSub/cli/internal/util/git"
	"github.com/kuchuk-borom-debbarma/GitSub/core"
	"github.com/spf13/pflag"
)

const (
	formatText = "text"
	formatYAML = "yaml"
)

type doctorCommand struct {
	format string
}

func (*doctorCommand) Command() string {
	return "doctor"
}

func (*doctorCommand) Description() string {
	return `Report the health of the parent and its child repositories

Usage:
  gitsub doctor [--format text|yaml]`
}

func (c *doctorCommand) Flags(fs *pflag.FlagSet) {
	fs.StringVar(&c.format, "format", formatText, "Output format: text or yaml")
}

func (c *doctorCommand) ValidateArgs(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("doctor takes no arguments, got %q", args)
	}
	if c.format != formatText && c.format != formatYAML {
		return fmt.Errorf("unknown format %q: want %s or %s", c.format, formatText, formatYAML)
	}
	return nil
}

func (c *doctorCommand) Execute(ctx context.Context, env *Env, args []string) error {
	root, err := gitUtil.FindParentRoot(ctx, env.Cwd)
	if err != nil {
		return err
	}
	report, err := core.Doctor(ctx, env.Config.Options(), root)
	if err != nil {
		return err
	}

	if c.format == formatYAML {
		out, err := report.YAML()
		if err != nil {
			return err
		}
		fmt.Fprint(env.Out, out)
		return nil
	}

	fmt.Fprint(env.Out, report)
	fmt.Fprintln(env.Out)
	if report.Healthy() {
		ui.Success(env.Out, "Everything looks good")
	} else {
		fmt.Fprintln(env.Out, ui.WarnStyle.Render("Some child repositories need attention"))
	}
	return nil
}

func init() {
	registerCommand(&doctorCommand{})
}
