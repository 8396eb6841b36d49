package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

type noPromptKey struct{}

// NoPrompt marks ctx so that git invocations made with it never ask for
// credentials on the terminal. Fetches that would need a password fail
// instead of blocking.
func NoPrompt(ctx context.Context) context.Context {
	return context.WithValue(ctx, noPromptKey{}, true)
}

func promptDisabled(ctx context.Context) bool {
	v, _ := ctx.Value(noPromptKey{}).(bool)
	return v
}

// runGit executes a git command and returns trimmed stdout + error.
// Stderr is folded into the returned error so callers can report it.
func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	if promptDisabled(ctx) {
		cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0", "GIT_ASKPASS=")
	}

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(out.String())
		}
		return strings.TrimSpace(out.String()), &CommandError{Args: args, Dir: dir, Output: msg, Err: err}
	}
	return strings.TrimSpace(out.String()), nil
}

// CommandError describes a failed git invocation.
type CommandError struct {
	Args   []string
	Dir    string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	}
	return fmt.Sprintf("git %s: %v: %s", strings.Join(e.Args, " "), e.Err, e.Output)
}

func (e *CommandError) Unwrap() error { return e.Err }

// ExitCode returns the exit code of a failed git command, or -1 when the
// command did not get to exit (e.g. git not installed).
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// Passthrough runs git with the given args attached to the current
// process' stdio. Used for the commands gitsub only wraps.
func Passthrough(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// IsInsideGitRepo returns true if path is inside a git working tree.
func IsInsideGitRepo(path string) bool {
	out, err := runGit(context.Background(), path, "rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

// ShowToplevel returns the root of the working tree containing path.
func ShowToplevel(ctx context.Context, path string) (string, error) {
	out, err := runGit(ctx, path, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	if out == "" {
		return "", fmt.Errorf("cannot find git repo root for %s", path)
	}
	return out, nil
}

// ConfigGet reads a git config value. A missing key is not an error.
func ConfigGet(ctx context.Context, dir, key string) (string, error) {
	out, err := runGit(ctx, dir, "config", "--get", key)
	if err != nil {
		if ExitCode(err) == 1 {
			return "", nil
		}
		return "", err
	}
	return out, nil
}

// StagePath stages a file or directory.
func StagePath(ctx context.Context, repoPath, relativePath string) error {
	_, err := runGit(ctx, repoPath, "add", "--", relativePath)
	return err
}

// Checkout moves HEAD of repoPath to ref.
func Checkout(ctx context.Context, repoPath, ref string) error {
	_, err := runGit(ctx, repoPath, "checkout", "--quiet", ref)
	return err
}

// ForceBranch points branch at commit and checks it out.
func ForceBranch(ctx context.Context, repoPath, branch, commit string) error {
	_, err := runGit(ctx, repoPath, "checkout", "--quiet", "-B", branch, commit)
	return err
}
