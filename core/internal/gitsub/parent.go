package gitsub

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/diag"
	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/lock"
	fileUtil "github.com/kuchuk-borom-debbarma/GitSub/core/internal/util/file"
	gitUtil "github.com/kuchuk-borom-debbarma/GitSub/core/internal/util/git"
)

// hiddenIgnorePatterns are the gitignore lines that keep hidden child
// metadata out of the parent.
var hiddenIgnorePatterns = []string{".gitsub_hidden/", "**/.gitsub_hidden"}

// FindParentRoot returns the top of the working tree containing dir.
func FindParentRoot(ctx context.Context, dir string) (string, error) {
	root, err := gitUtil.ShowToplevel(ctx, dir)
	if err != nil {
		return "", fmt.Errorf("cannot find git repo root (are you in a git repo?): %w", err)
	}
	return fileUtil.NormalizePath(root), nil
}

// IsParent reports whether root carries a lock manifest.
func IsParent(root string) bool {
	return root != "" && lock.Exists(root)
}

// requireParent fails unless root is a gitsub parent.
func requireParent(root string) error {
	if !IsParent(root) {
		return fmt.Errorf("%w: %s has no %s", diag.ErrNotParent, root, filepath.Base(lock.Path(root)))
	}
	return nil
}

// CheckGitConfig verifies that hidden child metadata is ignored by the
// parent, either in its .gitignore or in the global excludes file.
func CheckGitConfig(ctx context.Context, root string) error {
	candidates := []string{filepath.Join(root, ".gitignore")}

	excludes, err := gitUtil.ConfigGet(ctx, root, "core.excludesfile")
	if err != nil {
		return fmt.Errorf("failed to read core.excludesfile: %w", err)
	}
	for _, line := range strings.Split(excludes, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			candidates = append(candidates, expandHome(line))
		}
	}

	for _, path := range candidates {
		ok, err := ignoresHidden(path)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return fmt.Errorf("%w: no '.gitsub_hidden/' entry in %s or the global excludes file", diag.ErrHiddenDirNotIgnored, filepath.Join(root, ".gitignore"))
}

func ignoresHidden(path string) (bool, error) {
	if !fileUtil.IsFile(path) {
		return false, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		for _, p := range hiddenIgnorePatterns {
			if line == p {
				return true, nil
			}
		}
	}
	return false, sc.Err()
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
