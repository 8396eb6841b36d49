package git

import (
	"context"
	"fmt"

	"github.com/kuchuk-borom-debbarma/GitSub/core"
)

// FindRepoRoot returns the absolute path to the root of the git repository
// containing dir.
func FindRepoRoot(ctx context.Context, dir string) (string, error) {
	return core.FindParentRoot(ctx, dir)
}

// FindParentRoot is FindRepoRoot restricted to gitsub parents. It fails
// with core.ErrNotParent when the repository has no lock manifest.
func FindParentRoot(ctx context.Context, dir string) (string, error) {
	root, err := FindRepoRoot(ctx, dir)
	if err != nil {
		return "", err
	}
	if !core.IsParent(root) {
		return "", fmt.Errorf("%s: %w", root, core.ErrNotParent)
	}
	return root, nil
}
