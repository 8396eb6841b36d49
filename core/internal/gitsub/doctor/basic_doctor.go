package doctor

import (
	"context"
	"fmt"

	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/lock"
	gitUtil "github.com/kuchuk-borom-debbarma/GitSub/core/internal/util/git"
)

type BasicDoctor struct {
	RootPath      string `yaml:"root"`
	CurrentBranch string `yaml:"branch"`
	IsClean       bool   `yaml:"clean"`
	ManifestPath  string `yaml:"manifest"`
	// HiddenIgnored is filled in by the caller, which owns the git
	// configuration check.
	HiddenIgnored bool `yaml:"hidden_dir_ignored"`
}

func GetBasicDoctor(ctx context.Context, rootAbsPath string, vcs gitUtil.VCS) (*BasicDoctor, error) {
	if !gitUtil.IsInsideGitRepo(rootAbsPath) {
		return nil, fmt.Errorf("not a git repository: %s", rootAbsPath)
	}

	branch, err := vcs.CurrentBranch(ctx, rootAbsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get current branch: %w", err)
	}

	status, err := vcs.Status(ctx, rootAbsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	return &BasicDoctor{
		RootPath:      rootAbsPath,
		CurrentBranch: branch,
		IsClean:       status == "",
		ManifestPath:  lock.Path(rootAbsPath),
	}, nil
}
