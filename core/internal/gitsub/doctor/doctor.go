// Package doctor builds a read-only health report of a gitsub parent.
package doctor

import (
	"context"
	"fmt"
	"strings"

	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/discover"
	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/lock"
	gitUtil "github.com/kuchuk-borom-debbarma/GitSub/core/internal/util/git"
	"gopkg.in/yaml.v3"
)

type Doctor struct {
	Basic    *BasicDoctor  `yaml:"parent"`
	Children []ChildReport `yaml:"children"`
	// MissingOnDisk lists locked children that discovery did not find.
	MissingOnDisk []string `yaml:"missing_on_disk,omitempty"`
	// Unlocked lists discovered children the manifest does not know.
	Unlocked []string `yaml:"unlocked,omitempty"`
}

// GetDoctor inspects the parent at rootAbsPath. Children are discovered
// leniently: a child without remote or commit is reported, not rejected.
func GetDoctor(ctx context.Context, rootAbsPath string, vcs gitUtil.VCS, cacheBase string) (*Doctor, error) {
	basic, err := GetBasicDoctor(ctx, rootAbsPath, vcs)
	if err != nil {
		return nil, fmt.Errorf("failed to get basic doctor: %w", err)
	}

	manifest, err := lock.Load(rootAbsPath)
	if err != nil {
		return nil, err
	}
	locked, err := manifest.Children(cacheBase)
	if err != nil {
		return nil, err
	}

	b := discover.Builder{VCS: vcs, CacheBase: cacheBase, Lenient: true}
	discovered, err := discover.All(ctx, rootAbsPath, b)
	if err != nil {
		return nil, fmt.Errorf("failed to discover children: %w", err)
	}

	children, missing, unlocked, err := getChildReports(locked, discovered)
	if err != nil {
		return nil, err
	}
	return &Doctor{
		Basic:         basic,
		Children:      children,
		MissingOnDisk: missing,
		Unlocked:      unlocked,
	}, nil
}

// Healthy reports whether nothing in the report needs attention.
func (d *Doctor) Healthy() bool {
	if !d.Basic.HiddenIgnored || len(d.MissingOnDisk) > 0 || len(d.Unlocked) > 0 {
		return false
	}
	for _, c := range d.Children {
		if c.Drift || c.Commit == "" || len(c.Remotes) == 0 {
			return false
		}
	}
	return true
}

// YAML renders the report as a YAML document.
func (d *Doctor) YAML() (string, error) {
	out, err := yaml.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("failed to render doctor report: %w", err)
	}
	return string(out), nil
}

func (d *Doctor) String() string {
	var sb strings.Builder

	sb.WriteString("Gitsub Doctor\n")
	sb.WriteString("=============\n\n")

	sb.WriteString(fmt.Sprintf("Root:     %s\n", d.Basic.RootPath))
	sb.WriteString(fmt.Sprintf("Branch:   %s\n", d.Basic.CurrentBranch))
	cleanState := "Clean"
	if !d.Basic.IsClean {
		cleanState = "Dirty"
	}
	sb.WriteString(fmt.Sprintf("State:    %s\n", cleanState))
	sb.WriteString(fmt.Sprintf("Manifest: %s\n", d.Basic.ManifestPath))
	ignored := "yes"
	if !d.Basic.HiddenIgnored {
		ignored = "NO (add '.gitsub_hidden/' to .gitignore)"
	}
	sb.WriteString(fmt.Sprintf("Ignored:  %s\n\n", ignored))

	sb.WriteString("Child Repositories:\n")
	sb.WriteString("-------------------\n")
	if len(d.Children) == 0 {
		sb.WriteString("(none)\n")
	}
	for _, c := range d.Children {
		sb.WriteString(c.String())
	}

	if len(d.MissingOnDisk) > 0 {
		sb.WriteString("\nLocked but missing on disk (run 'gitsub init-child --all'):\n")
		for _, p := range d.MissingOnDisk {
			sb.WriteString("  " + p + "\n")
		}
	}
	if len(d.Unlocked) > 0 {
		sb.WriteString("\nFound on disk but not locked:\n")
		for _, p := range d.Unlocked {
			sb.WriteString("  " + p + "\n")
		}
	}
	return sb.String()
}
