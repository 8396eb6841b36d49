package doctor

import (
	"fmt"
	"strings"

	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/model"
	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/visibility"
)

// ChildReport compares one discovered child with its manifest entry.
type ChildReport struct {
	Path         string   `yaml:"path"`
	State        string   `yaml:"state"`
	Branch       string   `yaml:"branch"`
	Commit       string   `yaml:"commit"`
	LockedBranch string   `yaml:"locked_branch,omitempty"`
	LockedCommit string   `yaml:"locked_commit,omitempty"`
	Remotes      []string `yaml:"remotes"`
	// Drift is set when the live commit differs from the locked one.
	Drift bool `yaml:"drift"`
}

func getChildReports(locked, discovered []model.Child) ([]ChildReport, []string, []string, error) {
	byPath := make(map[string]model.Child, len(locked))
	for _, c := range locked {
		byPath[c.RelPath] = c
	}

	seen := make(map[string]bool, len(discovered))
	var reports []ChildReport
	var unlocked []string
	for _, c := range discovered {
		seen[c.RelPath] = true

		state, err := visibility.Of(c.AbsPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("child %s: %w", c.RelPath, err)
		}
		r := ChildReport{
			Path:   c.RelPath,
			State:  state.String(),
			Branch: c.Branch,
			Commit: c.Commit,
		}
		for _, remote := range c.Remotes {
			r.Remotes = append(r.Remotes, remote.Name+" "+remote.URL)
		}

		if l, ok := byPath[c.RelPath]; ok {
			r.LockedBranch = l.Branch
			r.LockedCommit = l.Commit
			r.Drift = l.Commit != c.Commit
		} else {
			unlocked = append(unlocked, c.RelPath)
		}
		reports = append(reports, r)
	}

	var missing []string
	for _, c := range locked {
		if !seen[c.RelPath] {
			missing = append(missing, c.RelPath)
		}
	}
	return reports, missing, unlocked, nil
}

func (r ChildReport) String() string {
	var sb strings.Builder
	branch := r.Branch
	if branch == "" {
		branch = "(detached)"
	}
	sb.WriteString(fmt.Sprintf("%s [%s]\n", r.Path, r.State))
	sb.WriteString(fmt.Sprintf("    live:   %s @ %s\n", branch, shortID(r.Commit)))
	if r.LockedCommit != "" {
		mark := ""
		if r.Drift {
			mark = "  (drift)"
		}
		sb.WriteString(fmt.Sprintf("    locked: %s @ %s%s\n", r.LockedBranch, shortID(r.LockedCommit), mark))
	}
	if len(r.Remotes) == 0 {
		sb.WriteString("    remotes: (none)\n")
	}
	for _, remote := range r.Remotes {
		sb.WriteString("    remote: " + remote + "\n")
	}
	return sb.String()
}

func shortID(id string) string {
	if id == "" {
		return "(unknown)"
	}
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
