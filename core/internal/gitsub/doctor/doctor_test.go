package doctor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/model"
	"gopkg.in/yaml.v3"
)

func TestChildReports(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"a", "b"} {
		if err := os.MkdirAll(filepath.Join(root, rel, ".git"), 0755); err != nil {
			t.Fatal(err)
		}
	}

	locked := []model.Child{
		{RelPath: "a", AbsPath: filepath.Join(root, "a"), Branch: "main", Commit: "111"},
		{RelPath: "gone", AbsPath: filepath.Join(root, "gone"), Commit: "999"},
	}
	discovered := []model.Child{
		{RelPath: "a", AbsPath: filepath.Join(root, "a"), Branch: "main", Commit: "222",
			Remotes: []model.Remote{{Name: "origin", URL: "https://host/u/a"}}},
		{RelPath: "b", AbsPath: filepath.Join(root, "b"), Commit: "333"},
	}

	reports, missing, unlocked, err := getChildReports(locked, discovered)
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	if !reports[0].Drift || reports[0].LockedCommit != "111" {
		t.Errorf("expected drift on a, got %+v", reports[0])
	}
	if reports[0].State != "visible" {
		t.Errorf("expected a to be visible, got %s", reports[0].State)
	}
	if reports[1].Drift {
		t.Errorf("unlocked child b must not report drift")
	}
	if len(missing) != 1 || missing[0] != "gone" {
		t.Errorf("expected missing [gone], got %v", missing)
	}
	if len(unlocked) != 1 || unlocked[0] != "b" {
		t.Errorf("expected unlocked [b], got %v", unlocked)
	}

	d := &Doctor{
		Basic:         &BasicDoctor{RootPath: root, CurrentBranch: "main", IsClean: true, HiddenIgnored: true},
		Children:      reports,
		MissingOnDisk: missing,
		Unlocked:      unlocked,
	}
	if d.Healthy() {
		t.Error("report with drift must not be healthy")
	}

	text := d.String()
	for _, want := range []string{"a [visible]", "(drift)", "b [visible]", "(detached)", "gone"} {
		if !strings.Contains(text, want) {
			t.Errorf("text report misses %q:\n%s", want, text)
		}
	}

	out, err := d.YAML()
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := yaml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("report is not valid yaml: %v\n%s", err, out)
	}
	if _, ok := decoded["missing_on_disk"]; !ok {
		t.Errorf("yaml report misses missing_on_disk:\n%s", out)
	}
}

func TestHealthyReport(t *testing.T) {
	d := &Doctor{
		Basic: &BasicDoctor{HiddenIgnored: true},
		Children: []ChildReport{
			{Path: "a", Commit: "1", LockedCommit: "1", Remotes: []string{"origin x"}},
		},
	}
	if !d.Healthy() {
		t.Error("expected healthy report")
	}
	d.Basic.HiddenIgnored = false
	if d.Healthy() {
		t.Error("unignored hidden dir must not be healthy")
	}
}
