package gitsub_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub"
	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/diag"
	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/lock"
	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/visibility"
	fileUtil "github.com/kuchuk-borom-debbarma/GitSub/core/internal/util/file"
)

// ------------------------------------------------------------
// HELPER: isolate git from the user's configuration
// ------------------------------------------------------------
func isolateGit(t *testing.T) {
	t.Helper()
	empty := filepath.Join(t.TempDir(), "gitconfig")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GIT_CONFIG_GLOBAL", empty)
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	t.Setenv("GIT_AUTHOR_NAME", "test")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "test")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@example.com")
}

// ------------------------------------------------------------
// HELPER: run git inside test repo
// ------------------------------------------------------------
func execGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v failed: %s", args, string(out))
	}
	return strings.TrimSpace(string(out))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := fileUtil.WriteTextFile(path, content); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

type world struct {
	parent  string
	remotes string
	svc     *gitsub.Service
}

// newWorld creates a parent repository that ignores hidden metadata and a
// directory holding bare remotes for its children.
func newWorld(t *testing.T) *world {
	t.Helper()
	isolateGit(t)

	w := &world{
		parent:  t.TempDir(),
		remotes: t.TempDir(),
		svc:     gitsub.New(gitsub.Options{CacheDir: t.TempDir(), Workers: 2}),
	}
	execGit(t, w.parent, "init", "--quiet")
	execGit(t, w.parent, "checkout", "--quiet", "-b", "main")
	writeFile(t, filepath.Join(w.parent, ".gitignore"), ".gitsub_hidden/\n")
	writeFile(t, filepath.Join(w.parent, "README.md"), "# parent")
	execGit(t, w.parent, "add", ".")
	execGit(t, w.parent, "commit", "--quiet", "-m", "initial")
	return w
}

// child creates a child repository at rel with a pushed first commit and
// returns its absolute path.
func (w *world) child(t *testing.T, rel string) string {
	t.Helper()
	remote := filepath.Join(w.remotes, "acme", filepath.Base(rel)+".git")
	if err := os.MkdirAll(remote, 0755); err != nil {
		t.Fatal(err)
	}
	execGit(t, remote, "init", "--quiet", "--bare")

	dir := filepath.Join(w.parent, filepath.FromSlash(rel))
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	execGit(t, dir, "init", "--quiet")
	execGit(t, dir, "checkout", "--quiet", "-b", "main")
	writeFile(t, filepath.Join(dir, "lib.go"), "package lib\n")
	execGit(t, dir, "add", ".")
	execGit(t, dir, "commit", "--quiet", "-m", "initial")
	execGit(t, dir, "remote", "add", "origin", remote)
	execGit(t, dir, "push", "--quiet", "origin", "main")
	return dir
}

func commitIn(t *testing.T, dir, name string, push bool) string {
	t.Helper()
	writeFile(t, filepath.Join(dir, name), name)
	execGit(t, dir, "add", ".")
	execGit(t, dir, "commit", "--quiet", "-m", "change "+name)
	if push {
		execGit(t, dir, "push", "--quiet", "origin", "main")
	}
	return execGit(t, dir, "rev-parse", "HEAD")
}

func readManifest(t *testing.T, root string) string {
	t.Helper()
	data, err := os.ReadFile(lock.Path(root))
	if err != nil {
		t.Fatalf("failed to read manifest: %v", err)
	}
	return string(data)
}

func assertVisible(t *testing.T, dir string) {
	t.Helper()
	state, err := visibility.Of(dir)
	if err != nil {
		t.Fatal(err)
	}
	if state != visibility.Visible {
		t.Errorf("expected %s to be visible, got %s", dir, state)
	}
}

// ------------------------------------------------------------
// init-parent
// ------------------------------------------------------------
func TestInitParentLocksChildren(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	a := w.child(t, "a")
	b := w.child(t, "libs/b")

	// A hidden child left behind by an interrupted run is found too.
	if _, err := visibility.Hide(b); err != nil {
		t.Fatal(err)
	}

	children, err := w.svc.InitParent(ctx, w.parent)
	if err != nil {
		t.Fatalf("InitParent failed: %v", err)
	}
	if len(children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(children))
	}
	assertVisible(t, b)

	m, err := lock.Load(w.parent)
	if err != nil {
		t.Fatal(err)
	}
	for dir, rel := range map[string]string{a: "a", b: "libs/b"} {
		e, ok := m.Lookup(rel)
		if !ok {
			t.Fatalf("child %s not locked", rel)
		}
		if want := execGit(t, dir, "rev-parse", "HEAD"); e.Commit != want {
			t.Errorf("%s: locked commit %s, want %s", rel, e.Commit, want)
		}
		if e.Branch != "main" || len(e.Remotes) != 1 || e.Remotes[0].Name != "origin" {
			t.Errorf("%s: unexpected entry %+v", rel, e)
		}
	}

	if _, err := w.svc.InitParent(ctx, w.parent); !errors.Is(err, diag.ErrManifestExists) {
		t.Fatalf("expected ErrManifestExists, got %v", err)
	}
}

func TestInitParentRequiresRemote(t *testing.T) {
	w := newWorld(t)
	dir := w.child(t, "a")
	execGit(t, dir, "remote", "remove", "origin")

	_, err := w.svc.InitParent(context.Background(), w.parent)
	if !errors.Is(err, diag.ErrNoRemoteConfigured) {
		t.Fatalf("expected ErrNoRemoteConfigured, got %v", err)
	}
	if lock.Exists(w.parent) {
		t.Error("manifest must not be written when a child cannot be locked")
	}
}

// ------------------------------------------------------------
// add
// ------------------------------------------------------------
func TestAddFailsClosedOnDirtyChild(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	a := w.child(t, "a")
	b := w.child(t, "b")
	if _, err := w.svc.InitParent(ctx, w.parent); err != nil {
		t.Fatal(err)
	}
	before := readManifest(t, w.parent)

	commitIn(t, a, "feature.go", true)
	writeFile(t, filepath.Join(b, "lib.go"), "package lib // edited\n")

	err := w.svc.Add(ctx, w.parent, []string{"."})
	if !errors.Is(err, diag.ErrUnpushedLocalChanges) {
		t.Fatalf("expected ErrUnpushedLocalChanges, got %v", err)
	}
	var verr *diag.ValidationError
	if !errors.As(err, &verr) || len(verr.Paths()) != 1 || verr.Paths()[0] != "b" {
		t.Fatalf("expected failure naming only b, got %v", err)
	}

	if after := readManifest(t, w.parent); after != before {
		t.Errorf("manifest changed after failed add:\n%s", after)
	}
	assertVisible(t, a)
	assertVisible(t, b)
	if staged := execGit(t, w.parent, "diff", "--cached", "--name-only"); staged != "" {
		t.Errorf("nothing may be staged after a failed add, got %q", staged)
	}
}

func TestAddLocksValidatedChildren(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	a := w.child(t, "a")
	if _, err := w.svc.InitParent(ctx, w.parent); err != nil {
		t.Fatal(err)
	}
	head := commitIn(t, a, "feature.go", true)

	if err := w.svc.Add(ctx, w.parent, []string{"."}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	assertVisible(t, a)
	m, err := lock.Load(w.parent)
	if err != nil {
		t.Fatal(err)
	}
	if e, _ := m.Lookup("a"); e.Commit != head {
		t.Errorf("expected a locked at %s, got %s", head, e.Commit)
	}

	staged := execGit(t, w.parent, "diff", "--cached", "--name-only")
	for _, want := range []string{".gitsub", "a/feature.go", "a/lib.go"} {
		if !strings.Contains(staged, want) {
			t.Errorf("expected %s to be staged, got:\n%s", want, staged)
		}
	}
	if strings.Contains(staged, ".git/") || strings.Contains(staged, ".gitsub_hidden") {
		t.Errorf("child metadata leaked into the parent index:\n%s", staged)
	}
}

func TestAddRejectsUnpushedCommit(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	a := w.child(t, "a")
	if _, err := w.svc.InitParent(ctx, w.parent); err != nil {
		t.Fatal(err)
	}
	before := readManifest(t, w.parent)
	commitIn(t, a, "local.go", false)

	err := w.svc.Add(ctx, w.parent, []string{"."})
	if !errors.Is(err, diag.ErrCommitNotDurableOnRemote) {
		t.Fatalf("expected ErrCommitNotDurableOnRemote, got %v", err)
	}
	if readManifest(t, w.parent) != before {
		t.Error("manifest changed after failed add")
	}
}

func TestAddRequiresIgnoredHiddenDir(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	w.child(t, "a")
	if _, err := w.svc.InitParent(ctx, w.parent); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(w.parent, ".gitignore"), "*.log\n")

	err := w.svc.Add(ctx, w.parent, []string{"."})
	if !errors.Is(err, diag.ErrHiddenDirNotIgnored) {
		t.Fatalf("expected ErrHiddenDirNotIgnored, got %v", err)
	}

	// The global excludes file counts as well.
	global := filepath.Join(t.TempDir(), "ignore")
	writeFile(t, global, "**/.gitsub_hidden\n")
	execGit(t, w.parent, "config", "core.excludesfile", global)
	if err := gitsub.CheckGitConfig(ctx, w.parent); err != nil {
		t.Fatalf("expected excludes file to satisfy the check, got %v", err)
	}
}

// ------------------------------------------------------------
// commit / check-children
// ------------------------------------------------------------
func TestCommitHidesChildren(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	a := w.child(t, "a")
	if _, err := w.svc.InitParent(ctx, w.parent); err != nil {
		t.Fatal(err)
	}
	commitIn(t, a, "feature.go", true)
	if err := w.svc.Add(ctx, w.parent, []string{"."}); err != nil {
		t.Fatal(err)
	}

	if err := w.svc.Commit(ctx, w.parent, []string{"--quiet", "-m", "lock a"}); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	assertVisible(t, a)

	files := execGit(t, w.parent, "ls-tree", "-r", "--name-only", "HEAD")
	if !strings.Contains(files, "a/feature.go") {
		t.Errorf("expected child files in parent commit, got:\n%s", files)
	}
	if strings.Contains(files, "a/.git") {
		t.Errorf("child metadata committed to parent:\n%s", files)
	}
}

func TestPushRefusesUntilChildIsPushed(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	a := w.child(t, "a")
	if _, err := w.svc.InitParent(ctx, w.parent); err != nil {
		t.Fatal(err)
	}
	origin := filepath.Join(w.remotes, "parent.git")
	execGit(t, w.remotes, "init", "--quiet", "--bare", origin)
	execGit(t, w.parent, "remote", "add", "origin", origin)

	commitIn(t, a, "local.go", false)
	err := w.svc.Push(ctx, w.parent, []string{"--quiet", "origin", "main"})
	if !errors.Is(err, diag.ErrCommitNotDurableOnRemote) {
		t.Fatalf("expected ErrCommitNotDurableOnRemote, got %v", err)
	}
	if refs := execGit(t, origin, "for-each-ref"); refs != "" {
		t.Fatalf("nothing may reach the parent remote, got %q", refs)
	}

	execGit(t, a, "push", "--quiet", "origin", "main")
	if err := w.svc.Push(ctx, w.parent, []string{"--quiet", "origin", "main"}); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if got, want := execGit(t, origin, "rev-parse", "main"), execGit(t, w.parent, "rev-parse", "HEAD"); got != want {
		t.Errorf("remote main = %s, want %s", got, want)
	}
}

func TestGitRunsInWorkDir(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	w.child(t, "a")
	if _, err := w.svc.InitParent(ctx, w.parent); err != nil {
		t.Fatal(err)
	}
	docs := filepath.Join(w.parent, "docs")
	writeFile(t, filepath.Join(docs, "guide.md"), "# guide")

	svc := gitsub.New(gitsub.Options{CacheDir: w.svc.CacheDir(), WorkDir: docs})
	if err := svc.Add(ctx, w.parent, []string{"guide.md"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	staged := execGit(t, w.parent, "diff", "--cached", "--name-only")
	if !strings.Contains(staged, "docs/guide.md") {
		t.Errorf("expected docs/guide.md to be staged, got:\n%s", staged)
	}
}

func TestRelativeCacheDirIsResolved(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	a := w.child(t, "a")
	if _, err := w.svc.InitParent(ctx, w.parent); err != nil {
		t.Fatal(err)
	}
	commitIn(t, a, "feature.go", true)

	work := t.TempDir()
	t.Chdir(work)
	svc := gitsub.New(gitsub.Options{CacheDir: "cache"})
	if want := filepath.Join(work, "cache"); svc.CacheDir() != want {
		t.Fatalf("CacheDir() = %q, want %q", svc.CacheDir(), want)
	}

	if err := svc.CheckChildren(ctx, w.parent); err != nil {
		t.Fatalf("CheckChildren failed: %v", err)
	}
	nested, _ := filepath.Glob(filepath.Join(work, "cache", "*", "*", "*", "cache"))
	if len(nested) != 0 {
		t.Errorf("mirror cloned below itself: %v", nested)
	}
}

func TestCheckChildrenReportsMissingChild(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	w.child(t, "a")
	x := w.child(t, "x")
	if _, err := w.svc.InitParent(ctx, w.parent); err != nil {
		t.Fatal(err)
	}
	if err := w.svc.CheckChildren(ctx, w.parent); err != nil {
		t.Fatalf("expected clean check, got %v", err)
	}

	if err := os.RemoveAll(x); err != nil {
		t.Fatal(err)
	}
	err := w.svc.CheckChildren(ctx, w.parent)
	if !errors.Is(err, diag.ErrMissingChildOnDisk) {
		t.Fatalf("expected ErrMissingChildOnDisk, got %v", err)
	}
	if !strings.Contains(err.Error(), "x") {
		t.Errorf("expected x in %q", err.Error())
	}
}

func TestOperationsRequireParent(t *testing.T) {
	w := newWorld(t)
	err := w.svc.CheckChildren(context.Background(), w.parent)
	if !errors.Is(err, diag.ErrNotParent) {
		t.Fatalf("expected ErrNotParent, got %v", err)
	}
	if gitsub.IsParent(w.parent) {
		t.Error("plain repository reported as parent")
	}
}

// ------------------------------------------------------------
// init-child
// ------------------------------------------------------------
func TestInitChildrenRestoresLockedCommit(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	a := w.child(t, "a")
	locked := execGit(t, a, "rev-parse", "HEAD")
	if _, err := w.svc.InitParent(ctx, w.parent); err != nil {
		t.Fatal(err)
	}
	// The remote moves ahead of the locked commit.
	commitIn(t, a, "later.go", true)

	// Simulate a fresh clone of the parent: files without metadata.
	if err := os.RemoveAll(filepath.Join(a, ".git")); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(a, "lib.go"), "package lib // parent copy\n")

	if _, err := w.svc.InitChildren(ctx, w.parent, []string{"nope"}, false); err == nil {
		t.Fatal("expected error for unknown child")
	}

	restored, err := w.svc.InitChildren(ctx, w.parent, nil, true)
	if err != nil {
		t.Fatalf("InitChildren failed: %v", err)
	}
	if len(restored) != 1 || restored[0] != "a" {
		t.Fatalf("expected [a] restored, got %v", restored)
	}

	assertVisible(t, a)
	if head := execGit(t, a, "rev-parse", "HEAD"); head != locked {
		t.Errorf("expected HEAD at locked commit %s, got %s", locked, head)
	}
	if branch := execGit(t, a, "branch", "--show-current"); branch != "main" {
		t.Errorf("expected locked branch main, got %q", branch)
	}
	content, err := fileUtil.ReadTextFile(filepath.Join(a, "lib.go"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(content, "parent copy") {
		t.Error("existing file was overwritten")
	}

	// Second run has nothing to do.
	restored, err = w.svc.InitChildren(ctx, w.parent, []string{"a"}, false)
	if err != nil || len(restored) != 0 {
		t.Fatalf("expected no-op, got %v, %v", restored, err)
	}
}

func TestInitChildrenClonesBesideChild(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	a := w.child(t, "libs/a")
	if _, err := w.svc.InitParent(ctx, w.parent); err != nil {
		t.Fatal(err)
	}
	if err := os.RemoveAll(filepath.Join(a, ".git")); err != nil {
		t.Fatal(err)
	}

	// $TMPDIR may sit on another filesystem, where moving the clone into
	// the parent fails; it must stay untouched.
	tmpdir := t.TempDir()
	t.Setenv("TMPDIR", tmpdir)

	restored, err := w.svc.InitChildren(ctx, w.parent, []string{"libs/a"}, false)
	if err != nil {
		t.Fatalf("InitChildren failed: %v", err)
	}
	if len(restored) != 1 {
		t.Fatalf("expected libs/a restored, got %v", restored)
	}
	assertVisible(t, a)

	if entries, _ := os.ReadDir(tmpdir); len(entries) != 0 {
		t.Errorf("clone area leaked into $TMPDIR: %v", entries)
	}
	leftovers, _ := filepath.Glob(filepath.Join(w.parent, "libs", ".gitsub-*"))
	if len(leftovers) != 0 {
		t.Errorf("temporary clone not cleaned up: %v", leftovers)
	}
}

// ------------------------------------------------------------
// doctor
// ------------------------------------------------------------
func TestDoctorReportsDrift(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	a := w.child(t, "a")
	if _, err := w.svc.InitParent(ctx, w.parent); err != nil {
		t.Fatal(err)
	}
	commitIn(t, a, "feature.go", false)

	d, err := w.svc.Doctor(ctx, w.parent)
	if err != nil {
		t.Fatalf("Doctor failed: %v", err)
	}
	if !d.Basic.HiddenIgnored {
		t.Error("expected hidden dir to be reported as ignored")
	}
	if len(d.Children) != 1 || !d.Children[0].Drift {
		t.Fatalf("expected drift on a, got %+v", d.Children)
	}
	if d.Healthy() {
		t.Error("drifted parent must not be healthy")
	}
}
