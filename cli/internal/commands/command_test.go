package commands

import (
	"bytes"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kuchuk-borom-debbarma/GitSub/core"
)

func TestRegistry(t *testing.T) {
	want := []string{"add", "check-children", "commit", "doctor", "init-child", "init-parent", "push", "version"}
	got := ListCommands()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("ListCommands() = %v, want %v", got, want)
	}
	if IsRegistered("status") {
		t.Error("status belongs to git, not gitsub")
	}
	for _, verb := range []string{"add", "commit", "push"} {
		cmd, _ := GetCommand(verb)
		if _, ok := cmd.(forwarding); !ok {
			t.Errorf("%s should forward its arguments to git", verb)
		}
	}
}

func TestInitChildCmd_ValidateArgs(t *testing.T) {
	tests := []struct {
		name    string
		all     bool
		args    []string
		wantErr bool
	}{
		{name: "Paths", args: []string{"libs/a", "libs/b"}},
		{name: "All", all: true},
		{name: "Nothing selected", wantErr: true},
		{name: "Paths and all", all: true, args: []string{"libs/a"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &initChildCommand{all: tt.all}
			if err := cmd.ValidateArgs(tt.args); (err != nil) != tt.wantErr {
				t.Errorf("ValidateArgs() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDoctorCmd_ValidateArgs(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		args    []string
		wantErr bool
	}{
		{name: "Text", format: formatText},
		{name: "YAML", format: formatYAML},
		{name: "Unknown format", format: "xml", wantErr: true},
		{name: "Positional", format: formatText, args: []string{"x"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &doctorCommand{format: tt.format}
			if err := cmd.ValidateArgs(tt.args); (err != nil) != tt.wantErr {
				t.Errorf("ValidateArgs() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNoArgCommands_ValidateArgs(t *testing.T) {
	for _, cmd := range []Command{initParentCommand{}, checkChildrenCommand{}} {
		if err := cmd.ValidateArgs(nil); err != nil {
			t.Errorf("%s: unexpected error %v", cmd.Command(), err)
		}
		if err := cmd.ValidateArgs([]string{"extra"}); err == nil {
			t.Errorf("%s: expected an error for extra arguments", cmd.Command())
		}
	}
}

func TestRootRelative(t *testing.T) {
	root := filepath.FromSlash("/work/parent")

	tests := []struct {
		name    string
		cwd     string
		path    string
		want    string
		wantErr bool
	}{
		{name: "From root", cwd: root, path: "libs/a", want: "libs/a"},
		{name: "From subdir", cwd: filepath.Join(root, "libs"), path: "a", want: "libs/a"},
		{name: "Absolute", cwd: "/elsewhere", path: filepath.Join(root, "tools", "c"), want: "tools/c"},
		{name: "Outside", cwd: root, path: "../other", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rootRelative(root, tt.cwd, tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("rootRelative() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("rootRelative() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var buf bytes.Buffer
	root := NewRootCmd("1.2.3")
	root.SetOut(&buf)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(buf.String(), "gitsub 1.2.3") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestInvalidArgsFailBeforeExecution(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	root := NewRootCmd("dev")
	root.SetArgs([]string{"doctor", "--format", "xml"})
	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "invalid arguments") {
		t.Errorf("expected invalid arguments error, got %v", err)
	}
}

func TestGitsubOnlyCommandsRequireParent(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	repo := t.TempDir()
	if out, err := exec.Command("git", "init", "--quiet", repo).CombinedOutput(); err != nil {
		t.Fatalf("git init failed: %v\n%s", err, out)
	}
	t.Chdir(repo)

	for _, args := range [][]string{
		{"check-children"},
		{"doctor"},
		{"init-child", "--all"},
	} {
		t.Run(args[0], func(t *testing.T) {
			root := NewRootCmd("dev")
			root.SetArgs(args)
			err := root.Execute()
			if !errors.Is(err, core.ErrNotParent) {
				t.Fatalf("expected ErrNotParent, got %v", err)
			}
			if core.Hint(err) == "" {
				t.Error("expected a hint pointing at init-parent")
			}
		})
	}
}
