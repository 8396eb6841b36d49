package core

import (
	"context"
	"errors"
	"time"

	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub"
	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/diag"
	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/doctor"
	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/model"
	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/telemetry"
	gitUtil "github.com/kuchuk-borom-debbarma/GitSub/core/internal/util/git"
)

// Options configures every operation. The zero value uses the default
// cache directory, one worker per CPU and no credential prompts.
type Options struct {
	CacheDir     string
	Workers      int
	ProbeTimeout time.Duration
	Interactive  bool
	// WorkDir is where delegated git commands run. Empty means the
	// parent root.
	WorkDir string
}

// DoctorReport is the result of Doctor.
type DoctorReport = doctor.Doctor

// ValidationError lists every child that failed one consistency check.
type ValidationError = diag.ValidationError

// Failure is one child named by a ValidationError.
type Failure = diag.Failure

// Failure kinds callers can test for with errors.Is.
var (
	ErrNoRemoteConfigured       = diag.ErrNoRemoteConfigured
	ErrDetachedOrCorruptChild   = diag.ErrDetachedOrCorruptChild
	ErrUnpushedLocalChanges     = diag.ErrUnpushedLocalChanges
	ErrCommitNotDurableOnRemote = diag.ErrCommitNotDurableOnRemote
	ErrManifestUnreadable       = diag.ErrManifestUnreadable
	ErrMissingChildOnDisk       = diag.ErrMissingChildOnDisk
	ErrManifestExists           = diag.ErrManifestExists
	ErrNotParent                = diag.ErrNotParent
	ErrHiddenDirNotIgnored      = diag.ErrHiddenDirNotIgnored
)

func service(opts Options) *gitsub.Service {
	return gitsub.New(gitsub.Options{
		CacheDir:     opts.CacheDir,
		Workers:      opts.Workers,
		ProbeTimeout: opts.ProbeTimeout,
		Interactive:  opts.Interactive,
		WorkDir:      opts.WorkDir,
	})
}

// InitTelemetry installs tracing and metrics providers. The returned
// function flushes them.
func InitTelemetry(ctx context.Context, version string) (func(context.Context), error) {
	if err := telemetry.Init(ctx, "gitsub", version); err != nil {
		return func(context.Context) {}, err
	}
	return telemetry.Shutdown, nil
}

// DefaultCacheDir returns the mirror cache base used when none is set.
func DefaultCacheDir() string {
	return gitsub.DefaultCacheDir()
}

// FindParentRoot returns the root of the git working tree containing dir.
func FindParentRoot(ctx context.Context, dir string) (string, error) {
	return gitsub.FindParentRoot(ctx, dir)
}

// IsParent reports whether root is a gitsub parent repository.
func IsParent(root string) bool {
	return gitsub.IsParent(root)
}

// InitParent creates the lock manifest and locks every child found below
// root. It returns the relative paths of the locked children.
func InitParent(ctx context.Context, opts Options, root string) ([]string, error) {
	children, err := service(opts).InitParent(ctx, root)
	if err != nil {
		return nil, err
	}
	return model.Paths(children), nil
}

// InitChildren restores missing child repositories from their remotes.
func InitChildren(ctx context.Context, opts Options, root string, paths []string, all bool) ([]string, error) {
	return service(opts).InitChildren(ctx, root, paths, all)
}

// Add validates the children and runs git add with them hidden.
func Add(ctx context.Context, opts Options, root string, gitArgs []string) error {
	return service(opts).Add(ctx, root, gitArgs)
}

// Commit validates the children and runs git commit with them hidden.
func Commit(ctx context.Context, opts Options, root string, gitArgs []string) error {
	return service(opts).Commit(ctx, root, gitArgs)
}

// Push validates the children and runs git push.
func Push(ctx context.Context, opts Options, root string, gitArgs []string) error {
	return service(opts).Push(ctx, root, gitArgs)
}

// CheckChildren validates the children without running git.
func CheckChildren(ctx context.Context, opts Options, root string) error {
	return service(opts).CheckChildren(ctx, root)
}

// Doctor returns the current health of the parent at root.
func Doctor(ctx context.Context, opts Options, root string) (*DoctorReport, error) {
	return service(opts).Doctor(ctx, root)
}

// Hint returns follow-up advice for err, or "".
func Hint(err error) string {
	return diag.Hint(err)
}

// Passthrough runs git with args in dir, attached to the terminal.
func Passthrough(ctx context.Context, dir string, args []string) error {
	return gitUtil.Passthrough(ctx, dir, args...)
}

// ExitCode returns the exit status of a git command that ran attached to
// the terminal (Passthrough or a delegated verb), or -1. Failures of git
// commands gitsub ran for itself are ordinary errors.
func ExitCode(err error) int {
	var cmdErr *gitUtil.CommandError
	if errors.As(err, &cmdErr) {
		return -1
	}
	return gitUtil.ExitCode(err)
}
