// Package gitsub implements the operations a user runs against a parent
// repository: locking children into the manifest, restoring them, and
// guarding git add/commit/push with the consistency engine.
package gitsub

import (
	"os"
	"path/filepath"
	"time"

	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/check"
	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/discover"
	gitUtil "github.com/kuchuk-borom-debbarma/GitSub/core/internal/util/git"
)

// Options configures a Service.
type Options struct {
	// CacheDir is the mirror cache base. Empty means DefaultCacheDir(); a
	// relative path is resolved against the working directory once.
	CacheDir string
	// Workers caps the validation pools. 0 means the number of CPUs.
	Workers int
	// ProbeTimeout bounds the anonymous reachability probe.
	ProbeTimeout time.Duration
	// Interactive allows credential prompts during sequential checks.
	Interactive bool
	// WorkDir is where delegated git commands run, so relative pathspecs
	// resolve as the user typed them. Empty means the parent root.
	WorkDir string
}

// Service runs gitsub operations with one set of collaborators.
type Service struct {
	opts   Options
	vcs    gitUtil.VCS
	prober check.Prober
}

// New returns a Service backed by the git command line.
func New(opts Options) *Service {
	return NewWith(opts, gitUtil.CLI{}, check.HTTPProber{Timeout: opts.ProbeTimeout})
}

// NewWith returns a Service using the given collaborators.
func NewWith(opts Options, vcs gitUtil.VCS, prober check.Prober) *Service {
	if opts.CacheDir == "" {
		opts.CacheDir = DefaultCacheDir()
	}
	// git runs inside and beside cache entries, so a relative base would
	// resolve against a different directory on every call.
	if abs, err := filepath.Abs(opts.CacheDir); err == nil {
		opts.CacheDir = abs
	}
	return &Service{opts: opts, vcs: vcs, prober: prober}
}

// DefaultCacheDir is $XDG_CACHE_HOME/gitsub, or ~/.cache/gitsub.
func DefaultCacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "gitsub")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "gitsub")
	}
	return filepath.Join(os.TempDir(), "gitsub-cache")
}

// CacheDir returns the mirror cache base in use.
func (s *Service) CacheDir() string { return s.opts.CacheDir }

func (s *Service) builder(lenient bool) discover.Builder {
	return discover.Builder{VCS: s.vcs, CacheBase: s.opts.CacheDir, Lenient: lenient}
}

func (s *Service) engine() *check.Engine {
	return &check.Engine{
		VCS:         s.vcs,
		Prober:      s.prober,
		Workers:     s.opts.Workers,
		Interactive: s.opts.Interactive,
	}
}
