// Package config resolves gitsub settings from flags, GITSUB_* environment
// variables and an optional config.yaml, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kuchuk-borom-debbarma/GitSub/core"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

const (
	KeyCacheDir     = "cache_dir"
	KeyWorkers      = "workers"
	KeyProbeTimeout = "probe_timeout"
	KeyLogLevel     = "log_level"
	KeyInteractive  = "interactive"
)

// Interactive modes.
const (
	InteractiveAuto   = "auto"
	InteractiveAlways = "always"
	InteractiveNever  = "never"
)

// Config is the resolved configuration of one invocation.
type Config struct {
	CacheDir     string
	Workers      int
	ProbeTimeout time.Duration
	LogLevel     string
	Interactive  bool
}

// Options converts the configuration for the core facade.
func (c *Config) Options() core.Options {
	return core.Options{
		CacheDir:     c.CacheDir,
		Workers:      c.Workers,
		ProbeTimeout: c.ProbeTimeout,
		Interactive:  c.Interactive,
	}
}

// Path returns $XDG_CONFIG_HOME/gitsub/config.yaml, or the same below
// ~/.config.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "gitsub", "config.yaml")
}

// Load resolves the configuration. flags may be nil; flag names use
// dashes where keys use underscores ("cache-dir" for cache_dir).
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetDefault(KeyCacheDir, "")
	v.SetDefault(KeyWorkers, 0)
	v.SetDefault(KeyProbeTimeout, "10s")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyInteractive, InteractiveAuto)

	v.SetEnvPrefix("GITSUB")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config %s: %w", configPath, err)
			}
		}
	}

	if flags != nil {
		for _, key := range []string{KeyCacheDir, KeyWorkers, KeyProbeTimeout, KeyLogLevel, KeyInteractive} {
			if f := flags.Lookup(strings.ReplaceAll(key, "_", "-")); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	timeout, err := time.ParseDuration(v.GetString(KeyProbeTimeout))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", KeyProbeTimeout, err)
	}
	if v.GetInt(KeyWorkers) < 0 {
		return nil, fmt.Errorf("invalid %s: must not be negative", KeyWorkers)
	}
	interactive, err := resolveInteractive(v.GetString(KeyInteractive))
	if err != nil {
		return nil, err
	}

	cacheDir := v.GetString(KeyCacheDir)
	if cacheDir == "" {
		cacheDir = core.DefaultCacheDir()
	}

	return &Config{
		CacheDir:     cacheDir,
		Workers:      v.GetInt(KeyWorkers),
		ProbeTimeout: timeout,
		LogLevel:     v.GetString(KeyLogLevel),
		Interactive:  interactive,
	}, nil
}

func resolveInteractive(mode string) (bool, error) {
	switch strings.ToLower(mode) {
	case InteractiveAlways:
		return true, nil
	case InteractiveNever:
		return false, nil
	case InteractiveAuto, "":
		return term.IsTerminal(int(os.Stdin.Fd())), nil
	}
	return false, fmt.Errorf("invalid %s %q: want auto, always or never", KeyInteractive, mode)
}
